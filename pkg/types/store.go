package types

// EntryInput carries the caller-supplied raw values for one entry creation.
// Field values are raw strings; the store validates and coerces them against
// the template before anything is persisted.
type EntryInput struct {
	TemplateName string
	FieldValues  map[string]string
	Agent        string
	Project      string
	Tags         []string
}

// Store is the backend-agnostic interface over the journal-entry database.
// Implementations open at command start and close at command end; there is
// no process-wide store state.
type Store interface {
	// Templates. CreateTemplate assigns the id and creation timestamp.
	CreateTemplate(t *Template) error
	GetTemplate(name string) (*Template, error)
	GetTemplateByID(id string) (*Template, error)
	ListTemplates(project string) ([]*Template, error)

	// Entries. CreateEntry validates against the template snapshot and
	// persists atomically; GetEntry accepts a full id or a unique prefix.
	CreateEntry(in EntryInput) (*Entry, error)
	GetEntry(id string) (*Entry, error)
	ListEntries(limit, offset int) ([]*Entry, error)
	UpdateEntryStatus(id, status string) (*Entry, error)
	AddEntryTags(id string, tags []string) (*Entry, error)
	RemoveEntryTags(id string, tags []string) (*Entry, error)

	// Links.
	CreateLink(sourceID, targetID, relationship, createdBy string) (*Link, error)
	LinksFor(entryID string) ([]*Link, error)
	Related(entryID string) ([]*RelatedEntry, error)

	// Search.
	Search(q Query) ([]*Entry, error)
	CountEntries(q Query) (int, error)
	TagStats(project string) ([]TagCount, error)

	Close() error
}
