package types

import "time"

// Field filter match modes.
const (
	MatchExact     = "exact"
	MatchSubstring = "substring"
)

// Query describes a search over entries. Zero-valued filters are inactive;
// active filters are ANDed together. Tags is the one exception: an entry
// matches the tag filter if it carries ANY of the listed tags.
type Query struct {
	Template string // template name
	Agent    string
	Project  string // substring match
	Status   string
	Tags     []string

	// Date range on created_at: From inclusive, To exclusive.
	From time.Time
	To   time.Time

	// Field filter: entries whose template does not define FieldName are
	// excluded. Match is MatchExact or MatchSubstring; substring applies to
	// the string-valued columns only.
	FieldName  string
	FieldValue string
	Match      string

	// Link filters. LinkedTo keeps entries with an outgoing link to the
	// given entry; LinkedFrom keeps entries the given entry links to. Both
	// accept a full entry id or a unique prefix.
	LinkedTo   string
	LinkedFrom string

	Limit  int // 0 means the default page size
	Offset int
}

// DefaultQueryLimit caps result pages when Query.Limit is unset.
const DefaultQueryLimit = 50

// TagCount is one row of tag usage statistics.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
