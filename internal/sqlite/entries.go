package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// CreateEntry validates the raw field inputs against the named template and
// persists the entry, its typed field values, and its tag registrations in a
// single transaction. Validation failures are aggregated into one
// *types.ValidationError and nothing is persisted.
func (s *Store) CreateEntry(in types.EntryInput) (*types.Entry, error) {
	tpl, err := s.GetTemplate(in.TemplateName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)

	verr := &types.ValidationError{}
	values := make(map[string]types.Value, len(tpl.Fields))

	// Inputs naming fields the template does not define fail validation.
	for name := range in.FieldValues {
		if _, ok := tpl.Field(name); !ok {
			verr.Add(name, "field not defined by template")
		}
	}

	// Walk the template's fields in order so aggregated errors come out in
	// schema order.
	for _, f := range tpl.Fields {
		raw, supplied := in.FieldValues[f.Name]
		if !supplied {
			if f.Type == types.FieldTypeTimestamp && f.Constraints.AutoNow {
				values[f.Name] = types.TimeValue(now)
				continue
			}
			if f.Required {
				verr.Add(f.Name, "required field missing")
			}
			continue
		}
		v, err := f.ValidateValue(raw, now)
		if err != nil {
			verr.Add(f.Name, err.Error())
			continue
		}
		values[f.Name] = v
	}

	if verr.HasErrors() {
		return nil, verr
	}

	tags, err := types.NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	entry := &types.Entry{
		EntryID:         generateID(),
		TemplateID:      tpl.TemplateID,
		TemplateVersion: tpl.Version,
		Agent:           in.Agent,
		Project:         in.Project,
		CreatedAt:       now,
		FieldValues:     values,
		Tags:            tags,
		Status:          types.StatusActive,
	}
	if entry.Agent == "" {
		entry.Agent = "unknown"
	}
	if entry.Project == "" {
		entry.Project = "(no project)"
	}

	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshaling tags: %w", err)
	}

	tx, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO entries (id, template_id, template_version, agent, project, created_at, status, tags)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID, entry.TemplateID, entry.TemplateVersion, entry.Agent,
		entry.Project, entry.CreatedAt.Format(time.RFC3339), entry.Status, string(tagsJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("persisting entry: %w", busyWrap(err))
	}

	for _, f := range tpl.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := insertFieldValue(tx, entry.EntryID, f.Name, v); err != nil {
			return nil, err
		}
	}

	if err := registerTags(tx, entry.Project, entry.Agent, entry.Tags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing entry: %w", busyWrap(err))
	}
	return entry, nil
}

// insertFieldValue writes one typed value row, using the column matching the
// value's type.
func insertFieldValue(tx *sql.Tx, entryID, fieldName string, v types.Value) error {
	var text, url, timestamp, filePath any
	var boolean any
	switch v.Type {
	case types.FieldTypeBoolean:
		boolean = boolToInt(v.Bool)
	case types.FieldTypeText:
		text = v.Text
	case types.FieldTypeURL:
		url = v.Text
	case types.FieldTypeTimestamp:
		timestamp = v.Time.Format(time.RFC3339)
	case types.FieldTypeFileReference:
		filePath = v.Text
	default:
		return fmt.Errorf("%w: %q", types.ErrUnknownFieldType, v.Type)
	}

	_, err := tx.Exec(
		`INSERT INTO entry_field_values
             (entry_id, field_name, field_type, value_text, value_boolean, value_url, value_timestamp, value_file_path)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entryID, fieldName, v.Type, text, boolean, url, timestamp, filePath,
	)
	if err != nil {
		return fmt.Errorf("persisting value for field %q: %w", fieldName, busyWrap(err))
	}
	return nil
}

// registerTags upserts tags into the project tag registry.
func registerTags(tx *sql.Tx, project, createdBy string, tags []string) error {
	for _, tag := range tags {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO project_tags (id, project, name, created_at, created_by)
             VALUES (?, ?, ?, ?, ?)`,
			generateID(), project, tag, time.Now().UTC().Format(time.RFC3339), createdBy,
		)
		if err != nil {
			return fmt.Errorf("registering tag %q: %w", tag, busyWrap(err))
		}
	}
	return nil
}

// GetEntry retrieves an entry by exact id, or by unique id prefix when no
// exact match exists. Returns ErrNotFound for no match and for an ambiguous
// prefix.
func (s *Store) GetEntry(id string) (*types.Entry, error) {
	entry, err := s.getEntryExact(id)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, types.ErrNotFound) || len(id) < 4 {
		return nil, err
	}

	rows, err := s.db.Query("SELECT id FROM entries WHERE id LIKE ? LIMIT 2", id+"%")
	if err != nil {
		return nil, fmt.Errorf("resolving entry prefix: %w", busyWrap(err))
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var match string
		if err := rows.Scan(&match); err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: entry %q", types.ErrNotFound, id)
	case 1:
		return s.getEntryExact(matches[0])
	default:
		return nil, fmt.Errorf("%w: entry id prefix %q is ambiguous", types.ErrNotFound, id)
	}
}

func (s *Store) getEntryExact(id string) (*types.Entry, error) {
	row := s.db.QueryRow(
		`SELECT id, template_id, template_version, agent, project, created_at, status, tags
         FROM entries WHERE id = ?`, id)
	entry, err := s.hydrateEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: entry %q", types.ErrNotFound, id)
		}
		return nil, fmt.Errorf("getting entry %s: %w", id, err)
	}
	return entry, nil
}

// ListEntries returns entries most-recent-first, ties broken by id.
func (s *Store) ListEntries(limit, offset int) ([]*types.Entry, error) {
	if limit <= 0 {
		limit = types.DefaultQueryLimit
	}
	rows, err := s.db.Query(
		`SELECT id, template_id, template_version, agent, project, created_at, status, tags
         FROM entries ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", busyWrap(err))
	}
	defer rows.Close()
	return s.collectEntries(rows)
}

// collectEntries drains every row of an entries query, then loads field
// values in a second pass. The pool holds a single connection, so a nested
// query while rows are still open would wait on it forever.
func (s *Store) collectEntries(rows *sql.Rows) ([]*types.Entry, error) {
	var entries []*types.Entry
	for rows.Next() {
		entry, err := scanEntryBase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		values, err := s.loadFieldValues(entry.EntryID)
		if err != nil {
			return nil, err
		}
		entry.FieldValues = values
	}
	return entries, nil
}

// hydrateEntry scans one entries row and loads its typed field values. Only
// safe for sql.Row: Row.Scan releases the connection before the nested
// field-value query runs. Multi-row queries go through collectEntries.
func (s *Store) hydrateEntry(row rowScanner) (*types.Entry, error) {
	entry, err := scanEntryBase(row)
	if err != nil {
		return nil, err
	}
	values, err := s.loadFieldValues(entry.EntryID)
	if err != nil {
		return nil, err
	}
	entry.FieldValues = values
	return entry, nil
}

// scanEntryBase scans the entries columns without touching the database
// again.
func scanEntryBase(row rowScanner) (*types.Entry, error) {
	var e types.Entry
	var createdAt, tagsJSON string
	if err := row.Scan(&e.EntryID, &e.TemplateID, &e.TemplateVersion, &e.Agent,
		&e.Project, &createdAt, &e.Status, &tagsJSON); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing entry created_at %q: %w", createdAt, err)
	}
	e.CreatedAt = parsed
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return nil, fmt.Errorf("parsing entry tags: %w", err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}

// loadFieldValues reconstructs the typed value map from the per-type columns.
func (s *Store) loadFieldValues(entryID string) (map[string]types.Value, error) {
	rows, err := s.db.Query(
		`SELECT field_name, field_type, value_text, value_boolean, value_url, value_timestamp, value_file_path
         FROM entry_field_values WHERE entry_id = ?`, entryID)
	if err != nil {
		return nil, fmt.Errorf("loading field values: %w", busyWrap(err))
	}
	defer rows.Close()

	values := make(map[string]types.Value)
	for rows.Next() {
		var name, fieldType string
		var text, url, timestamp, filePath sql.NullString
		var boolean sql.NullInt64
		if err := rows.Scan(&name, &fieldType, &text, &boolean, &url, &timestamp, &filePath); err != nil {
			return nil, fmt.Errorf("scanning field value row: %w", err)
		}
		switch fieldType {
		case types.FieldTypeBoolean:
			values[name] = types.BoolValue(boolean.Int64 != 0)
		case types.FieldTypeText:
			values[name] = types.TextValue(text.String)
		case types.FieldTypeURL:
			values[name] = types.URLValue(url.String)
		case types.FieldTypeTimestamp:
			t, err := time.Parse(time.RFC3339, timestamp.String)
			if err != nil {
				return nil, fmt.Errorf("parsing stored timestamp for %q: %w", name, err)
			}
			values[name] = types.TimeValue(t)
		case types.FieldTypeFileReference:
			values[name] = types.FileRefValue(filePath.String)
		default:
			return nil, fmt.Errorf("%w: stored type %q for field %q", types.ErrUnknownFieldType, fieldType, name)
		}
	}
	return values, rows.Err()
}

// UpdateEntryStatus sets the entry's status. The only valid statuses are
// active and archived; anything else returns ErrInvalidStatus.
func (s *Store) UpdateEntryStatus(id, status string) (*types.Entry, error) {
	if !types.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: %q (valid: %s, %s)",
			types.ErrInvalidStatus, status, types.StatusActive, types.StatusArchived)
	}
	entry, err := s.GetEntry(id)
	if err != nil {
		return nil, err
	}

	tx, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE entries SET status = ? WHERE id = ?", status, entry.EntryID); err != nil {
		return nil, fmt.Errorf("updating status: %w", busyWrap(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status update: %w", busyWrap(err))
	}
	entry.Status = status
	return entry, nil
}

// AddEntryTags merges tags into the entry's tag set and registers them in
// the project tag registry. Idempotent.
func (s *Store) AddEntryTags(id string, tags []string) (*types.Entry, error) {
	added, err := types.NormalizeTags(tags)
	if err != nil {
		return nil, err
	}
	entry, err := s.GetEntry(id)
	if err != nil {
		return nil, err
	}
	merged := types.MergeTags(entry.Tags, added)
	if err := s.writeTags(entry, merged, added); err != nil {
		return nil, err
	}
	entry.Tags = merged
	return entry, nil
}

// RemoveEntryTags removes tags from the entry's tag set. Tags not present
// are ignored; the registry keeps its records.
func (s *Store) RemoveEntryTags(id string, tags []string) (*types.Entry, error) {
	entry, err := s.GetEntry(id)
	if err != nil {
		return nil, err
	}
	remaining := types.RemoveTags(entry.Tags, tags)
	if err := s.writeTags(entry, remaining, nil); err != nil {
		return nil, err
	}
	entry.Tags = remaining
	return entry, nil
}

// writeTags persists an entry's tag set and registers newly added tags.
func (s *Store) writeTags(entry *types.Entry, tags, added []string) error {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	tx, err := s.begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE entries SET tags = ? WHERE id = ?", string(tagsJSON), entry.EntryID); err != nil {
		return fmt.Errorf("updating tags: %w", busyWrap(err))
	}
	if err := registerTags(tx, entry.Project, entry.Agent, added); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tag update: %w", busyWrap(err))
	}
	return nil
}

// TagStats returns tag usage counts over entries, sorted by count descending
// then tag ascending. A non-empty project restricts to that project
// (substring match, consistent with search).
func (s *Store) TagStats(project string) ([]types.TagCount, error) {
	query := `SELECT json_each.value AS tag, COUNT(*) AS entry_count
              FROM entries JOIN json_each(entries.tags)`
	var args []any
	if project != "" {
		query += " WHERE entries.project LIKE ?"
		args = append(args, "%"+project+"%")
	}
	query += " GROUP BY tag ORDER BY entry_count DESC, tag ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("computing tag statistics: %w", busyWrap(err))
	}
	defer rows.Close()

	var stats []types.TagCount
	for rows.Next() {
		var tc types.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning tag statistics: %w", err)
		}
		stats = append(stats, tc)
	}
	return stats, rows.Err()
}
