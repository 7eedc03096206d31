package sqlite

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// buildWhere translates a Query into SQL predicates. All active filters are
// ANDed; the tag filter alone uses any-of semantics internally.
func (s *Store) buildWhere(q types.Query) ([]string, []any, error) {
	var where []string
	var args []any

	if q.Template != "" {
		tpl, err := s.GetTemplate(q.Template)
		if err != nil {
			if errors.Is(err, types.ErrTemplateNotFound) {
				// Unknown template matches nothing; an empty result is not
				// an error.
				where = append(where, "1 = 0")
				return where, args, nil
			}
			return nil, nil, err
		}
		where = append(where, "entries.template_id = ?")
		args = append(args, tpl.TemplateID)
	}

	if q.Agent != "" {
		where = append(where, "entries.agent = ?")
		args = append(args, q.Agent)
	}

	if q.Project != "" {
		where = append(where, "entries.project LIKE ?")
		args = append(args, "%"+q.Project+"%")
	}

	if q.Status != "" {
		if !types.IsValidStatus(q.Status) {
			return nil, nil, fmt.Errorf("%w: %q", types.ErrInvalidStatus, q.Status)
		}
		where = append(where, "entries.status = ?")
		args = append(args, q.Status)
	}

	// From inclusive, To exclusive.
	if !q.From.IsZero() {
		where = append(where, "entries.created_at >= ?")
		args = append(args, q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		where = append(where, "entries.created_at < ?")
		args = append(args, q.To.UTC().Format(time.RFC3339))
	}

	if len(q.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.Tags)), ",")
		where = append(where,
			"EXISTS (SELECT 1 FROM json_each(entries.tags) WHERE json_each.value IN ("+placeholders+"))")
		for _, tag := range q.Tags {
			args = append(args, tag)
		}
	}

	if q.FieldName != "" {
		clause, fieldArgs := fieldFilter(q.FieldName, q.FieldValue, q.Match)
		where = append(where, clause)
		args = append(args, fieldArgs...)
	}

	if q.LinkedTo != "" {
		target, err := s.GetEntry(q.LinkedTo)
		if err != nil {
			return nil, nil, fmt.Errorf("linked-to: %w", err)
		}
		where = append(where,
			"EXISTS (SELECT 1 FROM entry_links WHERE source_entry_id = entries.id AND target_entry_id = ?)")
		args = append(args, target.EntryID)
	}
	if q.LinkedFrom != "" {
		source, err := s.GetEntry(q.LinkedFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("linked-from: %w", err)
		}
		where = append(where,
			"EXISTS (SELECT 1 FROM entry_links WHERE target_entry_id = entries.id AND source_entry_id = ?)")
		args = append(args, source.EntryID)
	}

	return where, args, nil
}

// fieldFilter matches entries holding a value for the named field. Entries
// of templates that do not define the field have no value row and are
// excluded by construction. Exact mode compares every typed column;
// substring mode applies to the string-valued columns.
func fieldFilter(name, value, match string) (string, []any) {
	if match == types.MatchSubstring {
		pattern := "%" + value + "%"
		clause := `entries.id IN (
            SELECT entry_id FROM entry_field_values
            WHERE field_name = ?
              AND (value_text LIKE ? OR value_url LIKE ? OR value_file_path LIKE ?))`
		return clause, []any{name, pattern, pattern, pattern}
	}

	// A boolean comparison against NULL is never true, so the extra term is
	// inert unless the input spells a boolean.
	var boolVal any
	switch strings.ToLower(value) {
	case "true", "yes", "y", "1":
		boolVal = 1
	case "false", "no", "n", "0":
		boolVal = 0
	}
	clause := `entries.id IN (
        SELECT entry_id FROM entry_field_values
        WHERE field_name = ?
          AND (value_text = ? OR value_url = ? OR value_timestamp = ? OR value_file_path = ?
               OR value_boolean = ?))`
	return clause, []any{name, value, value, value, value, boolVal}
}

// Search returns entries matching the query, most-recent-first by
// created_at with ties broken by id for determinism. An empty result is a
// valid, non-error outcome.
func (s *Store) Search(q types.Query) ([]*types.Entry, error) {
	where, args, err := s.buildWhere(q)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, template_id, template_version, agent, project, created_at, status, tags
              FROM entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"

	limit := q.Limit
	if limit <= 0 {
		limit = types.DefaultQueryLimit
	}
	args = append(args, limit, q.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching entries: %w", busyWrap(err))
	}
	defer rows.Close()
	return s.collectEntries(rows)
}

// CountEntries counts matches without hydrating them.
func (s *Store) CountEntries(q types.Query) (int, error) {
	where, args, err := s.buildWhere(q)
	if err != nil {
		return 0, err
	}

	query := "SELECT COUNT(*) FROM entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", busyWrap(err))
	}
	return count, nil
}
