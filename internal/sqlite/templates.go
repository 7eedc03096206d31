package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// CreateTemplate validates and persists a new template. The id, version, and
// creation timestamp are assigned here; the caller supplies name, fields,
// project, and created_by. Returns ErrDuplicateName when the name is taken
// and ErrInvalidSchema when the definition is malformed.
func (s *Store) CreateTemplate(t *types.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var exists int
	err := s.db.QueryRow("SELECT 1 FROM templates WHERE name = ?", t.Name).Scan(&exists)
	if err == nil {
		return fmt.Errorf("%w: %q", types.ErrDuplicateName, t.Name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking template name: %w", busyWrap(err))
	}

	t.TemplateID = generateID()
	if t.Version == 0 {
		t.Version = 1
	}
	t.CreatedAt = time.Now().UTC().Truncate(time.Second)
	if t.CreatedBy == "" {
		t.CreatedBy = "unknown"
	}
	if t.Project == "" {
		t.Project = "(no project)"
	}

	tx, err := s.begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO templates (id, name, description, version, created_at, created_by, project)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TemplateID, t.Name, t.Description, t.Version,
		t.CreatedAt.Format(time.RFC3339), t.CreatedBy, t.Project,
	)
	if err != nil {
		// The pre-check above races with other writers; the UNIQUE index on
		// name is authoritative.
		if uniqueViolation(err) {
			return fmt.Errorf("%w: %q", types.ErrDuplicateName, t.Name)
		}
		return fmt.Errorf("persisting template: %w", busyWrap(err))
	}

	for _, f := range t.Fields {
		constraints, err := json.Marshal(f.Constraints)
		if err != nil {
			return fmt.Errorf("marshaling constraints for field %q: %w", f.Name, err)
		}
		_, err = tx.Exec(
			`INSERT INTO template_fields (template_id, name, type, required, constraints_json, description)
             VALUES (?, ?, ?, ?, ?, ?)`,
			t.TemplateID, f.Name, f.Type, boolToInt(f.Required), string(constraints), f.Description,
		)
		if err != nil {
			return fmt.Errorf("persisting field %q: %w", f.Name, busyWrap(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing template: %w", busyWrap(err))
	}
	return nil
}

// GetTemplate retrieves a template by name. Returns ErrTemplateNotFound.
func (s *Store) GetTemplate(name string) (*types.Template, error) {
	row := s.db.QueryRow(
		`SELECT id, name, description, version, created_at, created_by, project
         FROM templates WHERE name = ?`, name)
	t, err := s.hydrateTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", types.ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("getting template %q: %w", name, err)
	}
	return t, nil
}

// GetTemplateByID retrieves a template by id. Returns ErrTemplateNotFound.
func (s *Store) GetTemplateByID(id string) (*types.Template, error) {
	row := s.db.QueryRow(
		`SELECT id, name, description, version, created_at, created_by, project
         FROM templates WHERE id = ?`, id)
	t, err := s.hydrateTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %q", types.ErrTemplateNotFound, id)
		}
		return nil, fmt.Errorf("getting template %s: %w", id, err)
	}
	return t, nil
}

// ListTemplates returns all templates ordered by name. A non-empty project
// filters to templates whose project contains the given substring.
func (s *Store) ListTemplates(project string) ([]*types.Template, error) {
	query := `SELECT id, name, description, version, created_at, created_by, project
              FROM templates`
	var args []any
	if project != "" {
		query += " WHERE project LIKE ?"
		args = append(args, "%"+project+"%")
	}
	query += " ORDER BY name"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", busyWrap(err))
	}
	defer rows.Close()

	// Drain the rows before loading fields: the pool holds one connection,
	// and a nested query while rows are open would wait on it forever.
	var templates []*types.Template
	for rows.Next() {
		t, err := scanTemplateBase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for _, t := range templates {
		fields, err := s.loadFields(t.TemplateID)
		if err != nil {
			return nil, err
		}
		t.Fields = fields
	}
	return templates, nil
}

// rowScanner lets hydrate helpers accept both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// hydrateTemplate scans one templates row and loads its field definitions.
// Only safe for sql.Row: Row.Scan releases the connection before the nested
// field query runs. ListTemplates drains its rows first instead.
func (s *Store) hydrateTemplate(row rowScanner) (*types.Template, error) {
	t, err := scanTemplateBase(row)
	if err != nil {
		return nil, err
	}
	fields, err := s.loadFields(t.TemplateID)
	if err != nil {
		return nil, err
	}
	t.Fields = fields
	return t, nil
}

// scanTemplateBase scans the templates columns without touching the
// database again.
func scanTemplateBase(row rowScanner) (*types.Template, error) {
	var t types.Template
	var createdAt string
	if err := row.Scan(&t.TemplateID, &t.Name, &t.Description, &t.Version,
		&createdAt, &t.CreatedBy, &t.Project); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing template created_at %q: %w", createdAt, err)
	}
	t.CreatedAt = parsed
	return &t, nil
}

// loadFields returns a template's field definitions ordered by insertion.
func (s *Store) loadFields(templateID string) ([]types.FieldDefinition, error) {
	rows, err := s.db.Query(
		`SELECT name, type, required, constraints_json, description
         FROM template_fields WHERE template_id = ? ORDER BY id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("loading fields: %w", busyWrap(err))
	}
	defer rows.Close()

	var fields []types.FieldDefinition
	for rows.Next() {
		var f types.FieldDefinition
		var required int
		var constraints string
		if err := rows.Scan(&f.Name, &f.Type, &required, &constraints, &f.Description); err != nil {
			return nil, fmt.Errorf("scanning field row: %w", err)
		}
		f.Required = required != 0
		if err := json.Unmarshal([]byte(constraints), &f.Constraints); err != nil {
			return nil, fmt.Errorf("parsing constraints for field %q: %w", f.Name, err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// generateID returns a new UUID v7 string, falling back to v4 if the clock
// source fails.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
