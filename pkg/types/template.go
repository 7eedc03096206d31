package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Template is a named, versioned schema of typed fields governing what an
// entry may contain. Templates are immutable once created; evolving a schema
// means creating a new template, never editing one in place.
type Template struct {
	TemplateID  string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Version     int               `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	CreatedBy   string            `json:"created_by"`
	Project     string            `json:"project"`
	Fields      []FieldDefinition `json:"fields"`
}

// Validate checks that the template is well-formed: non-empty identifier
// name, at least one field, unique field names, and every field definition
// valid. Errors wrap ErrInvalidSchema.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: template name must not be empty", ErrInvalidSchema)
	}
	if !isIdentifier(t.Name) {
		return fmt.Errorf("%w: template name %q must be alphanumeric with underscores", ErrInvalidSchema, t.Name)
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("%w: template must define at least one field", ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if err := f.Validate(); err != nil {
			return err
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field name %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Field returns the definition of the named field, or false if the template
// does not define it.
func (t *Template) Field(name string) (FieldDefinition, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// ExportJSON serializes the template to its canonical JSON document. Field
// order is preserved, so export followed by import round-trips bit-for-bit.
func (t *Template) ExportJSON() ([]byte, error) {
	out, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling template %q: %w", t.Name, err)
	}
	return append(out, '\n'), nil
}

// ImportTemplate parses a canonical template JSON document and validates the
// resulting schema. It does not persist; the caller creates the template via
// the store.
func ImportTemplate(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
