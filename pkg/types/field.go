package types

import (
	"fmt"
	"strings"
)

// Field types determine what values a template field accepts.
const (
	FieldTypeBoolean       = "boolean"
	FieldTypeText          = "text"
	FieldTypeURL           = "url"
	FieldTypeTimestamp     = "timestamp"
	FieldTypeFileReference = "file_reference"
)

// validFieldTypes is the set of recognized field types.
var validFieldTypes = map[string]bool{
	FieldTypeBoolean:       true,
	FieldTypeText:          true,
	FieldTypeURL:           true,
	FieldTypeTimestamp:     true,
	FieldTypeFileReference: true,
}

// FieldTypes lists all recognized field types for enumeration and error
// messages, in display order.
var FieldTypes = []string{
	FieldTypeBoolean,
	FieldTypeText,
	FieldTypeURL,
	FieldTypeTimestamp,
	FieldTypeFileReference,
}

// IsValidFieldType reports whether ft is a recognized field type.
func IsValidFieldType(ft string) bool {
	return validFieldTypes[ft]
}

// Constraints narrow the values a field accepts. Each constraint is valid
// for exactly one field type; ValidateFor rejects mismatches.
type Constraints struct {
	MaxLength  int      `json:"max_length,omitempty"`  // text
	URLSchemes []string `json:"url_schemes,omitempty"` // url
	FileTypes  []string `json:"file_types,omitempty"`  // file_reference
	AutoNow    bool     `json:"auto_now,omitempty"`    // timestamp
}

// IsZero reports whether no constraint is set.
func (c Constraints) IsZero() bool {
	return c.MaxLength == 0 && len(c.URLSchemes) == 0 && len(c.FileTypes) == 0 && !c.AutoNow
}

// ValidateFor checks that every set constraint is meaningful for the given
// field type. Returns an error wrapping ErrInvalidSchema on mismatch.
func (c Constraints) ValidateFor(fieldType string) error {
	if c.MaxLength < 0 {
		return fmt.Errorf("%w: max_length must not be negative", ErrInvalidSchema)
	}
	if c.MaxLength > 0 && fieldType != FieldTypeText {
		return fmt.Errorf("%w: max_length applies only to text fields, not %s", ErrInvalidSchema, fieldType)
	}
	if len(c.URLSchemes) > 0 && fieldType != FieldTypeURL {
		return fmt.Errorf("%w: url_schemes applies only to url fields, not %s", ErrInvalidSchema, fieldType)
	}
	if len(c.FileTypes) > 0 && fieldType != FieldTypeFileReference {
		return fmt.Errorf("%w: file_types applies only to file_reference fields, not %s", ErrInvalidSchema, fieldType)
	}
	if c.AutoNow && fieldType != FieldTypeTimestamp {
		return fmt.Errorf("%w: auto_now applies only to timestamp fields, not %s", ErrInvalidSchema, fieldType)
	}
	return nil
}

// FieldDefinition is a single typed, constrained slot within a template.
type FieldDefinition struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Required    bool        `json:"required"`
	Constraints Constraints `json:"constraints,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Validate checks that the definition is well-formed: non-empty alphanumeric
// name (underscores allowed), recognized type, constraints matching the type.
func (f FieldDefinition) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: field name must not be empty", ErrInvalidSchema)
	}
	if !isIdentifier(f.Name) {
		return fmt.Errorf("%w: field name %q must be alphanumeric with underscores", ErrInvalidSchema, f.Name)
	}
	if !IsValidFieldType(f.Type) {
		return fmt.Errorf("%w: field %q has unknown type %q (valid: %s)",
			ErrInvalidSchema, f.Name, f.Type, strings.Join(FieldTypes, ", "))
	}
	return f.Constraints.ValidateFor(f.Type)
}

// isIdentifier reports whether s consists of ASCII letters, digits, and
// underscores only.
func isIdentifier(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return s != ""
}
