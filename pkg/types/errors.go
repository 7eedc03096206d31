package types

import (
	"errors"
	"fmt"
	"strings"
)

// Store operation errors. All are recoverable at the CLI boundary except
// ErrIntegrity, which is fatal and requires operator intervention.
var (
	ErrNotFound            = errors.New("not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrDuplicateName       = errors.New("template name already exists")
	ErrInvalidSchema       = errors.New("invalid template schema")
	ErrInvalidStatus       = errors.New("invalid entry status")
	ErrInvalidLink         = errors.New("invalid link")
	ErrInvalidRelationship = errors.New("invalid link relationship")
	ErrDuplicateLink       = errors.New("link already exists")
	ErrMigrationRequired   = errors.New("pending migrations must be applied first")
	ErrIntegrity           = errors.New("migration checksum mismatch")
	ErrStoreBusy           = errors.New("store is locked by another process")
)

// Field validation errors. ErrInvalidValue covers constraint violations;
// ErrRequiredField and ErrUnknownFieldType are distinct conditions.
var (
	ErrInvalidValue     = errors.New("invalid field value")
	ErrRequiredField    = errors.New("required field missing")
	ErrUnknownField     = errors.New("field not defined by template")
	ErrUnknownFieldType = errors.New("unknown field type")
)

// FieldError describes a single field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field failure from one entry creation.
// The creation is atomic: if this error is returned, nothing was persisted.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Error formats all field failures on one line, field order preserved.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add records a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}
