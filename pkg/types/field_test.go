// Unit tests for field definitions and constraint/type compatibility.
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		field   FieldDefinition
		wantErr error
	}{
		{
			name:  "plain text field",
			field: FieldDefinition{Name: "summary", Type: FieldTypeText, Required: true},
		},
		{
			name:  "text field with max_length",
			field: FieldDefinition{Name: "summary", Type: FieldTypeText, Constraints: Constraints{MaxLength: 500}},
		},
		{
			name:  "url field with schemes",
			field: FieldDefinition{Name: "ticket", Type: FieldTypeURL, Constraints: Constraints{URLSchemes: []string{"http", "https"}}},
		},
		{
			name:  "timestamp with auto_now",
			field: FieldDefinition{Name: "noted_at", Type: FieldTypeTimestamp, Constraints: Constraints{AutoNow: true}},
		},
		{
			name:  "file_reference with file_types",
			field: FieldDefinition{Name: "patch", Type: FieldTypeFileReference, Constraints: Constraints{FileTypes: []string{".diff", "patch"}}},
		},
		{
			name:    "empty name",
			field:   FieldDefinition{Name: "", Type: FieldTypeText},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "name with spaces",
			field:   FieldDefinition{Name: "bad name", Type: FieldTypeText},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "unknown type",
			field:   FieldDefinition{Name: "x", Type: "integer"},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "max_length on boolean",
			field:   FieldDefinition{Name: "fixed", Type: FieldTypeBoolean, Constraints: Constraints{MaxLength: 10}},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "auto_now on text",
			field:   FieldDefinition{Name: "summary", Type: FieldTypeText, Constraints: Constraints{AutoNow: true}},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "url_schemes on timestamp",
			field:   FieldDefinition{Name: "at", Type: FieldTypeTimestamp, Constraints: Constraints{URLSchemes: []string{"https"}}},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "file_types on text",
			field:   FieldDefinition{Name: "summary", Type: FieldTypeText, Constraints: Constraints{FileTypes: []string{".go"}}},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "negative max_length",
			field:   FieldDefinition{Name: "summary", Type: FieldTypeText, Constraints: Constraints{MaxLength: -1}},
			wantErr: ErrInvalidSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.field.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsValidFieldType(t *testing.T) {
	for _, ft := range FieldTypes {
		assert.True(t, IsValidFieldType(ft), ft)
	}
	assert.False(t, IsValidFieldType("integer"))
	assert.False(t, IsValidFieldType(""))
	assert.False(t, IsValidFieldType("Text"))
}

func TestConstraintsIsZero(t *testing.T) {
	assert.True(t, Constraints{}.IsZero())
	assert.False(t, Constraints{MaxLength: 1}.IsZero())
	assert.False(t, Constraints{AutoNow: true}.IsZero())
	assert.False(t, Constraints{URLSchemes: []string{"https"}}.IsZero())
	assert.False(t, Constraints{FileTypes: []string{".go"}}.IsZero())
}
