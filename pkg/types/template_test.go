// Unit tests for template schema validation and JSON export/import.
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() *Template {
	return &Template{
		Name:        "bug_fix",
		Description: "A bug that was fixed",
		Fields: []FieldDefinition{
			{Name: "summary", Type: FieldTypeText, Required: true, Constraints: Constraints{MaxLength: 500}},
			{Name: "fixed", Type: FieldTypeBoolean, Required: true},
			{Name: "ticket", Type: FieldTypeURL, Constraints: Constraints{URLSchemes: []string{"https"}}},
			{Name: "noted_at", Type: FieldTypeTimestamp, Constraints: Constraints{AutoNow: true}},
		},
	}
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Template)
		wantErr bool
	}{
		{name: "valid template", mutate: func(*Template) {}},
		{name: "empty name", mutate: func(tpl *Template) { tpl.Name = "" }, wantErr: true},
		{name: "name with dash", mutate: func(tpl *Template) { tpl.Name = "bug-fix" }, wantErr: true},
		{name: "no fields", mutate: func(tpl *Template) { tpl.Fields = nil }, wantErr: true},
		{
			name: "duplicate field names",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, FieldDefinition{Name: "summary", Type: FieldTypeText})
			},
			wantErr: true,
		},
		{
			name: "invalid field definition",
			mutate: func(tpl *Template) {
				tpl.Fields[0].Type = "integer"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := validTemplate()
			tt.mutate(tpl)
			err := tpl.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSchema)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTemplateFieldLookup(t *testing.T) {
	tpl := validTemplate()

	f, ok := tpl.Field("summary")
	require.True(t, ok)
	assert.Equal(t, FieldTypeText, f.Type)
	assert.Equal(t, 500, f.Constraints.MaxLength)

	_, ok = tpl.Field("nonexistent")
	assert.False(t, ok)
}

func TestTemplateExportImportRoundTrip(t *testing.T) {
	tpl := validTemplate()

	data, err := tpl.ExportJSON()
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	got, err := ImportTemplate(data)
	require.NoError(t, err)
	assert.Equal(t, tpl.Name, got.Name)
	require.Len(t, got.Fields, len(tpl.Fields))
	// Field order is part of the canonical form.
	for i := range tpl.Fields {
		assert.Equal(t, tpl.Fields[i].Name, got.Fields[i].Name)
		assert.Equal(t, tpl.Fields[i].Constraints, got.Fields[i].Constraints)
	}
}

func TestImportTemplateRejectsBadInput(t *testing.T) {
	_, err := ImportTemplate([]byte("{not json"))
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = ImportTemplate([]byte(`{"name": "x", "fields": []}`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}
