// Unit tests for field value validation and canonicalization.
package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestValidateBoolean(t *testing.T) {
	field := FieldDefinition{Name: "fixed", Type: FieldTypeBoolean}

	tests := []struct {
		raw     string
		want    bool
		wantErr bool
	}{
		{raw: "true", want: true},
		{raw: "TRUE", want: true},
		{raw: "yes", want: true},
		{raw: "Y", want: true},
		{raw: "1", want: true},
		{raw: "false", want: false},
		{raw: "No", want: false},
		{raw: "n", want: false},
		{raw: "0", want: false},
		{raw: " true ", want: true},
		{raw: "maybe", wantErr: true},
		{raw: "2", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := field.ValidateValue(tt.raw, testNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, FieldTypeBoolean, v.Type)
			assert.Equal(t, tt.want, v.Bool)
		})
	}
}

func TestValidateText(t *testing.T) {
	field := FieldDefinition{Name: "summary", Type: FieldTypeText, Constraints: Constraints{MaxLength: 10}}

	v, err := field.ValidateValue("short", testNow)
	require.NoError(t, err)
	assert.Equal(t, "short", v.Text)

	_, err = field.ValidateValue("this is far too long", testNow)
	assert.ErrorIs(t, err, ErrInvalidValue)

	// No max_length means any length passes.
	free := FieldDefinition{Name: "summary", Type: FieldTypeText}
	_, err = free.ValidateValue("this is far too long", testNow)
	assert.NoError(t, err)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		schemes []string
		raw     string
		wantErr bool
	}{
		{name: "https accepted", raw: "https://example.com/x"},
		{name: "relative rejected", raw: "/just/a/path", wantErr: true},
		{name: "no scheme rejected", raw: "example.com", wantErr: true},
		{name: "scheme in allow list", schemes: []string{"https"}, raw: "https://example.com"},
		{name: "scheme outside allow list", schemes: []string{"https"}, raw: "ftp://example.com", wantErr: true},
		{name: "scheme match is case-insensitive", schemes: []string{"HTTPS"}, raw: "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := FieldDefinition{Name: "ticket", Type: FieldTypeURL, Constraints: Constraints{URLSchemes: tt.schemes}}
			v, err := field.ValidateValue(tt.raw, testNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, v.Text)
		})
	}
}

func TestValidateTimestamp(t *testing.T) {
	plain := FieldDefinition{Name: "at", Type: FieldTypeTimestamp}
	auto := FieldDefinition{Name: "at", Type: FieldTypeTimestamp, Constraints: Constraints{AutoNow: true}}

	t.Run("rfc3339", func(t *testing.T) {
		v, err := plain.ValidateValue("2026-01-15T10:30:00Z", testNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), v.Time)
	})

	t.Run("date only", func(t *testing.T) {
		v, err := plain.ValidateValue("2026-01-15", testNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), v.Time)
	})

	t.Run("now keyword", func(t *testing.T) {
		v, err := plain.ValidateValue("now", testNow)
		require.NoError(t, err)
		assert.Equal(t, testNow, v.Time)
	})

	t.Run("empty with auto_now", func(t *testing.T) {
		v, err := auto.ValidateValue("", testNow)
		require.NoError(t, err)
		assert.Equal(t, testNow, v.Time)
	})

	t.Run("empty without auto_now", func(t *testing.T) {
		_, err := plain.ValidateValue("", testNow)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := plain.ValidateValue("yesterday", testNow)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestValidateFileReference(t *testing.T) {
	tests := []struct {
		name      string
		fileTypes []string
		raw       string
		want      string
		wantErr   bool
	}{
		{name: "any extension without constraint", raw: "notes/design.md", want: "notes/design.md"},
		{name: "allowed extension", fileTypes: []string{".go", ".md"}, raw: "pkg/store.go", want: "pkg/store.go"},
		{name: "extension case-insensitive", fileTypes: []string{".md"}, raw: "README.MD", want: "README.MD"},
		{name: "dotless constraint normalized", fileTypes: []string{"md"}, raw: "README.md", want: "README.md"},
		{name: "disallowed extension", fileTypes: []string{".go"}, raw: "a.py", wantErr: true},
		{name: "empty path", raw: "  ", wantErr: true},
		{name: "path cleaned", raw: "a/./b.md", want: "a/b.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := FieldDefinition{Name: "patch", Type: FieldTypeFileReference, Constraints: Constraints{FileTypes: tt.fileTypes}}
			v, err := field.ValidateValue(tt.raw, testNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Text)
		})
	}
}

func TestValidateUnknownType(t *testing.T) {
	field := FieldDefinition{Name: "x", Type: "integer"}
	_, err := field.ValidateValue("5", testNow)
	assert.ErrorIs(t, err, ErrUnknownFieldType)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "false", BoolValue(false).String())
	assert.Equal(t, "hello", TextValue("hello").String())
	assert.Equal(t, "2026-03-14T09:26:53Z", TimeValue(testNow).String())
	assert.Equal(t, "a/b.md", FileRefValue("a/b.md").String())
}

func TestValueMarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{
		"fixed":   BoolValue(true),
		"summary": TextValue("done"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fixed": true, "summary": "done"}`, string(data))
}
