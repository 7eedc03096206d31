package types

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Value is the canonical, typed form of a field value. Raw strings are
// converted to a Value by FieldDefinition.Validate exactly once, at the CLI
// boundary; everything past that point works with typed values.
type Value struct {
	Type string
	Bool bool      // boolean
	Text string    // text, url, file_reference
	Time time.Time // timestamp, stored in UTC
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value {
	return Value{Type: FieldTypeBoolean, Bool: b}
}

// TextValue returns a text Value.
func TextValue(s string) Value {
	return Value{Type: FieldTypeText, Text: s}
}

// URLValue returns a url Value.
func URLValue(s string) Value {
	return Value{Type: FieldTypeURL, Text: s}
}

// TimeValue returns a timestamp Value in UTC.
func TimeValue(t time.Time) Value {
	return Value{Type: FieldTypeTimestamp, Time: t.UTC()}
}

// FileRefValue returns a file_reference Value.
func FileRefValue(path string) Value {
	return Value{Type: FieldTypeFileReference, Text: path}
}

// String renders the canonical display form of the value.
func (v Value) String() string {
	switch v.Type {
	case FieldTypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case FieldTypeTimestamp:
		return v.Time.Format(time.RFC3339)
	default:
		return v.Text
	}
}

// MarshalJSON renders booleans as JSON booleans and everything else as the
// canonical string form, so exported entries read naturally.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Type == FieldTypeBoolean {
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.String())
}

// Accepted boolean spellings, case-insensitive.
var (
	boolTrue  = map[string]bool{"true": true, "yes": true, "y": true, "1": true}
	boolFalse = map[string]bool{"false": true, "no": true, "n": true, "0": true}
)

// ValidateValue checks raw against the field's type and constraints and returns
// the canonical Value. now supplies the timestamp used for auto_now
// substitution so creation is deterministic within one transaction.
// Errors wrap ErrInvalidValue.
func (f FieldDefinition) ValidateValue(raw string, now time.Time) (Value, error) {
	switch f.Type {
	case FieldTypeBoolean:
		return validateBoolean(raw)
	case FieldTypeText:
		return validateText(raw, f.Constraints)
	case FieldTypeURL:
		return validateURL(raw, f.Constraints)
	case FieldTypeTimestamp:
		return validateTimestamp(raw, f.Constraints, now)
	case FieldTypeFileReference:
		return validateFileReference(raw, f.Constraints)
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, f.Type)
	}
}

func validateBoolean(raw string) (Value, error) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if boolTrue[lower] {
		return BoolValue(true), nil
	}
	if boolFalse[lower] {
		return BoolValue(false), nil
	}
	return Value{}, fmt.Errorf("%w: %q is not a boolean (expected true/false, yes/no, 1/0)", ErrInvalidValue, raw)
}

func validateText(raw string, c Constraints) (Value, error) {
	if c.MaxLength > 0 && len(raw) > c.MaxLength {
		return Value{}, fmt.Errorf("%w: text exceeds maximum length of %d characters (got %d)",
			ErrInvalidValue, c.MaxLength, len(raw))
	}
	return TextValue(raw), nil
}

func validateURL(raw string, c Constraints) (Value, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" && u.Opaque == "" {
		return Value{}, fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidValue, raw)
	}
	if len(c.URLSchemes) > 0 {
		allowed := false
		for _, s := range c.URLSchemes {
			if strings.EqualFold(s, u.Scheme) {
				allowed = true
				break
			}
		}
		if !allowed {
			return Value{}, fmt.Errorf("%w: URL scheme %q not allowed (allowed: %s)",
				ErrInvalidValue, u.Scheme, strings.Join(c.URLSchemes, ", "))
		}
	}
	return URLValue(raw), nil
}

func validateTimestamp(raw string, c Constraints, now time.Time) (Value, error) {
	if raw == "" || raw == "now" {
		if c.AutoNow || raw == "now" {
			return TimeValue(now), nil
		}
		return Value{}, fmt.Errorf("%w: empty timestamp", ErrInvalidValue)
	}
	t, err := parseTimestamp(raw)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q is not an ISO 8601 timestamp (e.g. 2024-01-15T10:30:00Z)",
			ErrInvalidValue, raw)
	}
	return TimeValue(t), nil
}

// parseTimestamp accepts RFC 3339 timestamps and the common date-only form.
func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing %q", raw)
}

func validateFileReference(raw string, c Constraints) (Value, error) {
	if strings.TrimSpace(raw) == "" {
		return Value{}, fmt.Errorf("%w: empty file path", ErrInvalidValue)
	}
	if len(c.FileTypes) > 0 {
		ext := strings.ToLower(filepath.Ext(raw))
		allowed := false
		for _, ft := range c.FileTypes {
			want := strings.ToLower(ft)
			if !strings.HasPrefix(want, ".") {
				want = "." + want
			}
			if ext == want {
				allowed = true
				break
			}
		}
		if !allowed {
			return Value{}, fmt.Errorf("%w: file extension %q not allowed (allowed: %s)",
				ErrInvalidValue, ext, strings.Join(c.FileTypes, ", "))
		}
	}
	return FileRefValue(filepath.Clean(raw)), nil
}
