package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// parseFieldDefinition parses one --field specification of the form
//
//	name:type:required|optional[:constraints[:description]]
//
// Constraints are comma-separated key=value pairs; list values use "|",
// e.g. "max_length=500" or "url_schemes=http|https".
func parseFieldDefinition(spec string) (types.FieldDefinition, error) {
	parts := strings.SplitN(spec, ":", 5)
	if len(parts) < 3 {
		return types.FieldDefinition{}, fmt.Errorf("%w: field spec %q needs name:type:required|optional", types.ErrInvalidSchema, spec)
	}

	def := types.FieldDefinition{
		Name: strings.TrimSpace(parts[0]),
		Type: strings.TrimSpace(parts[1]),
	}

	switch strings.TrimSpace(parts[2]) {
	case "required":
		def.Required = true
	case "optional":
		def.Required = false
	default:
		return types.FieldDefinition{}, fmt.Errorf("%w: field %q: %q is not required|optional", types.ErrInvalidSchema, def.Name, parts[2])
	}

	if len(parts) >= 4 && strings.TrimSpace(parts[3]) != "" {
		constraints, err := parseConstraints(parts[3])
		if err != nil {
			return types.FieldDefinition{}, fmt.Errorf("field %q: %w", def.Name, err)
		}
		def.Constraints = constraints
	}
	if len(parts) == 5 {
		def.Description = strings.TrimSpace(parts[4])
	}

	if err := def.Validate(); err != nil {
		return types.FieldDefinition{}, err
	}
	return def, nil
}

// parseConstraints parses the comma-separated key=value constraint segment.
func parseConstraints(segment string) (types.Constraints, error) {
	var c types.Constraints
	for _, pair := range strings.Split(segment, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return types.Constraints{}, fmt.Errorf("%w: constraint %q is not key=value", types.ErrInvalidSchema, pair)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "max_length":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return types.Constraints{}, fmt.Errorf("%w: max_length %q is not a positive integer", types.ErrInvalidSchema, value)
			}
			c.MaxLength = n
		case "url_schemes":
			c.URLSchemes = splitList(value)
		case "file_types":
			c.FileTypes = splitList(value)
		case "auto_now":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return types.Constraints{}, fmt.Errorf("%w: auto_now %q is not a boolean", types.ErrInvalidSchema, value)
			}
			c.AutoNow = b
		default:
			return types.Constraints{}, fmt.Errorf("%w: unknown constraint %q", types.ErrInvalidSchema, key)
		}
	}
	return c, nil
}

// splitList splits a pipe-separated constraint list, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, "|") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseFieldValue parses one --field key=value argument for entry creation.
func parseFieldValue(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok {
		return "", "", fmt.Errorf("field value %q is not key=value", arg)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("field value %q has an empty name", arg)
	}
	return key, value, nil
}
