// Unit tests for error classification and config loading.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err      error
		category string
		code     int
	}{
		{err: &types.ValidationError{Fields: []types.FieldError{{Field: "x", Message: "bad"}}}, category: "validation", code: exitUserError},
		{err: types.ErrNotFound, category: "not_found", code: exitUserError},
		{err: fmt.Errorf("source: %w", types.ErrNotFound), category: "not_found", code: exitUserError},
		{err: types.ErrTemplateNotFound, category: "template_not_found", code: exitUserError},
		{err: types.ErrDuplicateName, category: "duplicate_name", code: exitUserError},
		{err: types.ErrInvalidSchema, category: "invalid_schema", code: exitUserError},
		{err: types.ErrInvalidStatus, category: "invalid_status", code: exitUserError},
		{err: types.ErrInvalidLink, category: "invalid_link", code: exitUserError},
		{err: types.ErrInvalidRelationship, category: "invalid_relationship", code: exitUserError},
		{err: types.ErrDuplicateLink, category: "duplicate_link", code: exitUserError},
		{err: types.ErrMigrationRequired, category: "migration_required", code: exitUserError},
		{err: types.ErrIntegrity, category: "integrity", code: exitSysError},
		{err: types.ErrStoreBusy, category: "store_busy", code: exitSysError},
		{err: errors.New("something else"), category: "error", code: exitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			category, code := classify(tt.err)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestLoadConfigWritesDefaultFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pensieve")

	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	// The default file is all comments, so no keys are set.
	assert.Empty(t, cfg.GetString(cfgKeyDBPath))
	assert.Empty(t, cfg.GetString(cfgKeyAgent))

	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}

func TestLoadConfigReadsValues(t *testing.T) {
	dir := t.TempDir()
	content := "db_path: /tmp/custom.db\nagent: reviewer\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.GetString(cfgKeyDBPath))
	assert.Equal(t, "reviewer", cfg.GetString(cfgKeyAgent))
}
