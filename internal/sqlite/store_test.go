// Unit tests for store lifecycle and the migration gate.
package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// setupStore opens a fresh database in a temp dir and applies all
// migrations.
func setupStore(t *testing.T) *Store {
	t.Helper()
	s := setupStoreUnmigrated(t)
	_, err := NewRunner(s).ApplyPending()
	require.NoError(t, err)
	return s
}

// setupStoreUnmigrated opens a fresh database without running migrations.
func setupStoreUnmigrated(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pensieve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "pensieve.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, dbPath, s.Path())
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestRequireCurrentGate(t *testing.T) {
	s := setupStoreUnmigrated(t)

	err := s.RequireCurrent()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMigrationRequired)

	_, err = NewRunner(s).ApplyPending()
	require.NoError(t, err)
	assert.NoError(t, s.RequireCurrent())
}

func TestCloseIsIdempotent(t *testing.T) {
	s := setupStore(t)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestOperationsAfterClose(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, s.Close())

	err := s.CreateTemplate(minimalTemplate("after_close"))
	assert.Error(t, err)
}

func TestBlockedWriterSurfacesStoreBusy(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the busy timeout")
	}
	dbPath := filepath.Join(t.TempDir(), "pensieve.db")

	a, err := Open(dbPath)
	require.NoError(t, err)
	defer a.Close()
	_, err = NewRunner(a).ApplyPending()
	require.NoError(t, err)

	b, err := Open(dbPath)
	require.NoError(t, err)
	defer b.Close()

	// Hold the write lock from the first connection so the second writer
	// exhausts its busy timeout.
	tx, err := a.db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	_, err = tx.Exec(
		`INSERT INTO templates (id, name, created_at, created_by)
		 VALUES ('holder-id', 'holder', '2026-01-01T00:00:00Z', '')`)
	require.NoError(t, err)

	err = b.CreateTemplate(minimalTemplate("blocked"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStoreBusy)
}

func TestReopenPreservesData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pensieve.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	_, err = NewRunner(s).ApplyPending()
	require.NoError(t, err)
	require.NoError(t, s.CreateTemplate(minimalTemplate("observation")))
	require.NoError(t, s.Close())

	s2, err := Open(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	assert.NoError(t, s2.RequireCurrent())
	tpl, err := s2.GetTemplate("observation")
	require.NoError(t, err)
	assert.Equal(t, "observation", tpl.Name)
}

func TestUniqueViolationDetection(t *testing.T) {
	s := setupStore(t)

	const insert = `INSERT INTO templates (id, name, created_at, created_by)
	                VALUES (?, ?, '2026-01-01T00:00:00Z', '')`
	_, err := s.db.Exec(insert, "id-1", "taken")
	require.NoError(t, err)

	_, err = s.db.Exec(insert, "id-2", "taken")
	require.Error(t, err)
	assert.True(t, uniqueViolation(err))

	assert.False(t, uniqueViolation(errors.New("unrelated")))
	assert.False(t, uniqueViolation(nil))
}

// minimalTemplate returns a single-field template for tests that only need
// something to store.
func minimalTemplate(name string) *types.Template {
	return &types.Template{
		Name: name,
		Fields: []types.FieldDefinition{
			{Name: "note", Type: types.FieldTypeText, Required: true},
		},
	}
}
