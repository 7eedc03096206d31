// Unit tests for entry creation, retrieval, status, and tags.
package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// setupBugFixStore returns a migrated store with the bug_fix template
// registered.
func setupBugFixStore(t *testing.T) *Store {
	t.Helper()
	s := setupStore(t)
	require.NoError(t, s.CreateTemplate(bugFixTemplate()))
	return s
}

func validBugFixInput() types.EntryInput {
	return types.EntryInput{
		TemplateName: "bug_fix",
		FieldValues: map[string]string{
			"summary": "fixed the flaky retry loop",
			"fixed":   "yes",
			"ticket":  "https://issues.example.com/42",
		},
		Agent:   "reviewer",
		Project: "code/pensieve",
		Tags:    []string{"retries", "flaky"},
	}
}

func TestCreateEntryCanonicalizesValues(t *testing.T) {
	s := setupBugFixStore(t)

	entry, err := s.CreateEntry(validBugFixInput())
	require.NoError(t, err)
	assert.NotEmpty(t, entry.EntryID)
	assert.Equal(t, types.StatusActive, entry.Status)
	assert.Equal(t, 1, entry.TemplateVersion)

	// "yes" is stored as the canonical boolean true.
	assert.True(t, entry.FieldValues["fixed"].Bool)
	assert.Equal(t, "true", entry.FieldValues["fixed"].String())

	// auto_now filled the omitted timestamp.
	noted := entry.FieldValues["noted_at"]
	require.Equal(t, types.FieldTypeTimestamp, noted.Type)
	assert.WithinDuration(t, time.Now().UTC(), noted.Time, 5*time.Second)

	// Tags come back sorted.
	assert.Equal(t, []string{"flaky", "retries"}, entry.Tags)

	// The stored form matches what CreateEntry returned.
	got, err := s.GetEntry(entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, entry.FieldValues, got.FieldValues)
	assert.Equal(t, entry.Tags, got.Tags)
	assert.Equal(t, entry.CreatedAt, got.CreatedAt)
}

func TestCreateEntryAggregatesValidationFailures(t *testing.T) {
	s := setupBugFixStore(t)

	_, err := s.CreateEntry(types.EntryInput{
		TemplateName: "bug_fix",
		FieldValues: map[string]string{
			"fixed":    "maybe",
			"severity": "high",
		},
	})
	require.Error(t, err)

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)

	byField := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		byField[f.Field] = f.Message
	}
	assert.Contains(t, byField, "severity") // unknown field
	assert.Contains(t, byField, "summary")  // required, missing
	assert.Contains(t, byField, "fixed")    // not a boolean
	assert.Len(t, verr.Fields, 3)

	// Atomicity: nothing was persisted.
	count, err := s.CountEntries(types.Query{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateEntryUnknownTemplate(t *testing.T) {
	s := setupStore(t)
	_, err := s.CreateEntry(types.EntryInput{TemplateName: "nonexistent"})
	assert.ErrorIs(t, err, types.ErrTemplateNotFound)
}

func TestCreateEntryDefaultsAgentAndProject(t *testing.T) {
	s := setupBugFixStore(t)
	in := validBugFixInput()
	in.Agent = ""
	in.Project = ""

	entry, err := s.CreateEntry(in)
	require.NoError(t, err)
	assert.Equal(t, "unknown", entry.Agent)
	assert.Equal(t, "(no project)", entry.Project)
}

func TestGetEntryByPrefix(t *testing.T) {
	s := setupBugFixStore(t)
	entry, err := s.CreateEntry(validBugFixInput())
	require.NoError(t, err)

	t.Run("exact id", func(t *testing.T) {
		got, err := s.GetEntry(entry.EntryID)
		require.NoError(t, err)
		assert.Equal(t, entry.EntryID, got.EntryID)
	})

	t.Run("unique prefix", func(t *testing.T) {
		got, err := s.GetEntry(entry.EntryID[:20])
		require.NoError(t, err)
		assert.Equal(t, entry.EntryID, got.EntryID)
	})

	t.Run("too-short prefix", func(t *testing.T) {
		_, err := s.GetEntry(entry.EntryID[:3])
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := s.GetEntry("ffffffff-ffff-ffff-ffff-ffffffffffff")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		other, err := s.CreateEntry(validBugFixInput())
		require.NoError(t, err)

		// UUIDv7 ids created moments apart share a long timestamp prefix.
		common := commonPrefix(entry.EntryID, other.EntryID)
		require.GreaterOrEqual(t, len(common), 4)

		_, err = s.GetEntry(common[:4])
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.Contains(t, err.Error(), "ambiguous")
	})
}

func commonPrefix(a, b string) string {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func TestListEntries(t *testing.T) {
	s := setupBugFixStore(t)
	for i := 0; i < 3; i++ {
		_, err := s.CreateEntry(validBugFixInput())
		require.NoError(t, err)
	}

	all, err := s.ListEntries(0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := s.ListEntries(2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := s.ListEntries(2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestListEntriesHydratesFieldValues(t *testing.T) {
	s := setupBugFixStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.CreateEntry(validBugFixInput())
		require.NoError(t, err)
	}

	// Multi-row reads must come back fully hydrated even though field
	// values live in a separate table and the pool has one connection.
	listed, err := s.ListEntries(0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 5)
	for _, e := range listed {
		assert.Equal(t, "fixed the flaky retry loop", e.FieldValues["summary"].Text)
		assert.True(t, e.FieldValues["fixed"].Bool)
	}

	found, err := s.Search(types.Query{Template: "bug_fix"})
	require.NoError(t, err)
	require.Len(t, found, 5)
	for _, e := range found {
		assert.NotEmpty(t, e.FieldValues)
	}
}

func TestUpdateEntryStatus(t *testing.T) {
	s := setupBugFixStore(t)
	entry, err := s.CreateEntry(validBugFixInput())
	require.NoError(t, err)

	updated, err := s.UpdateEntryStatus(entry.EntryID, types.StatusArchived)
	require.NoError(t, err)
	assert.Equal(t, types.StatusArchived, updated.Status)

	got, err := s.GetEntry(entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusArchived, got.Status)

	// Field values stay untouched by status changes.
	assert.Equal(t, entry.FieldValues, got.FieldValues)

	_, err = s.UpdateEntryStatus(entry.EntryID, "deleted")
	assert.ErrorIs(t, err, types.ErrInvalidStatus)
}

func TestAddAndRemoveEntryTags(t *testing.T) {
	s := setupBugFixStore(t)
	entry, err := s.CreateEntry(validBugFixInput())
	require.NoError(t, err)

	added, err := s.AddEntryTags(entry.EntryID, []string{"networking", "flaky"})
	require.NoError(t, err)
	assert.Equal(t, []string{"flaky", "networking", "retries"}, added.Tags)

	// Adding the same tags again changes nothing.
	again, err := s.AddEntryTags(entry.EntryID, []string{"networking"})
	require.NoError(t, err)
	assert.Equal(t, added.Tags, again.Tags)

	removed, err := s.RemoveEntryTags(entry.EntryID, []string{"retries", "absent"})
	require.NoError(t, err)
	assert.Equal(t, []string{"flaky", "networking"}, removed.Tags)

	got, err := s.GetEntry(entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, removed.Tags, got.Tags)
}

func TestTagStats(t *testing.T) {
	s := setupBugFixStore(t)

	first := validBugFixInput()
	first.Tags = []string{"flaky", "retries"}
	_, err := s.CreateEntry(first)
	require.NoError(t, err)

	second := validBugFixInput()
	second.Tags = []string{"flaky"}
	second.Project = "code/other"
	_, err = s.CreateEntry(second)
	require.NoError(t, err)

	stats, err := s.TagStats("")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, types.TagCount{Tag: "flaky", Count: 2}, stats[0])
	assert.Equal(t, types.TagCount{Tag: "retries", Count: 1}, stats[1])

	scoped, err := s.TagStats("code/other")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, types.TagCount{Tag: "flaky", Count: 1}, scoped[0])
}
