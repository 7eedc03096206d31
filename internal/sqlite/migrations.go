package sqlite

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Migration is one forward-only schema change: an ordered list of SQL
// statements executed inside a single transaction together with the version
// record. Checksum is the SHA-256 of the statements, fixed when the binary
// is built; the runner recomputes it before applying and treats a mismatch
// as a fatal integrity error.
type Migration struct {
	Version    int      `json:"version"`
	Name       string   `json:"name"`
	Checksum   string   `json:"checksum"`
	Statements []string `json:"-"`
}

// ComputeChecksum returns the hex SHA-256 of the statements joined by
// newlines, the form embedded in each Migration at build time.
func ComputeChecksum(statements []string) string {
	sum := sha256.Sum256([]byte(strings.Join(statements, "\n")))
	return hex.EncodeToString(sum[:])
}

// Migration 1: templates, template fields, entries, and typed field values.
var migrationInitialSchema = []string{
	`CREATE TABLE templates (
    id TEXT PRIMARY KEY,
    name TEXT UNIQUE NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    version INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    created_by TEXT NOT NULL
)`,
	`CREATE INDEX idx_templates_name ON templates(name)`,
	`CREATE TABLE template_fields (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    template_id TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    required INTEGER NOT NULL DEFAULT 0,
    constraints_json TEXT NOT NULL DEFAULT '{}',
    description TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (template_id) REFERENCES templates(id) ON DELETE CASCADE,
    UNIQUE(template_id, name)
)`,
	`CREATE INDEX idx_template_fields_template_id ON template_fields(template_id)`,
	`CREATE TABLE entries (
    id TEXT PRIMARY KEY,
    template_id TEXT NOT NULL,
    template_version INTEGER NOT NULL,
    agent TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (template_id) REFERENCES templates(id)
)`,
	`CREATE INDEX idx_entries_template_id ON entries(template_id)`,
	`CREATE INDEX idx_entries_agent ON entries(agent)`,
	`CREATE INDEX idx_entries_created_at ON entries(created_at)`,
	`CREATE TABLE entry_field_values (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id TEXT NOT NULL,
    field_name TEXT NOT NULL,
    field_type TEXT NOT NULL,
    value_text TEXT,
    value_boolean INTEGER,
    value_url TEXT,
    value_timestamp TEXT,
    value_file_path TEXT,
    FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE,
    UNIQUE(entry_id, field_name)
)`,
	`CREATE INDEX idx_entry_field_values_entry_id ON entry_field_values(entry_id)`,
	`CREATE INDEX idx_entry_field_values_field_name ON entry_field_values(field_name)`,
}

// Migration 2: project scoping on templates and entries.
var migrationAddProjectField = []string{
	`ALTER TABLE templates ADD COLUMN project TEXT NOT NULL DEFAULT '(no project)'`,
	`ALTER TABLE entries ADD COLUMN project TEXT NOT NULL DEFAULT '(no project)'`,
	`CREATE INDEX idx_templates_project ON templates(project)`,
	`CREATE INDEX idx_entries_project ON entries(project)`,
}

// Migration 3: entry status, tags, and the link graph.
var migrationAddEntryManagement = []string{
	`ALTER TABLE entries ADD COLUMN status TEXT NOT NULL DEFAULT 'active'`,
	`ALTER TABLE entries ADD COLUMN tags TEXT NOT NULL DEFAULT '[]'`,
	`CREATE INDEX idx_entries_status ON entries(status)`,
	`CREATE TABLE entry_links (
    id TEXT PRIMARY KEY,
    source_entry_id TEXT NOT NULL,
    target_entry_id TEXT NOT NULL,
    relationship TEXT NOT NULL,
    created_at TEXT NOT NULL,
    created_by TEXT NOT NULL,
    FOREIGN KEY (source_entry_id) REFERENCES entries(id) ON DELETE CASCADE,
    FOREIGN KEY (target_entry_id) REFERENCES entries(id) ON DELETE CASCADE,
    CHECK (relationship IN ('augments', 'relates_to', 'contradicts', 'supersedes', 'deprecates')),
    CHECK (source_entry_id != target_entry_id),
    UNIQUE(source_entry_id, target_entry_id, relationship)
)`,
	`CREATE INDEX idx_entry_links_source ON entry_links(source_entry_id)`,
	`CREATE INDEX idx_entry_links_target ON entry_links(target_entry_id)`,
	`CREATE INDEX idx_entry_links_relationship ON entry_links(relationship)`,
}

// Migration 4: per-project tag registry, backfilled from existing entries.
var migrationAddProjectTags = []string{
	`CREATE TABLE project_tags (
    id TEXT PRIMARY KEY,
    project TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    created_by TEXT NOT NULL,
    description TEXT,
    UNIQUE(project, name)
)`,
	`CREATE INDEX idx_project_tags_project ON project_tags(project)`,
	`CREATE INDEX idx_project_tags_name ON project_tags(name)`,
	`INSERT INTO project_tags (id, project, name, created_at, created_by)
SELECT lower(hex(randomblob(16))), project, json_each.value, datetime('now'), 'migration'
FROM entries JOIN json_each(entries.tags)
GROUP BY project, json_each.value`,
}

// Build-time checksums of the statement lists above. Regenerate with
// ComputeChecksum after any intentional edit to a not-yet-released migration;
// released migrations are never edited.
const (
	checksumInitialSchema      = "dfe7040ab8980a3718c016eb55321dac54e6deba212dddd009c83733ff86b1b4"
	checksumAddProjectField    = "6cfc9999cfbafe658b43ef368be24c26ad742de9031c9672462cdefba04af6ad"
	checksumAddEntryManagement = "f0836212fc14c0f958ad57f950a355193f665b5397f5a380519bc52cde5787b3"
	checksumAddProjectTags     = "7fcf546d77872fdb9125301b6d94427733916fe1b40bdeea7b90a68b001b5418"
)

// allMigrations lists every migration in apply order. Checksums are the
// SHA-256 of each statement list, pinned here so a modified migration is
// detected before it runs.
var allMigrations = []Migration{
	{
		Version:    1,
		Name:       "initial_schema",
		Checksum:   checksumInitialSchema,
		Statements: migrationInitialSchema,
	},
	{
		Version:    2,
		Name:       "add_project_field",
		Checksum:   checksumAddProjectField,
		Statements: migrationAddProjectField,
	},
	{
		Version:    3,
		Name:       "add_entry_management",
		Checksum:   checksumAddEntryManagement,
		Statements: migrationAddEntryManagement,
	},
	{
		Version:    4,
		Name:       "add_project_tags",
		Checksum:   checksumAddProjectTags,
		Statements: migrationAddProjectTags,
	},
}

// Migrations returns the full ordered migration list.
func Migrations() []Migration {
	out := make([]Migration, len(allMigrations))
	copy(out, allMigrations)
	return out
}
