// Package types defines the Pensieve domain model: field types and their
// constraints, templates, journal entries, entry links, search queries, and
// the standard error values shared by the storage backend and the CLI.
package types
