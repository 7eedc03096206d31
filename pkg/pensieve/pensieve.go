// Package pensieve provides the public entry point for the Pensieve
// journal-entry store: the release version and a factory for opening the
// SQLite-backed store.
package pensieve

import (
	"github.com/mesh-intelligence/pensieve/internal/sqlite"
	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// Version is the release version reported by the CLI.
const Version = "v0.4.0"

// Open opens (creating if necessary) the store at dbPath.
//
// Example:
//
//	store, err := pensieve.Open("~/.pensieve/pensieve.db")
//	if err != nil { ... }
//	defer store.Close()
func Open(dbPath string) (types.Store, error) {
	s, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return s, nil
}
