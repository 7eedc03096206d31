package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/pensieve/internal/paths"
	"github.com/mesh-intelligence/pensieve/internal/sqlite"
	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// classify maps an error to the stderr category prefix and process exit
// code. Recoverable errors (bad input, missing records, pending
// migrations) exit 1; integrity failures and lock contention exit 2.
func classify(err error) (string, int) {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return "validation", exitUserError
	}

	switch {
	case errors.Is(err, types.ErrTemplateNotFound):
		return "template_not_found", exitUserError
	case errors.Is(err, types.ErrNotFound):
		return "not_found", exitUserError
	case errors.Is(err, types.ErrDuplicateName):
		return "duplicate_name", exitUserError
	case errors.Is(err, types.ErrInvalidSchema):
		return "invalid_schema", exitUserError
	case errors.Is(err, types.ErrInvalidStatus):
		return "invalid_status", exitUserError
	case errors.Is(err, types.ErrInvalidLink):
		return "invalid_link", exitUserError
	case errors.Is(err, types.ErrInvalidRelationship):
		return "invalid_relationship", exitUserError
	case errors.Is(err, types.ErrDuplicateLink):
		return "duplicate_link", exitUserError
	case errors.Is(err, types.ErrInvalidValue):
		return "invalid_value", exitUserError
	case errors.Is(err, types.ErrRequiredField):
		return "required_field", exitUserError
	case errors.Is(err, types.ErrUnknownField):
		return "unknown_field", exitUserError
	case errors.Is(err, types.ErrUnknownFieldType):
		return "unknown_field_type", exitUserError
	case errors.Is(err, types.ErrMigrationRequired):
		return "migration_required", exitUserError
	case errors.Is(err, types.ErrIntegrity):
		return "integrity", exitSysError
	case errors.Is(err, types.ErrStoreBusy):
		return "store_busy", exitSysError
	}
	return "error", exitUserError
}

// openStore opens the database and refuses to proceed while schema
// migrations are pending. Every command except "migrate" and "version"
// goes through this gate.
func openStore() (*sqlite.Store, error) {
	store, err := openStoreUngated()
	if err != nil {
		return nil, err
	}
	if err := store.RequireCurrent(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// openStoreUngated opens the database without the pending-migration gate.
// Used by the migrate commands, which must work on an outdated schema.
func openStoreUngated() (*sqlite.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	return sqlite.Open(dbPath)
}

// resolveProject returns the normalized project path: the flag value when
// supplied, otherwise the enclosing git root or the working directory.
func resolveProject(flagValue string) (string, error) {
	if flagValue != "" {
		return paths.NormalizeProject(flagValue)
	}
	return paths.DetectProject()
}

// printJSON writes v to stdout as indented JSON followed by a newline.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
