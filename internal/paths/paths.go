// Package paths resolves the database file location, the configuration
// directory, and project path normalization.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Default locations.
const (
	DefaultDBDirName  = ".pensieve"
	DefaultDBFileName = "pensieve.db"
)

// Environment variable overrides.
const (
	EnvDB        = "PENSIEVE_DB"
	EnvConfigDir = "PENSIEVE_CONFIG_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration
// directory.
//
// Linux:   $XDG_CONFIG_HOME/pensieve (fallback ~/.config/pensieve)
// macOS:   ~/Library/Application Support/pensieve
// Windows: %APPDATA%/pensieve
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "pensieve"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "pensieve"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "pensieve"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > PENSIEVE_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDBPath returns the database file path following the precedence
// chain: flag > config.yaml db_path > PENSIEVE_DB env > ~/.pensieve/pensieve.db.
func ResolveDBPath(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(expandHome(configValue))
	}
	if env := os.Getenv(EnvDB); env != "" {
		return filepath.Abs(env)
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDBDirName, DefaultDBFileName), nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := platformDir.homeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
		}
	}
	return path
}

// NormalizeProject normalizes a project directory path for storage: paths
// under the home directory become home-relative, everything else stays
// absolute. The inverse is ExpandProject.
func NormalizeProject(path string) (string, error) {
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", err
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return abs, nil
	}
	if rel, err := filepath.Rel(home, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return rel, nil
	}
	return abs, nil
}

// ExpandProject expands a stored project path back to an absolute path.
func ExpandProject(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path)
}

// DetectProject returns the normalized project path for the current
// invocation: the enclosing git repository root when one exists, otherwise
// the working directory.
func DetectProject() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := cwd
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return NormalizeProject(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return NormalizeProject(cwd)
}
