package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns the client data directory, ~/.docchat by default.
// DOCCHAT_HOME overrides it (used by tests and portable installs).
func BaseDir() string {
	if dir := os.Getenv("DOCCHAT_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".docchat")
}

// ConfigPath returns the config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// DBPath returns the local history database path.
func DBPath() string {
	return filepath.Join(BaseDir(), "docchat.db")
}

// LogDir returns the log directory.
func LogDir() string {
	return filepath.Join(BaseDir(), "logs")
}

// LogPath returns the client log file path.
func LogPath() string {
	return filepath.Join(LogDir(), "docchat.log")
}

// EnsureDirs creates the data directory tree with private permissions.
func EnsureDirs() error {
	for _, d := range []string{BaseDir(), LogDir()} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
