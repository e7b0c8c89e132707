package config

import (
	"os"
	"path/filepath"
)

// Environment overrides for the data directory and database file.
const (
	EnvWaexHome = "WAEX_HOME"
	EnvWaexDB   = "WAEX_DB"
)

// DataDir returns the directory used to store waex data.
func DataDir() (string, error) {
	if d := os.Getenv(EnvWaexHome); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".waex"), nil
}

// DBPath returns the full path to the SQLite preset database.
func DBPath() (string, error) {
	if p := os.Getenv(EnvWaexDB); p != "" {
		return p, nil
	}
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "waex.db"), nil
}

// EnsureDataDir creates the data directory if needed and returns it.
func EnsureDataDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	return d, nil
}
