package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ziadkadry99/folio/internal/config"
	"github.com/ziadkadry99/folio/internal/content"
	"github.com/ziadkadry99/folio/internal/db"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/session"
)

// cliScope namespaces preferences saved from the command line.
const cliScope = "cli"

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `folio init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openDatabase opens the sqlite database in the configured data directory.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	dbPath := filepath.Join(cfg.DataDir, "folio.db")
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// openContent returns dir when given, else the configured content directory
// or the bundled content.
func openContent(cfg *config.Config, dir string) (fs.FS, error) {
	if dir == "" {
		dir = cfg.ContentDir
	}
	return content.Open(dir)
}

// preferenceStore returns the store for visitor, or the command line's own
// scope when visitor is empty.
func preferenceStore(database *db.DB, visitor string) preferences.Store {
	store := preferences.NewSQLStore(database)
	if visitor != "" {
		return session.VisitorStore(store, visitor)
	}
	return preferences.Scope(store, cliScope)
}

// parseToggle splits a key=value filter argument.
func parseToggle(s string) (key, value string, err error) {
	key, value, ok := strings.Cut(s, "=")
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid filter %q: expected key=value", s)
	}
	return key, value, nil
}
