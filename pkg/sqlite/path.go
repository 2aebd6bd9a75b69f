package sqlite

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sandstorm/dbkit/pkg/common/config"
)

const DefaultDbFile = ".ht.sqlite"

// DatabasePath finds the database file of an installation. FQDB wins;
// otherwise FQDBDIR and DB_FILE (with their defaults) are combined. When that
// file does not exist, a few common locations are tried before falling back
// to the configured path, which is where a new database gets created.
func DatabasePath(cfg *config.Config) string {
	if cfg.Defined("FQDB") {
		return cfg.Constant("FQDB")
	}

	dir := filepath.Join(cfg.ContentDir(), "database")
	if cfg.Defined("FQDBDIR") {
		dir = cfg.Constant("FQDBDIR")
	}
	file := DefaultDbFile
	if cfg.Defined("DB_FILE") {
		file = cfg.Constant("DB_FILE")
	}
	path := strings.TrimRight(dir, "/") + "/" + strings.TrimLeft(file, "/")

	if fileExists(path) {
		return path
	}
	for _, alternative := range []string{
		filepath.Join(cfg.ContentDir(), "database", DefaultDbFile),
		filepath.Join(cfg.ContentDir(), DefaultDbFile),
		filepath.Join(cfg.Root, DefaultDbFile),
	} {
		if fileExists(alternative) {
			return alternative
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
