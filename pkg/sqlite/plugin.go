package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/sandstorm/dbkit/pkg/common/config"
)

const PluginSlug = "sqlite-database-integration"

var MinimumPluginVersion = version.Must(version.NewVersion("2.1.11"))

var (
	ErrPluginNotFound       = errors.New("Could not locate the SQLite integration plugin.")
	ErrPluginVersionUnknown = errors.New("Could not determine the version of the SQLite integration plugin.")
	ErrPluginTooOld         = errors.New("The SQLite integration plugin must be version 2.1.11 or higher.")
)

var (
	dropinVersionRe = regexp.MustCompile(`define\(\s*['"]SQLITE_DB_DROPIN_VERSION['"]\s*,\s*['"]([0-9.]+)['"]\s*\)`)
	stableTagRe     = regexp.MustCompile(`(?m)^Stable tag:\s*(.+?)\s*$`)
)

// PluginDirectory returns the directory the integration plugin is installed
// in, looking at regular plugins first and must-use plugins second.
func PluginDirectory(cfg *config.Config) (string, bool) {
	for _, folder := range []string{
		filepath.Join(cfg.ContentDir(), "plugins", PluginSlug),
		filepath.Join(cfg.ContentDir(), "mu-plugins", PluginSlug),
	} {
		if info, err := os.Stat(folder); err == nil && info.IsDir() {
			return folder, true
		}
	}
	return "", false
}

// PluginVersion reads the plugin version from its readme. It requires the
// db.php drop-in to be the one shipped by the plugin.
func PluginVersion(cfg *config.Config) (string, bool) {
	dropin, err := os.ReadFile(filepath.Join(cfg.ContentDir(), "db.php"))
	if err != nil || !dropinVersionRe.Match(dropin) {
		return "", false
	}
	dir, ok := PluginDirectory(cfg)
	if !ok {
		return "", false
	}
	readme, err := os.ReadFile(filepath.Join(dir, "readme.txt"))
	if err != nil {
		return "", false
	}
	m := stableTagRe.FindSubmatch(readme)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(string(m[1])), true
}

// CheckPlugin makes sure a recent enough integration plugin is installed.
// Exports and imports depend on the MySQL emulation it sets up.
func CheckPlugin(cfg *config.Config) (*version.Version, error) {
	if _, ok := PluginDirectory(cfg); !ok {
		return nil, ErrPluginNotFound
	}
	raw, ok := PluginVersion(cfg)
	if !ok {
		return nil, ErrPluginVersionUnknown
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, ErrPluginVersionUnknown
	}
	if v.LessThan(MinimumPluginVersion) {
		return v, ErrPluginTooOld
	}
	return v, nil
}
