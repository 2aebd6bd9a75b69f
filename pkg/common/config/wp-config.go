package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"
)

const WpConfigFile = "wp-config.php"

// Keys is the list of constants dbkit reads. Each can also be given in a
// config file or as environment variable under its lower case name.
var Keys = []string{
	"DB_HOST",
	"DB_NAME",
	"DB_USER",
	"DB_PASSWORD",
	"DB_CHARSET",
	"DB_COLLATE",
	"DB_ENGINE",
	"SQLITE_DB_DROPIN_VERSION",
	"FQDB",
	"FQDBDIR",
	"DB_FILE",
	"WP_CONTENT_DIR",
}

const DefaultTablePrefix = "wp_"

var (
	defineRe      = regexp.MustCompile(`(?m)^\s*define\s*\(\s*['"]([A-Za-z0-9_]+)['"]\s*,\s*(.+?)\s*\)\s*;`)
	singleQuoted  = regexp.MustCompile(`^'((?:[^'\\]|\\.)*)'$`)
	doubleQuoted  = regexp.MustCompile(`^"((?:[^"\\]|\\.)*)"$`)
	dirRelative   = regexp.MustCompile(`^(?:__DIR__|dirname\s*\(\s*__FILE__\s*\))\s*\.\s*['"]([^'"]*)['"]$`)
	tablePrefixRe = regexp.MustCompile(`\$table_prefix\s*=\s*['"]([^'"]*)['"]\s*;`)
	numberRe      = regexp.MustCompile(`^-?[0-9.]+$`)
)

// Config is the database configuration of one installation.
type Config struct {
	Root        string
	TablePrefix string
	constants   map[string]string
}

func New(root string) *Config {
	return &Config{
		Root:        root,
		TablePrefix: DefaultTablePrefix,
		constants:   map[string]string{},
	}
}

// Defined reports whether the constant was set by any configuration source.
func (c *Config) Defined(name string) bool {
	_, ok := c.constants[name]
	return ok
}

func (c *Config) Constant(name string) string {
	return c.constants[name]
}

func (c *Config) Set(name, value string) {
	c.constants[name] = value
}

// ContentDir is WP_CONTENT_DIR, or wp-content inside the install root.
func (c *Config) ContentDir() string {
	if dir := c.Constant("WP_CONTENT_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(c.Root, "wp-content")
}

// Load reads wp-config.php of the installation in root (or its parent
// directory), then applies the project .dbkit.yml and finally everything v
// knows about, which includes the environment.
func Load(root string, v *viper.Viper) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", root, err)
	}
	cfg := New(absRoot)

	if err := cfg.readWpConfig(); err != nil {
		return nil, err
	}

	project, err := ReadFromYaml(absRoot)
	if err != nil {
		return nil, err
	}
	project.applyTo(cfg)

	if v != nil {
		FromViper(cfg, v)
	}
	return cfg, nil
}

// FromViper overrides constants with values known to v.
func FromViper(cfg *Config, v *viper.Viper) {
	for _, key := range Keys {
		if v.IsSet(strings.ToLower(key)) {
			cfg.Set(key, v.GetString(strings.ToLower(key)))
		}
	}
	if v.IsSet("table_prefix") {
		cfg.TablePrefix = v.GetString("table_prefix")
	}
}

func (c *Config) readWpConfig() error {
	candidates := []string{
		filepath.Join(c.Root, WpConfigFile),
		filepath.Join(filepath.Dir(c.Root), WpConfigFile),
	}
	for _, candidate := range candidates {
		content, err := os.ReadFile(candidate)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", candidate, err)
		}
		pterm.Debug.Printfln("Reading database configuration from %s", candidate)
		c.parse(string(content), filepath.Dir(candidate))
		return nil
	}
	pterm.Debug.Printfln("No %s found in %s", WpConfigFile, c.Root)
	return nil
}

// parse picks up define() calls with literal values and the table prefix.
// Later definitions do not override earlier ones, as in PHP.
func (c *Config) parse(content string, dir string) {
	for _, m := range defineRe.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if c.Defined(name) {
			continue
		}
		if value, ok := literalValue(m[2], dir); ok {
			c.Set(name, value)
		}
	}
	if m := tablePrefixRe.FindStringSubmatch(content); m != nil {
		c.TablePrefix = m[1]
	}
}

func literalValue(expr string, dir string) (string, bool) {
	if m := singleQuoted.FindStringSubmatch(expr); m != nil {
		return strings.NewReplacer(`\\`, `\`, `\'`, `'`).Replace(m[1]), true
	}
	if m := doubleQuoted.FindStringSubmatch(expr); m != nil {
		return strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\$`, `$`).Replace(m[1]), true
	}
	if m := dirRelative.FindStringSubmatch(expr); m != nil {
		return filepath.Join(dir, m[1]), true
	}
	switch strings.ToLower(expr) {
	case "true":
		return "1", true
	case "false":
		return "", true
	}
	if numberRe.MatchString(expr) {
		return expr, true
	}
	return "", false
}
