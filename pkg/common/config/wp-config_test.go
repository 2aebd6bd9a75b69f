package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wpConfig = `<?php
define( 'DB_NAME', 'wordpress' );
define("DB_HOST", "localhost:3307");
define('DB_PASSWORD', 'it\'s');
define('FQDB', __DIR__ . '/db/site.sqlite');
define('WP_DEBUG', false);
define('WP_MEMORY_LIMIT', 256);
define('AUTH_KEY', getenv('AUTH_KEY'));
define('DB_NAME', 'ignored');

$table_prefix = 'wpx_';
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_WpConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, WpConfigFile), wpConfig)

	cfg, err := Load(root, nil)
	require.NoError(t, err)

	assert.Equal(t, "wordpress", cfg.Constant("DB_NAME"))
	assert.Equal(t, "localhost:3307", cfg.Constant("DB_HOST"))
	assert.Equal(t, "it's", cfg.Constant("DB_PASSWORD"))
	assert.Equal(t, filepath.Join(root, "db", "site.sqlite"), cfg.Constant("FQDB"))
	assert.Equal(t, "256", cfg.Constant("WP_MEMORY_LIMIT"))
	assert.True(t, cfg.Defined("WP_DEBUG"))
	assert.Equal(t, "", cfg.Constant("WP_DEBUG"))
	assert.False(t, cfg.Defined("AUTH_KEY"))
	assert.Equal(t, "wpx_", cfg.TablePrefix)
	assert.Equal(t, filepath.Join(root, "wp-content"), cfg.ContentDir())
}

func TestLoad_ParentDirectory(t *testing.T) {
	parent := t.TempDir()
	writeFile(t, filepath.Join(parent, WpConfigFile), wpConfig)
	root := filepath.Join(parent, "wordpress")
	require.NoError(t, os.Mkdir(root, 0755))

	cfg, err := Load(root, nil)
	require.NoError(t, err)
	assert.Equal(t, "wordpress", cfg.Constant("DB_NAME"))
	assert.Equal(t, filepath.Join(parent, "db", "site.sqlite"), cfg.Constant("FQDB"))
}

func TestLoad_NoWpConfig(t *testing.T) {
	cfg, err := Load(t.TempDir(), nil)
	require.NoError(t, err)
	assert.False(t, cfg.Defined("DB_NAME"))
	assert.Equal(t, DefaultTablePrefix, cfg.TablePrefix)
}

func TestLoad_Overrides(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, WpConfigFile), wpConfig)
	writeFile(t, filepath.Join(root, DbkitYamlFile), `
constants:
  DB_HOST: 127.0.0.1
  DB_ENGINE: sqlite
tablePrefix: local_
`)

	v := viper.New()
	v.Set("db_name", "from_viper")

	cfg, err := Load(root, v)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Constant("DB_HOST"))
	assert.Equal(t, "sqlite", cfg.Constant("DB_ENGINE"))
	assert.Equal(t, "from_viper", cfg.Constant("DB_NAME"))
	assert.Equal(t, "local_", cfg.TablePrefix)
}

func TestLoad_MalformedYaml(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, DbkitYamlFile), "constants: [")

	_, err := Load(root, nil)
	require.ErrorContains(t, err, "malformed YAML in")
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("DB_USER", "env_user")
	v := viper.New()
	v.AutomaticEnv()

	cfg := New(t.TempDir())
	FromViper(cfg, v)
	assert.Equal(t, "env_user", cfg.Constant("DB_USER"))
}
