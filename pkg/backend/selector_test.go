package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sandstorm/dbkit/pkg/common/config"
	"github.com/sandstorm/dbkit/pkg/mysql"
	"github.com/sandstorm/dbkit/pkg/sqlite"
	"github.com/sandstorm/dbkit/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDropin(t *testing.T, cfg *config.Config, content string) {
	t.Helper()
	dir := cfg.ContentDir()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DropinFile), []byte(content), 0644))
}

func TestResolve(t *testing.T) {
	t.Run("client/server by default", func(t *testing.T) {
		r := Resolve(config.New(t.TempDir()))
		assert.Equal(t, mysql.NAME, r.Engine)
		assert.False(t, r.IsEmbedded())
	})

	t.Run("DB_ENGINE", func(t *testing.T) {
		cfg := config.New(t.TempDir())
		cfg.Set("DB_ENGINE", "sqlite")
		r := Resolve(cfg)
		assert.True(t, r.IsEmbedded())
		assert.Equal(t, "DB_ENGINE", r.Reason)
	})

	t.Run("DB_ENGINE is case sensitive", func(t *testing.T) {
		cfg := config.New(t.TempDir())
		cfg.Set("DB_ENGINE", "SQLite")
		assert.False(t, Resolve(cfg).IsEmbedded())
	})

	t.Run("other DB_ENGINE", func(t *testing.T) {
		cfg := config.New(t.TempDir())
		cfg.Set("DB_ENGINE", "mysql")
		assert.False(t, Resolve(cfg).IsEmbedded())
	})

	t.Run("dropin constant", func(t *testing.T) {
		cfg := config.New(t.TempDir())
		cfg.Set("SQLITE_DB_DROPIN_VERSION", "")
		r := Resolve(cfg)
		assert.True(t, r.IsEmbedded())
		assert.Equal(t, "SQLITE_DB_DROPIN_VERSION", r.Reason)
	})

	t.Run("dropin file", func(t *testing.T) {
		cfg := config.New(t.TempDir())
		writeDropin(t, cfg, "<?php\ndefine( 'SQLITE_DB_DROPIN_VERSION', '2.1.16' );\n")
		r := Resolve(cfg)
		assert.True(t, r.IsEmbedded())
		assert.Equal(t, DropinFile, r.Reason)
	})

	t.Run("unrelated dropin file", func(t *testing.T) {
		cfg := config.New(t.TempDir())
		writeDropin(t, cfg, "<?php // object cache\n")
		assert.False(t, Resolve(cfg).IsEmbedded())
	})
}

func TestNew(t *testing.T) {
	cfg := config.New(t.TempDir())
	b := New(Resolution{Engine: sqlite.NAME}, cfg, util.ExecRunner{})
	assert.Equal(t, sqlite.NAME, b.Name())

	b = New(Resolution{Engine: mysql.NAME}, cfg, util.ExecRunner{})
	assert.Equal(t, mysql.NAME, b.Name())
}
