package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDb(t *testing.T) *Translator {
	t.Helper()
	tr, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func mustQuery(t *testing.T, tr *Translator, q string) *Result {
	t.Helper()
	res, err := tr.Query(context.Background(), q)
	require.NoError(t, err, q)
	return res
}

func TestMySQLLiterals(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`CREATE TABLE t (v TEXT)`, `CREATE TABLE t (v TEXT)`},
		{`CREATE TABLE t (p TEXT DEFAULT 'C:\dir\new')`, `CREATE TABLE t (p TEXT DEFAULT 'C:\\dir\\new')`},
		{`CREATE TABLE t (x TEXT DEFAULT 'it''s')`, `CREATE TABLE t (x TEXT DEFAULT 'it''s')`},
		{"CREATE TABLE t (x TEXT DEFAULT 'a\nb')", `CREATE TABLE t (x TEXT DEFAULT 'a\nb')`},
		{`CREATE TABLE "a'b" (x TEXT DEFAULT '\')`, `CREATE TABLE "a'b" (x TEXT DEFAULT '\\')`},
		{`CREATE TABLE [a'b] (x TEXT)`, `CREATE TABLE [a'b] (x TEXT)`},
		{"CREATE TABLE t (\n  x TEXT -- user's name\n)", "CREATE TABLE t (\n  x TEXT -- user's name\n)"},
		{"CREATE TABLE t (x TEXT /* it's */ DEFAULT 'a\\b')", `CREATE TABLE t (x TEXT /* it's */ DEFAULT 'a\\b')`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MySQLLiterals(tt.in), tt.in)
	}

	ddl := `CREATE TABLE t (p TEXT DEFAULT 'C:\dir\new', q TEXT DEFAULT 'it''s')`
	assert.Equal(t, ddl, RewriteLiterals(MySQLLiterals(ddl)))
}

func TestRewriteLiterals(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`SELECT 1`, `SELECT 1`},
		{`SELECT 'plain'`, `SELECT 'plain'`},
		{`SELECT 'it\'s'`, `SELECT 'it''s'`},
		{`SELECT 'it''s'`, `SELECT 'it''s'`},
		{`SELECT 'a\\b'`, `SELECT 'a\b'`},
		{`SELECT 'two\nlines'`, "SELECT 'two\nlines'"},
		{`SELECT 'tab\there'`, "SELECT 'tab\there'"},
		{`SELECT 'nul\0byte'`, `SELECT ('nul' || char(0) || 'byte')`},
		{"SELECT `it's` FROM t", "SELECT `it's` FROM t"},
		{`SELECT "it's" FROM t`, `SELECT "it's" FROM t`},
		{`SELECT 'like\%'`, `SELECT 'like\%'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RewriteLiterals(tt.in), tt.in)
	}
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, `'plain'`, QuoteString("plain"))
	assert.Equal(t, `'it''s'`, QuoteString("it's"))
	assert.Equal(t, `'a\\b'`, QuoteString(`a\b`))
	assert.Equal(t, `'nul\0'`, QuoteString("nul\x00"))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`wp_posts`", QuoteIdentifier("wp_posts"))
	assert.Equal(t, "`we``ird`", QuoteIdentifier("we`ird"))
}

func TestTranslator_NoOps(t *testing.T) {
	tr := openTestDb(t)

	for _, q := range []string{
		"SET NAMES utf8mb4",
		"SET foreign_key_checks = 0;",
		"USE wordpress",
		"LOCK TABLES `wp_posts` WRITE",
		"UNLOCK TABLES",
	} {
		res := mustQuery(t, tr, q)
		assert.Empty(t, res.Rows, q)
	}
}

func TestTranslator_ShowTablesAndCreateTable(t *testing.T) {
	tr := openTestDb(t)
	mustQuery(t, tr, "CREATE TABLE `wp_options` (option_id INTEGER PRIMARY KEY, option_name TEXT NOT NULL)")
	mustQuery(t, tr, "CREATE TABLE `wp_posts` (id INTEGER)")

	tables := mustQuery(t, tr, "SHOW TABLES")
	assert.Equal(t, []string{"name"}, tables.Columns)
	assert.ElementsMatch(t, [][]any{{"wp_options"}, {"wp_posts"}}, tables.Rows)

	filtered := mustQuery(t, tr, "SHOW TABLES LIKE 'wp_p%'")
	assert.Equal(t, [][]any{{"wp_posts"}}, filtered.Rows)

	create := mustQuery(t, tr, "SHOW CREATE TABLE `wp_posts`")
	assert.Equal(t, []string{"Table", "Create Table"}, create.Columns)
	assert.Equal(t, "CREATE TABLE `wp_posts` (id INTEGER)", create.Maps()[0]["Create Table"])

	_, err := tr.Query(context.Background(), "SHOW CREATE TABLE missing")
	assert.ErrorContains(t, err, "doesn't exist")
}

func TestTranslator_ShowColumns(t *testing.T) {
	tr := openTestDb(t)
	mustQuery(t, tr, "CREATE TABLE `wp_options` (option_id INTEGER PRIMARY KEY, option_name TEXT NOT NULL, autoload TEXT DEFAULT 'yes')")

	for _, q := range []string{"SHOW COLUMNS FROM `wp_options`", "DESCRIBE wp_options"} {
		res := mustQuery(t, tr, q)
		assert.Equal(t, []string{"Field", "Type", "Null", "Key", "Default", "Extra"}, res.Columns)
		require.Len(t, res.Rows, 3)
		assert.Equal(t, []any{"option_id", "integer", "YES", "PRI", nil, ""}, res.Rows[0])
		assert.Equal(t, []any{"option_name", "text", "NO", "", nil, ""}, res.Rows[1])
		assert.Equal(t, "'yes'", res.Rows[2][4])
	}
}

func TestTranslator_InsertWithMySQLEscapes(t *testing.T) {
	tr := openTestDb(t)
	mustQuery(t, tr, "CREATE TABLE t (v TEXT)")

	res := mustQuery(t, tr, `INSERT INTO t VALUES ('it\'s'),('two\nlines'),('back\\slash')`)
	assert.Equal(t, int64(3), res.RowsAffected)

	rows := mustQuery(t, tr, "SELECT v FROM t ORDER BY rowid")
	assert.Equal(t, [][]any{{"it's"}, {"two\nlines"}, {`back\slash`}}, rows.Rows)
}

func TestTranslator_Transactions(t *testing.T) {
	tr := openTestDb(t)
	mustQuery(t, tr, "CREATE TABLE t (v INTEGER)")

	mustQuery(t, tr, "START TRANSACTION")
	mustQuery(t, tr, "INSERT INTO t VALUES (1)")
	mustQuery(t, tr, "COMMIT")

	rows := mustQuery(t, tr, "SELECT COUNT(*) AS n FROM t")
	assert.Equal(t, int64(1), rows.Maps()[0]["n"])
}

func TestTranslator_InvalidStatement(t *testing.T) {
	tr := openTestDb(t)

	_, err := tr.Query(context.Background(), "THIS IS NOT SQL")
	assert.Error(t, err)

	_, err = tr.Query(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrUnsupportedStatement)

	_, err = tr.Query(context.Background(), "SHOW PROCESSLIST")
	assert.ErrorIs(t, err, ErrUnsupportedStatement)
}

func TestIsRowModifying(t *testing.T) {
	assert.True(t, IsRowModifying("INSERT INTO t VALUES (1)"))
	assert.True(t, IsRowModifying("  update t set v = 1"))
	assert.True(t, IsRowModifying("DELETE FROM t"))
	assert.True(t, IsRowModifying("REPLACE INTO t VALUES (1)"))
	assert.False(t, IsRowModifying("SELECT * FROM t"))
	assert.False(t, IsRowModifying("CREATE TABLE t (v INTEGER)"))
}
