package sqlite

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func split(t *testing.T, input string) []string {
	t.Helper()
	statements, err := SplitStatements(strings.NewReader(input))
	require.NoError(t, err)
	return statements
}

func TestSplitStatements_SemicolonInsideQuotes(t *testing.T) {
	statements := split(t, "INSERT INTO t VALUES ('a;b');\nINSERT INTO t VALUES (\"c;d\");")

	assert.Equal(t, []string{
		"INSERT INTO t VALUES ('a;b')",
		`INSERT INTO t VALUES ("c;d")`,
	}, statements)
}

func TestSplitStatements_SkipsCommentsAndBlankLines(t *testing.T) {
	input := `-- a comment
# another comment

/* block
   still in the block;
*/
SELECT 1;
   -- indented comment
SELECT 2;`

	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, split(t, input))
}

func TestSplitStatements_SingleLineBlockComment(t *testing.T) {
	input := "/*!40101 SET NAMES utf8 */;\nSELECT 1;"

	assert.Equal(t, []string{"SELECT 1"}, split(t, input))
}

func TestSplitStatements_EscapedQuoteDoesNotToggle(t *testing.T) {
	input := `INSERT INTO t VALUES ('it\'s; fine');SELECT 2;`

	assert.Equal(t, []string{
		`INSERT INTO t VALUES ('it\'s; fine')`,
		"SELECT 2",
	}, split(t, input))
}

func TestSplitStatements_EscapedBackslashBeforeQuote(t *testing.T) {
	// the quote after \\ closes the literal
	input := `INSERT INTO t VALUES ('a\\');SELECT 2;`

	assert.Equal(t, []string{
		`INSERT INTO t VALUES ('a\\')`,
		"SELECT 2",
	}, split(t, input))
}

func TestSplitStatements_DoubledQuotes(t *testing.T) {
	assert.Equal(t, []string{"SELECT 'it''s;'", "SELECT 2"}, split(t, "SELECT 'it''s;';SELECT 2;"))
}

func TestSplitStatements_MultiLineStatement(t *testing.T) {
	input := "CREATE TABLE t (\n  id INTEGER,\n  name TEXT\n);\n"

	assert.Equal(t, []string{"CREATE TABLE t (\nid INTEGER,\nname TEXT\n)"}, split(t, input))
}

func TestSplitStatements_TrailingStatementWithoutSemicolon(t *testing.T) {
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, split(t, "SELECT 1;\nSELECT 2"))
}

func TestSplitStatements_EmptyStatementsAreDropped(t *testing.T) {
	assert.Equal(t, []string{"SELECT 1"}, split(t, ";;SELECT 1;;\n;"))
}

func TestSplitStatements_EmptyInput(t *testing.T) {
	assert.Empty(t, split(t, ""))
	assert.Empty(t, split(t, "-- only a comment\n\n"))
}

func TestStatementReader_ReturnsEOFRepeatedly(t *testing.T) {
	r := NewStatementReader(strings.NewReader("SELECT 1;"))

	stmt, err := r.ReadStatement()
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", stmt)

	_, err = r.ReadStatement()
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadStatement()
	assert.ErrorIs(t, err, io.EOF)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestStatementReader_ReadErrorIsReturned(t *testing.T) {
	_, err := NewStatementReader(failingReader{}).ReadStatement()

	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "disk on fire")
}
