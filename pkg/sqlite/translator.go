package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"
	_ "modernc.org/sqlite"
)

var ErrUnsupportedStatement = errors.New("statement is not supported by the SQLite translator")

// Result is what a translated statement produced. Statements without a
// result set only carry RowsAffected.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// Maps returns the rows keyed by column name.
func (r *Result) Maps() []map[string]any {
	out := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		m := make(map[string]any, len(r.Columns))
		for i, c := range r.Columns {
			m[c] = row[i]
		}
		out = append(out, m)
	}
	return out
}

// Translator runs MySQL flavoured statements, as found in dumps and typed on
// the command line, against a SQLite database file.
type Translator struct {
	db   *sql.DB
	path string
}

// Open opens (and creates if needed) the database file at path.
func Open(path string) (*Translator, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	// a single connection keeps PRAGMAs and transactions on the same handle
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	return &Translator{db: db, path: path}, nil
}

func (t *Translator) Conn() *sql.DB {
	return t.db
}

func (t *Translator) Path() string {
	return t.path
}

func (t *Translator) Close() error {
	return t.db.Close()
}

// Quote renders s as a string literal MySQL would read back unchanged.
func (t *Translator) Quote(s string) string {
	return QuoteString(s)
}

func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`''`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// identifierPattern matches a possibly qualified, possibly backtick quoted name.
const identifierPattern = "(?:`(?:[^`]|``)*`\\.)?`(?:[^`]|``)*`|\\S+"

var (
	lockTablesRe  = regexp.MustCompile(`(?is)^(lock|unlock)\s+tables?\b`)
	showTablesRe  = regexp.MustCompile(`(?is)^show\s+(?:full\s+)?tables(?:\s+(?:from|in)\s+\S+)?(?:\s+like\s+'((?:[^'\\]|\\.|'')*)')?$`)
	showCreateRe  = regexp.MustCompile("(?is)^show\\s+create\\s+table\\s+(" + identifierPattern + ")$")
	showColumnsRe = regexp.MustCompile("(?is)^show\\s+(?:full\\s+)?(?:columns|fields)\\s+(?:from|in)\\s+(" + identifierPattern + ")(?:\\s+(?:from|in)\\s+\\S+)?$")
	describeRe    = regexp.MustCompile("(?is)^(?:describe|desc)\\s+(" + identifierPattern + ")$")
	firstWordRe   = regexp.MustCompile(`^\s*([A-Za-z]+)`)
)

// Query runs one statement.
func (t *Translator) Query(ctx context.Context, statement string) (*Result, error) {
	q := strings.TrimSpace(statement)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if q == "" {
		return nil, fmt.Errorf("%w: empty statement", ErrUnsupportedStatement)
	}

	if lockTablesRe.MatchString(q) {
		return &Result{}, nil
	}

	switch sqlparser.Preview(q) {
	case sqlparser.StmtSet, sqlparser.StmtUse, sqlparser.StmtComment:
		return &Result{}, nil
	case sqlparser.StmtShow:
		return t.show(ctx, q)
	case sqlparser.StmtSelect:
		return t.rows(ctx, RewriteLiterals(q))
	case sqlparser.StmtBegin:
		return t.exec(ctx, "BEGIN")
	case sqlparser.StmtOther, sqlparser.StmtUnknown:
		if m := describeRe.FindStringSubmatch(q); m != nil {
			return t.columns(ctx, unquoteIdentifier(m[1]))
		}
		switch firstWord(q) {
		case "pragma", "with", "explain", "values":
			return t.rows(ctx, RewriteLiterals(q))
		}
	}
	return t.exec(ctx, RewriteLiterals(q))
}

// IsRowModifying reports whether statement changes rows and therefore has
// an affected row count worth reporting.
func IsRowModifying(statement string) bool {
	switch sqlparser.Preview(strings.TrimSpace(statement)) {
	case sqlparser.StmtInsert, sqlparser.StmtReplace, sqlparser.StmtUpdate, sqlparser.StmtDelete:
		return true
	}
	return false
}

func firstWord(q string) string {
	m := firstWordRe.FindStringSubmatch(q)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

func (t *Translator) exec(ctx context.Context, q string) (*Result, error) {
	res, err := t.db.ExecContext(ctx, q)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return &Result{RowsAffected: affected}, nil
}

func (t *Translator) rows(ctx context.Context, q string, args ...any) (*Result, error) {
	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := &Result{Columns: columns}
	for rows.Next() {
		row := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result, rows.Err()
}

func (t *Translator) show(ctx context.Context, q string) (*Result, error) {
	if m := showTablesRe.FindStringSubmatch(q); m != nil {
		query := "SELECT name FROM sqlite_master WHERE type = 'table'"
		var args []any
		if m[1] != "" {
			query += " AND name LIKE ?"
			args = append(args, decodeMySQLString(m[1]))
		}
		return t.rows(ctx, query, args...)
	}
	if m := showCreateRe.FindStringSubmatch(q); m != nil {
		name := unquoteIdentifier(m[1])
		var ddl string
		err := t.db.QueryRowContext(ctx, "SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&ddl)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("table '%s' doesn't exist", name)
		}
		if err != nil {
			return nil, err
		}
		return &Result{
			Columns: []string{"Table", "Create Table"},
			Rows:    [][]any{{name, MySQLLiterals(ddl)}},
		}, nil
	}
	if m := showColumnsRe.FindStringSubmatch(q); m != nil {
		return t.columns(ctx, unquoteIdentifier(m[1]))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedStatement, q)
}

// columns describes a table the way MySQL's SHOW COLUMNS does.
func (t *Translator) columns(ctx context.Context, table string) (*Result, error) {
	info, err := t.rows(ctx, "SELECT name, type, \"notnull\", dflt_value, pk FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, err
	}
	if len(info.Rows) == 0 {
		return nil, fmt.Errorf("table '%s' doesn't exist", table)
	}
	result := &Result{Columns: []string{"Field", "Type", "Null", "Key", "Default", "Extra"}}
	for _, r := range info.Rows {
		null := "YES"
		if n, ok := r[2].(int64); ok && n != 0 {
			null = "NO"
		}
		key := ""
		if n, ok := r[4].(int64); ok && n > 0 {
			key = "PRI"
		}
		result.Rows = append(result.Rows, []any{r[0], strings.ToLower(fmt.Sprint(r[1])), null, key, r[3], ""})
	}
	return result, nil
}

func unquoteIdentifier(name string) string {
	// drop a schema qualifier, SQLite only has the one
	if i := strings.LastIndex(name, "`.`"); i >= 0 {
		name = name[i+2:]
	} else if i := strings.LastIndex(name, "."); i >= 0 && !strings.ContainsAny(name, "`\"[") {
		name = name[i+1:]
	}
	if len(name) >= 2 {
		switch {
		case name[0] == '`' && name[len(name)-1] == '`':
			return strings.ReplaceAll(name[1:len(name)-1], "``", "`")
		case name[0] == '"' && name[len(name)-1] == '"':
			return strings.ReplaceAll(name[1:len(name)-1], `""`, `"`)
		case name[0] == '[' && name[len(name)-1] == ']':
			return name[1 : len(name)-1]
		}
	}
	return name
}

// RewriteLiterals turns MySQL single quoted string literals, which use
// backslash escapes, into SQLite literals, which only know doubled quotes.
// Identifiers in backticks or double quotes are copied as they are.
func RewriteLiterals(q string) string {
	if !strings.ContainsRune(q, '\'') {
		return q
	}
	var b strings.Builder
	b.Grow(len(q))
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch c {
		case '`', '"':
			end := closingQuote(q, i+1, c)
			b.WriteString(q[i:end])
			i = end - 1
		case '\'':
			value, end := readMySQLString(q, i+1)
			b.WriteString(sqliteLiteral(value))
			i = end - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// MySQLLiterals is the inverse of RewriteLiterals for statements SQLite
// stored itself: literals there only know doubled quotes, so they are
// re-quoted with QuoteString, newlines escaped, to read back unchanged
// through MySQL or RewriteLiterals. Comments are copied as they are.
func MySQLLiterals(q string) string {
	if !strings.ContainsRune(q, '\'') {
		return q
	}
	var b strings.Builder
	b.Grow(len(q))
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '`' || c == '"':
			end := closingQuote(q, i+1, c)
			b.WriteString(q[i:end])
			i = end - 1
		case c == '[':
			end := strings.IndexByte(q[i:], ']')
			if end < 0 {
				b.WriteString(q[i:])
				return b.String()
			}
			b.WriteString(q[i : i+end+1])
			i += end
		case c == '-' && strings.HasPrefix(q[i:], "--"):
			end := strings.IndexByte(q[i:], '\n')
			if end < 0 {
				b.WriteString(q[i:])
				return b.String()
			}
			b.WriteString(q[i : i+end+1])
			i += end
		case c == '/' && strings.HasPrefix(q[i:], "/*"):
			end := strings.Index(q[i+2:], "*/")
			if end < 0 {
				b.WriteString(q[i:])
				return b.String()
			}
			b.WriteString(q[i : i+2+end+2])
			i += end + 3
		case c == '\'':
			end := closingQuote(q, i+1, '\'')
			body := q[i+1 : max(end-1, i+1)]
			literal := QuoteString(strings.ReplaceAll(body, "''", "'"))
			b.WriteString(strings.ReplaceAll(literal, "\n", `\n`))
			i = end - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// closingQuote returns the index just past the quote closing the identifier
// which started before from.
func closingQuote(q string, from int, quote byte) int {
	for i := from; i < len(q); i++ {
		if q[i] != quote {
			continue
		}
		if i+1 < len(q) && q[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(q)
}

// readMySQLString decodes the literal body starting at from and returns the
// decoded value and the index just past the closing quote.
func readMySQLString(q string, from int) (string, int) {
	var b strings.Builder
	for i := from; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '\\' && i+1 < len(q):
			i++
			b.WriteString(unescape(q[i]))
		case c == '\'':
			if i+1 < len(q) && q[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			return b.String(), i + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), len(q)
}

func decodeMySQLString(body string) string {
	value, _ := readMySQLString(body+"'", 0)
	return value
}

func unescape(c byte) string {
	switch c {
	case '0':
		return "\x00"
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 't':
		return "\t"
	case 'b':
		return "\b"
	case 'Z':
		return "\x1a"
	case '%', '_':
		// kept for LIKE patterns, as MySQL does
		return `\` + string(c)
	default:
		return string(c)
	}
}

// sqliteLiteral quotes value for SQLite. NUL bytes cannot appear inside a
// SQLite literal, so they are spliced in with char(0).
func sqliteLiteral(value string) string {
	if !strings.ContainsRune(value, 0) {
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	}
	parts := strings.Split(value, "\x00")
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = "'" + strings.ReplaceAll(p, "'", "''") + "'"
	}
	return "(" + strings.Join(quoted, " || char(0) || ") + ")"
}
