package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
)

const DEFAULT_CONTEXT = 40

const matchSeparator = " [...] "

// Source is what a search needs from a backend.
type Source interface {
	Columns(ctx context.Context, table string) ([]common.Column, error)
	DB(ctx context.Context) (*sql.DB, error)
}

type Options struct {
	Needle string
	// Regex treats Needle as regular expression; all rows are fetched and
	// filtered in process then.
	Regex      bool
	RegexFlags string

	BeforeContext int
	AfterContext  int

	TableColumnOnce bool
	OneLine         bool
	MatchesOnly     bool
	// Stats collects skipped tables silently instead of warning about them.
	Stats bool

	Colors Colors
}

type Stats struct {
	Matches    int
	Tables     int
	Columns    int
	Rows       int
	Skipped    []string
	RunTime    time.Duration
	SearchTime time.Duration
}

func (s Stats) String() string {
	skipped := plural(len(s.Skipped), "table skipped", "tables skipped")
	if len(s.Skipped) > 0 {
		skipped += ": " + strings.Join(s.Skipped, ", ")
	}
	return fmt.Sprintf(
		"Found %d %s in %.3fs (%.3fs searching). Searched %d %s, %d %s, %d %s. %d %s.",
		s.Matches, plural(s.Matches, "match", "matches"),
		s.RunTime.Seconds(), s.SearchTime.Seconds(),
		s.Tables, plural(s.Tables, "table", "tables"),
		s.Columns, plural(s.Columns, "column", "columns"),
		s.Rows, plural(s.Rows, "row", "rows"),
		len(s.Skipped), skipped,
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// EscapeLike escapes the wildcards of a LIKE pattern, using '!' as escape
// character which MySQL and SQLite both accept in an ESCAPE clause.
func EscapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// CompilePattern builds the matcher used on column values.
func CompilePattern(needle string, regex bool, flags string) (*regexp.Regexp, error) {
	if !regex {
		return regexp.MustCompile("(?i)" + regexp.QuoteMeta(needle)), nil
	}

	goFlags := ""
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's', 'U':
			if !strings.ContainsRune(goFlags, f) {
				goFlags += string(f)
			}
		case 'u':
			// values are matched as UTF-8 anyway
		default:
			return nil, regexFailure(needle, flags)
		}
	}
	pattern := needle
	if goFlags != "" {
		pattern = "(?" + goFlags + ")" + needle
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		pterm.Debug.Printfln("regex %s: %s", pattern, err)
		return nil, regexFailure(needle, flags)
	}
	return re, nil
}

func regexFailure(needle, flags string) error {
	flagsMsg := "no flags"
	if flags != "" {
		flagsMsg = fmt.Sprintf("flags '%s'", flags)
	}
	return fmt.Errorf("The regex pattern '%s' with %s fails.", needle, flagsMsg)
}

type tableColumns struct {
	primaryKey string
	text       []string
}

func inspect(columns []common.Column) tableColumns {
	var tc tableColumns
	for _, c := range columns {
		if c.Key == "PRI" && tc.primaryKey == "" {
			tc.primaryKey = c.Field
		}
		t := strings.ToLower(c.Type)
		if strings.Contains(t, "text") || strings.Contains(t, "varchar") {
			tc.text = append(tc.text, c.Field)
		}
	}
	return tc
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Searcher looks for a needle in the text columns of tables and prints
// every matching value.
type Searcher struct {
	source Source
	out    io.Writer
	opts   Options
	re     *regexp.Regexp
	now    func() time.Time
}

func New(source Source, out io.Writer, opts Options) (*Searcher, error) {
	re, err := CompilePattern(opts.Needle, opts.Regex, opts.RegexFlags)
	if err != nil {
		return nil, err
	}
	if opts.Colors.TableColumn == nil || opts.Colors.ID == nil || opts.Colors.Match == nil {
		opts.Colors = NoColors()
	}
	return &Searcher{
		source: source,
		out:    out,
		opts:   opts,
		re:     re,
		now:    time.Now,
	}, nil
}

// Run searches the given tables in order.
func (s *Searcher) Run(ctx context.Context, tables []string) (Stats, error) {
	start := s.now()
	stats := Stats{Tables: len(tables)}

	db, err := s.source.DB(ctx)
	if err != nil {
		return stats, err
	}

	searchStart := s.now()
	for _, table := range tables {
		if err := s.searchTable(ctx, db, table, &stats); err != nil {
			return stats, err
		}
	}

	end := s.now()
	stats.RunTime = end.Sub(start)
	stats.SearchTime = end.Sub(searchStart)
	return stats, nil
}

func (s *Searcher) searchTable(ctx context.Context, db *sql.DB, table string, stats *Stats) error {
	columns, err := s.source.Columns(ctx, table)
	if err != nil {
		pterm.Debug.Printfln("columns of %s: %s", table, err)
	}
	if len(columns) == 0 {
		return fmt.Errorf("No such table '%s'.", table)
	}

	tc := inspect(columns)
	if len(tc.text) == 0 {
		switch {
		case s.opts.Stats:
			stats.Skipped = append(stats.Skipped, table)
		case strings.HasSuffix(table, "_term_relationships"):
			// only integer columns, nothing to report
		case tc.primaryKey != "":
			pterm.Warning.Printfln("No text columns for table '%s' - skipped.", table)
		default:
			pterm.Warning.Printfln("No primary key or text columns for table '%s' - skipped.", table)
		}
		return nil
	}

	stats.Columns += len(tc.text)
	if tc.primaryKey == "" {
		pterm.Warning.Printfln("No primary key for table '%s'. No row ids will be outputted.", table)
	}

	for _, column := range tc.text {
		if err := s.searchColumn(ctx, db, table, tc.primaryKey, column, stats); err != nil {
			return err
		}
	}
	return nil
}

func (s *Searcher) query(table, primaryKey, column string) (string, []any) {
	selected := quoteIdentifier(column)
	if primaryKey != "" {
		selected = quoteIdentifier(primaryKey) + ", " + selected
	}
	q := fmt.Sprintf("SELECT %s FROM %s", selected, quoteIdentifier(table))
	if s.opts.Regex {
		return q, nil
	}
	return q + fmt.Sprintf(" WHERE %s LIKE ? ESCAPE '!'", quoteIdentifier(column)),
		[]any{"%" + EscapeLike(s.opts.Needle) + "%"}
}

func (s *Searcher) searchColumn(ctx context.Context, db *sql.DB, table, primaryKey, column string, stats *Stats) error {
	q, args := s.query(table, primaryKey, column)
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("search %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	tableColumn := s.opts.Colors.TableColumn(table + ":" + column)
	printedTableColumn := false

	for rows.Next() {
		stats.Rows++

		var id, value sql.NullString
		if primaryKey != "" {
			err = rows.Scan(&id, &value)
		} else {
			err = rows.Scan(&value)
		}
		if err != nil {
			return fmt.Errorf("search %s.%s: %w", table, column, err)
		}

		matches := s.re.FindAllStringIndex(value.String, -1)
		if len(matches) == 0 {
			continue
		}
		stats.Matches += len(matches)

		if !s.opts.MatchesOnly && !s.opts.OneLine && (!s.opts.TableColumnOnce || !printedTableColumn) {
			if err := s.println(tableColumn); err != nil {
				return err
			}
			printedTableColumn = true
		}

		pk := ""
		if primaryKey != "" {
			pk = s.opts.Colors.ID(id.String) + ":"
		}
		highlighted := s.highlight(value.String, matches)

		var line string
		switch {
		case s.opts.MatchesOnly:
			line = highlighted
		case s.opts.OneLine:
			line = tableColumn + ":" + pk + highlighted
		default:
			line = pk + highlighted
		}
		if err := s.println(line); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("search %s.%s: %w", table, column, err)
	}
	return ctx.Err()
}

func (s *Searcher) println(line string) error {
	_, err := io.WriteString(s.out, line+"\n")
	return err
}

// highlight renders the matches of value with their context. An after
// context running into the next match is cut there, and the next match is
// appended to the same bit without before context.
func (s *Searcher) highlight(value string, matches [][]int) string {
	var bits []string
	appendNext := false
	lastOffset := 0

	for i, m := range matches {
		offset, end := m[0], m[1]
		match := s.opts.Colors.Match(value[offset:end])
		before, after := "", ""
		shortened := false

		if s.opts.BeforeContext > 0 && offset > 0 && !appendNext {
			before = lastRunes(value[lastOffset:offset], s.opts.BeforeContext)
		}
		if s.opts.AfterContext > 0 {
			after = firstRunes(value[end:], s.opts.AfterContext)
			if i+1 < len(matches) && end+len(after) > matches[i+1][0] {
				after = after[:matches[i+1][0]-end]
				shortened = true
			}
		}

		if appendNext {
			bits[len(bits)-1] += match + after
		} else {
			bits = append(bits, before+match+after)
		}
		appendNext = shortened
		lastOffset = offset
	}
	return strings.Join(bits, matchSeparator)
}

func lastRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := len(s)
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}

func firstRunes(s string, n int) string {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}
