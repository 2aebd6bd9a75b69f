package sqlite

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
)

// InternalTables are never exported: they belong to SQLite itself or to the
// MySQL emulation layer and are recreated on demand.
var InternalTables = []string{
	"_mysql_data_types_cache",
	"sqlite_master",
	"sqlite_sequence",
}

type Exporter struct {
	translator *Translator
	now        func() time.Time
}

func NewExporter(translator *Translator) *Exporter {
	return &Exporter{
		translator: translator,
		now:        time.Now,
	}
}

// Export writes a MySQL compatible dump of the selected tables to w and
// returns how many tables were written. A table is exported if opts.Tables is
// empty or names it, and opts.ExcludeTables (always extended by
// InternalTables) does not. opts.Args is checked by the backend.
func (e *Exporter) Export(ctx context.Context, w io.Writer, opts common.ExportOptions) (int, error) {
	include := opts.Tables
	exclude := append(slices.Clone(opts.ExcludeTables), InternalTables...)

	tables, err := e.translator.Query(ctx, "SHOW TABLES")
	if err != nil {
		return 0, fmt.Errorf("list tables: %w", err)
	}

	bw := bufio.NewWriter(w)
	written := 0
	for _, row := range tables.Rows {
		name := fmt.Sprint(row[0])
		if len(include) > 0 && !slices.Contains(include, name) {
			continue
		}
		if slices.Contains(exclude, name) {
			continue
		}

		pterm.Debug.Printfln("Exporting table %s", name)
		if err := e.writeCreateTable(ctx, bw, name); err != nil {
			return written, err
		}
		if err := e.writeInserts(ctx, bw, name); err != nil {
			return written, err
		}
		written++
	}

	if _, err := fmt.Fprintf(bw, "-- Dump completed on %s", e.now().UTC().Format(time.RFC3339)); err != nil {
		return written, err
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("write dump: %w", err)
	}
	return written, nil
}

func (e *Exporter) writeCreateTable(ctx context.Context, w *bufio.Writer, table string) error {
	create, err := e.translator.Query(ctx, "SHOW CREATE TABLE "+QuoteIdentifier(table))
	if err != nil {
		return fmt.Errorf("get create statement of %s: %w", table, err)
	}
	ddl := strings.TrimSpace(fmt.Sprint(create.Rows[0][1]))
	if !strings.HasSuffix(ddl, ";") {
		ddl += ";"
	}

	writeDumpComment(w, fmt.Sprintf("Table structure for table %s", QuoteIdentifier(table)))
	fmt.Fprintf(w, "DROP TABLE IF EXISTS %s;\n", QuoteIdentifier(table))
	_, err = fmt.Fprintf(w, "%s\n\n", ddl)
	return err
}

func (e *Exporter) writeInserts(ctx context.Context, w *bufio.Writer, table string) error {
	db := e.translator.Conn()

	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdentifier(table)).Scan(&count); err != nil {
		return fmt.Errorf("count rows of %s: %w", table, err)
	}
	if count == 0 {
		return nil
	}

	columns, err := e.columnNames(ctx, table)
	if err != nil {
		return err
	}
	rows, err := db.QueryContext(ctx, selectStored(table, columns))
	if err != nil {
		return fmt.Errorf("read rows of %s: %w", table, err)
	}
	defer rows.Close()

	writeDumpComment(w, fmt.Sprintf("Dumping data for table %s", QuoteIdentifier(table)))

	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	values := make([]Value, len(columns))
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("read rows of %s: %w", table, err)
		}
		for i, v := range raw {
			values[i] = ValueOf(v)
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO %s VALUES (%s);\n", QuoteIdentifier(table), EncodeRow(values, e.translator.Quote)); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read rows of %s: %w", table, err)
	}

	_, err = w.WriteString("\n")
	return err
}

func (e *Exporter) columnNames(ctx context.Context, table string) ([]string, error) {
	info, err := e.translator.rows(ctx, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	names := make([]string, 0, len(info.Rows))
	for _, r := range info.Rows {
		names = append(names, fmt.Sprint(r[0]))
	}
	return names, nil
}

// selectStored reads every column through a unary plus. The expression has no
// declared type, so the driver returns the stored value instead of parsing
// text in DATE/DATETIME/TIMESTAMP columns into time.Time.
func selectStored(table string, columns []string) string {
	exprs := make([]string, len(columns))
	for i, c := range columns {
		exprs[i] = "+" + QuoteIdentifier(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), QuoteIdentifier(table))
}

func writeDumpComment(w *bufio.Writer, comment string) {
	fmt.Fprintf(w, "--\n-- %s\n--\n\n", comment)
}
