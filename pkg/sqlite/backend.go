package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/sandstorm/dbkit/pkg/common/config"
	"github.com/sandstorm/dbkit/pkg/util"
)

const NAME = "sqlite"

var (
	UnsupportedExportArgs = []string{"fields", "include-tablespaces", "defaults", "dbuser", "dbpass"}
	UnsupportedImportArgs = []string{"skip-optimization", "defaults", "fields", "dbuser", "dbpass"}

	ErrDatabaseExists  = errors.New("Database already exists.")
	ErrDatabaseMissing = errors.New("Database does not exist.")
)

// Backend administers a SQLite database file.
type Backend struct {
	cfg        *config.Config
	path       string
	runner     util.Runner
	translator *Translator
	// pluginCheck guards exports and imports; replaced in tests.
	pluginCheck func(cfg *config.Config) error
}

var _ common.DatabaseBackend = (*Backend)(nil)

func NewBackend(cfg *config.Config, runner util.Runner) *Backend {
	return &Backend{
		cfg:    cfg,
		path:   DatabasePath(cfg),
		runner: runner,
		pluginCheck: func(cfg *config.Config) error {
			v, err := CheckPlugin(cfg)
			if err == nil {
				pterm.Debug.Printfln("SQLite integration plugin version %s", v)
			}
			return err
		},
	}
}

func (b *Backend) Name() string {
	return NAME
}

func (b *Backend) Path() string {
	return b.path
}

func (b *Backend) open() (*Translator, error) {
	if b.translator != nil {
		return b.translator, nil
	}
	t, err := Open(b.path)
	if err != nil {
		return nil, err
	}
	b.translator = t
	return t, nil
}

func (b *Backend) Close() error {
	if b.translator == nil {
		return nil
	}
	err := b.translator.Close()
	b.translator = nil
	return err
}

func (b *Backend) DB(ctx context.Context) (*sql.DB, error) {
	t, err := b.open()
	if err != nil {
		return nil, err
	}
	return t.Conn(), nil
}

func (b *Backend) Create(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("Could not create directory: %s: %w", filepath.Dir(b.path), err)
	}
	if fileExists(b.path) {
		return ErrDatabaseExists
	}
	return b.initialize(ctx)
}

// initialize writes the file header, so an empty database exists on disk.
func (b *Backend) initialize(ctx context.Context) error {
	t, err := b.open()
	if err != nil {
		return fmt.Errorf("Could not create SQLite database: %w", err)
	}
	for _, stmt := range []string{"CREATE TABLE IF NOT EXISTS _dbkit_init (id INTEGER)", "DROP TABLE _dbkit_init"} {
		if _, err := t.Conn().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Could not create SQLite database: %w", err)
		}
	}
	return nil
}

func (b *Backend) Drop(ctx context.Context) error {
	if !fileExists(b.path) {
		return ErrDatabaseMissing
	}
	if err := b.Close(); err != nil {
		return err
	}
	if err := os.Remove(b.path); err != nil {
		return fmt.Errorf("Could not delete database file: %s: %w", b.path, err)
	}
	return nil
}

func (b *Backend) Reset(ctx context.Context) error {
	if err := b.Close(); err != nil {
		return err
	}
	if fileExists(b.path) {
		if err := os.Remove(b.path); err != nil {
			return fmt.Errorf("Could not delete database file: %s: %w", b.path, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("Could not create directory: %s: %w", filepath.Dir(b.path), err)
	}
	return b.initialize(ctx)
}

func (b *Backend) DropTables(ctx context.Context, tables []string) error {
	t, err := b.open()
	if err != nil {
		return err
	}
	for _, table := range tables {
		if _, err := t.Conn().ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdentifier(table)); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	return nil
}

func (b *Backend) Check(ctx context.Context, mode common.CheckMode, args common.AssocArgs) error {
	t, err := b.open()
	if err != nil {
		return err
	}
	switch mode {
	case common.CHECK_MODE_CHECK:
		var problems []string
		rows, err := t.Conn().QueryContext(ctx, "PRAGMA integrity_check")
		if err != nil {
			return fmt.Errorf("integrity check: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var line string
			if err := rows.Scan(&line); err != nil {
				return err
			}
			if line != "ok" {
				problems = append(problems, line)
			}
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(problems) > 0 {
			return fmt.Errorf("Database check failed:\n%s", strings.Join(problems, "\n"))
		}
		return nil
	case common.CHECK_MODE_OPTIMIZE:
		if _, err := t.Conn().ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("Database optimization failed: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("Database %s is not supported by SQLite.", mode)
	}
}

func (b *Backend) Cli(ctx context.Context, args common.AssocArgs) error {
	bin, err := b.runner.LookPath("sqlite3")
	if err != nil {
		return errors.New("The sqlite3 binary could not be found. Please install sqlite3 to use the cli command.")
	}
	cmdArgs := []string{b.path}
	if args.Has("execute") {
		cmdArgs = append(cmdArgs, args.Get("execute"))
	}
	return b.runner.Run(ctx, util.Command{Name: bin, Args: cmdArgs})
}

func (b *Backend) Query(ctx context.Context, statement string, args common.AssocArgs) (*common.QueryResult, error) {
	t, err := b.open()
	if err != nil {
		return nil, err
	}
	res, err := t.Query(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("Query failed: %w", err)
	}
	return &common.QueryResult{
		Columns:      res.Columns,
		Rows:         res.Rows,
		RowsAffected: res.RowsAffected,
		Modifying:    IsRowModifying(statement),
	}, nil
}

// CheckArguments rejects options the SQLite export or import cannot honour.
func CheckArguments(args common.AssocArgs, unsupported []string, operation string) error {
	for _, key := range unsupported {
		if args.Has(key) {
			return fmt.Errorf("The following arguments are not supported by SQLite %s: %s", operation, strings.Join(unsupported, ", "))
		}
	}
	return nil
}

func (b *Backend) Export(ctx context.Context, w io.Writer, opts common.ExportOptions) error {
	if err := CheckArguments(opts.Args, UnsupportedExportArgs, "exports"); err != nil {
		return err
	}
	if err := b.pluginCheck(b.cfg); err != nil {
		return err
	}
	if !fileExists(b.path) {
		return ErrDatabaseMissing
	}
	t, err := b.open()
	if err != nil {
		return err
	}
	n, err := NewExporter(t).Export(ctx, w, opts)
	if err != nil {
		return err
	}
	pterm.Debug.Printfln("Exported %d tables", n)
	return nil
}

func (b *Backend) Import(ctx context.Context, opts common.ImportOptions) error {
	args := opts.Args
	if opts.SkipOptimization {
		args = args.Without()
		args["skip-optimization"] = ""
	}
	if err := CheckArguments(args, UnsupportedImportArgs, "imports"); err != nil {
		return err
	}
	if err := b.pluginCheck(b.cfg); err != nil {
		return err
	}

	in := opts.Stdin
	if opts.File != "" {
		f, err := os.Open(opts.File)
		if err != nil {
			return fmt.Errorf("Import file missing or not readable: %s", opts.File)
		}
		defer f.Close()
		in = f
	}
	if in == nil {
		in = os.Stdin
	}

	t, err := b.open()
	if err != nil {
		return err
	}
	result, err := NewImporter(t).Import(ctx, in)
	if err != nil {
		return err
	}
	pterm.Debug.Printfln("Executed %d statements, %d failed", result.Executed, result.Failed)
	return nil
}

func (b *Backend) Size(ctx context.Context) (int64, error) {
	info, err := os.Stat(b.path)
	if err != nil {
		return 0, nil
	}
	return info.Size(), nil
}

func (b *Backend) TableSizes(ctx context.Context, tables []string) ([]common.TableSize, error) {
	t, err := b.open()
	if err != nil {
		return nil, err
	}
	sizes := make([]common.TableSize, 0, len(tables))
	for _, table := range tables {
		var bytes sql.NullInt64
		err := t.Conn().QueryRowContext(ctx, "SELECT SUM(pgsize) FROM dbstat WHERE name = ?", table).Scan(&bytes)
		if err != nil {
			// dbstat is a compile time option of SQLite
			pterm.Debug.Printfln("Could not determine size of table %s: %s", table, err)
		}
		sizes = append(sizes, common.TableSize{Name: table, Bytes: bytes.Int64})
	}
	return sizes, nil
}

func (b *Backend) Tables(ctx context.Context) ([]string, error) {
	t, err := b.open()
	if err != nil {
		return nil, err
	}
	res, err := t.Query(ctx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}
	tables := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		name := fmt.Sprint(row[0])
		if slices.Contains(InternalTables, name) {
			continue
		}
		tables = append(tables, name)
	}
	return tables, nil
}

func (b *Backend) Columns(ctx context.Context, table string) ([]common.Column, error) {
	t, err := b.open()
	if err != nil {
		return nil, err
	}
	res, err := t.Query(ctx, "SHOW COLUMNS FROM "+QuoteIdentifier(table))
	if err != nil {
		return nil, err
	}
	columns := make([]common.Column, 0, len(res.Rows))
	for _, row := range res.Rows {
		c := common.Column{
			Field: fmt.Sprint(row[0]),
			Type:  fmt.Sprint(row[1]),
			Null:  fmt.Sprint(row[2]),
			Key:   fmt.Sprint(row[3]),
			Extra: fmt.Sprint(row[5]),
		}
		if row[4] != nil {
			d := fmt.Sprint(row[4])
			c.Default = &d
		}
		columns = append(columns, c)
	}
	return columns, nil
}

func (b *Backend) CreateUser(ctx context.Context, user common.UserSpec) error {
	return errors.New("SQLite does not support database users.")
}
