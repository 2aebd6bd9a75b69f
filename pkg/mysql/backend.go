package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/sandstorm/dbkit/pkg/util"
)

const NAME = "mysql"

const (
	importQuery             = "SET autocommit = 0; SET unique_checks = 0; SET foreign_key_checks = 0; SOURCE %s; COMMIT;"
	importQueryUnoptimized  = "SOURCE %s;"
	sizeOfDatabaseQuery     = "SELECT SUM(data_length + index_length) FROM information_schema.TABLES WHERE table_schema = ? GROUP BY table_schema"
	sizeOfTableQuery        = "SELECT SUM(data_length + index_length) FROM information_schema.TABLES WHERE table_schema = ? AND table_name = ? GROUP BY table_name LIMIT 1"
	columnStatisticsSupport = "column-statistics"
)

// Backend administers a MySQL or MariaDB database. Administrative operations
// go through the client binaries, reads go through database/sql.
type Backend struct {
	creds  common.DbCredentials
	runner util.Runner
	db     *sql.DB
}

var _ common.DatabaseBackend = (*Backend)(nil)

func NewBackend(creds common.DbCredentials, runner util.Runner) *Backend {
	return &Backend{
		creds:  creds,
		runner: runner,
	}
}

func (b *Backend) Name() string {
	return NAME
}

func (b *Backend) Credentials() common.DbCredentials {
	return b.creds
}

func (b *Backend) DB(ctx context.Context) (*sql.DB, error) {
	if b.db != nil {
		return b.db, nil
	}
	db, err := openDB(b.creds)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not connect to database %s: %w", b.creds.DbName, err)
	}
	b.db = db
	return db, nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// command assembles a client invocation; positional arguments go last.
func (b *Backend) command(binary string, fixed []string, args common.AssocArgs, positional ...string) util.Command {
	final, password := connectionArgs(b.creds, args)
	cmdArgs := append(baseArgs(args, fixed...), formatArgs(final)...)
	cmdArgs = append(cmdArgs, positional...)

	c := util.Command{Name: binary, Args: cmdArgs}
	if password != "" {
		c.Env = []string{"MYSQL_PWD=" + password}
	}
	return c
}

func (b *Backend) mysql(args common.AssocArgs) util.Command {
	return b.command("mysql", []string{"--no-auto-rehash"}, args)
}

func (b *Backend) runQuery(ctx context.Context, query string) error {
	return b.runner.Run(ctx, b.mysql(common.AssocArgs{"execute": query}))
}

func (b *Backend) createQuery() string {
	q := "CREATE DATABASE " + QuoteIdentifier(b.creds.DbName)
	if b.creds.Charset != "" {
		q += " DEFAULT CHARSET " + QuoteIdentifier(b.creds.Charset)
	}
	if b.creds.Collate != "" {
		q += " DEFAULT COLLATE " + QuoteIdentifier(b.creds.Collate)
	}
	return q
}

func (b *Backend) Create(ctx context.Context) error {
	return b.runQuery(ctx, b.createQuery())
}

func (b *Backend) Drop(ctx context.Context) error {
	return b.runQuery(ctx, "DROP DATABASE "+QuoteIdentifier(b.creds.DbName))
}

func (b *Backend) Reset(ctx context.Context) error {
	if err := b.runQuery(ctx, "DROP DATABASE IF EXISTS "+QuoteIdentifier(b.creds.DbName)); err != nil {
		return err
	}
	return b.runQuery(ctx, b.createQuery())
}

func (b *Backend) DropTables(ctx context.Context, tables []string) error {
	for _, table := range tables {
		q := fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", QuoteIdentifier(b.creds.DbName), QuoteIdentifier(table))
		if err := b.runQuery(ctx, q); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	return nil
}

func (b *Backend) Check(ctx context.Context, mode common.CheckMode, args common.AssocArgs) error {
	return b.runner.Run(ctx, b.command("mysqlcheck", []string{"--" + string(mode)}, args, b.creds.DbName))
}

func (b *Backend) Cli(ctx context.Context, args common.AssocArgs) error {
	withDb := args.Without()
	if !withDb.Has("database") {
		withDb["database"] = b.creds.DbName
	}
	return b.runner.Run(ctx, b.mysql(withDb))
}

// Query hands the statement to the mysql client, which prints the result.
// An empty statement makes the client read from stdin.
func (b *Backend) Query(ctx context.Context, statement string, args common.AssocArgs) (*common.QueryResult, error) {
	withDb := args.Without()
	withDb["database"] = b.creds.DbName
	if statement != "" {
		withDb["execute"] = statement
	}
	return nil, b.runner.Run(ctx, b.mysql(withDb))
}

func (b *Backend) Export(ctx context.Context, w io.Writer, opts common.ExportOptions) error {
	bin, err := b.runner.LookPath("mysqldump")
	if err != nil {
		db, err := b.DB(ctx)
		if err != nil {
			return err
		}
		tables, err := b.Tables(ctx)
		if err != nil {
			return err
		}
		return dumpInProcess(db, w, tables, opts.Tables, opts.ExcludeTables)
	}

	var fixed []string
	if help, err := b.runner.Output(ctx, util.Command{Name: bin, Args: []string{"--help"}}); err == nil && strings.Contains(help, columnStatisticsSupport) {
		fixed = append(fixed, "--skip-column-statistics")
	}

	args := opts.Args.Without()
	positional := []string{b.creds.DbName}
	if len(opts.Tables) > 0 {
		positional = append(positional, "--tables")
		positional = append(positional, opts.Tables...)
	}
	for _, table := range opts.ExcludeTables {
		positional = append(positional, fmt.Sprintf("--ignore-table=%s.%s", b.creds.DbName, table))
	}

	c := b.command(bin, fixed, args, positional...)
	c.Stdout = w
	if err := b.runner.Run(ctx, c); err != nil {
		return fmt.Errorf("mysqldump failed: %w", err)
	}
	return nil
}

func (b *Backend) Import(ctx context.Context, opts common.ImportOptions) error {
	mysqlArgs := FilterMysqlArgs(opts.Args)
	mysqlArgs["database"] = b.creds.DbName

	if opts.File != "" {
		f, err := os.Open(opts.File)
		if err != nil {
			return fmt.Errorf("Import file missing or not readable: %s", opts.File)
		}
		_ = f.Close()

		query := importQuery
		if opts.SkipOptimization {
			query = importQueryUnoptimized
		}
		mysqlArgs["execute"] = fmt.Sprintf(query, opts.File)
	}
	if opts.Args.Has("defaults") {
		mysqlArgs["defaults"] = ""
	}

	c := b.mysql(mysqlArgs)
	c.Stdin = opts.Stdin
	return b.runner.Run(ctx, c)
}

func (b *Backend) Size(ctx context.Context) (int64, error) {
	db, err := b.DB(ctx)
	if err != nil {
		return 0, err
	}
	var size sql.NullInt64
	err = db.QueryRowContext(ctx, sizeOfDatabaseQuery, b.creds.DbName).Scan(&size)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("size of database %s: %w", b.creds.DbName, err)
	}
	return size.Int64, nil
}

func (b *Backend) TableSizes(ctx context.Context, tables []string) ([]common.TableSize, error) {
	db, err := b.DB(ctx)
	if err != nil {
		return nil, err
	}
	sizes := make([]common.TableSize, 0, len(tables))
	for _, table := range tables {
		var size sql.NullInt64
		err := db.QueryRowContext(ctx, sizeOfTableQuery, b.creds.DbName, table).Scan(&size)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("size of table %s: %w", table, err)
		}
		sizes = append(sizes, common.TableSize{Name: table, Bytes: size.Int64})
	}
	return sizes, nil
}

func (b *Backend) Tables(ctx context.Context) ([]string, error) {
	db, err := b.DB(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var table sql.NullString
		if err := rows.Scan(&table); err != nil {
			return tables, err
		}
		tables = append(tables, table.String)
	}
	return tables, rows.Err()
}

func (b *Backend) Columns(ctx context.Context, table string) ([]common.Column, error) {
	db, err := b.DB(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SHOW COLUMNS FROM "+QuoteIdentifier(table))
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []common.Column
	for rows.Next() {
		var c common.Column
		var def sql.NullString
		if err := rows.Scan(&c.Field, &c.Type, &c.Null, &c.Key, &def, &c.Extra); err != nil {
			return nil, err
		}
		if def.Valid {
			c.Default = &def.String
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

func (b *Backend) CreateUser(ctx context.Context, user common.UserSpec) error {
	host := user.Host
	if host == "" {
		host = "localhost"
	}
	identifier := QuoteIdentifier(user.User) + "@" + QuoteIdentifier(host)

	create := "CREATE USER " + identifier
	if user.Password != "" {
		create += " IDENTIFIED BY " + QuoteString(user.Password)
	}
	if err := b.runQuery(ctx, create+";"); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if !user.Grant {
		return nil
	}

	grant := fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO %s;", QuoteIdentifier(b.creds.DbName), identifier)
	if err := b.runQuery(ctx, grant); err != nil {
		return fmt.Errorf("grant privileges: %w", err)
	}
	pterm.Debug.Printfln("Granted all privileges on %s to %s", b.creds.DbName, identifier)
	return b.runQuery(ctx, "FLUSH PRIVILEGES;")
}
