package common

import (
	"context"
	"database/sql"
	"io"
	"sort"
)

// DatabaseBackend is implemented by every engine dbkit can administer.
// Operations an engine cannot perform return an error saying so.
type DatabaseBackend interface {
	Name() string

	Create(ctx context.Context) error
	Drop(ctx context.Context) error
	Reset(ctx context.Context) error
	DropTables(ctx context.Context, tables []string) error

	Check(ctx context.Context, mode CheckMode, args AssocArgs) error
	Cli(ctx context.Context, args AssocArgs) error
	// Query either returns a result for the caller to render, or nil when the
	// engine client already printed the output.
	Query(ctx context.Context, statement string, args AssocArgs) (*QueryResult, error)

	Export(ctx context.Context, w io.Writer, opts ExportOptions) error
	Import(ctx context.Context, opts ImportOptions) error

	Size(ctx context.Context) (int64, error)
	TableSizes(ctx context.Context, tables []string) ([]TableSize, error)
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]Column, error)

	CreateUser(ctx context.Context, user UserSpec) error

	// DB is a plain database/sql handle, used for searching.
	DB(ctx context.Context) (*sql.DB, error)
	Close() error
}

type CheckMode string

const (
	CHECK_MODE_CHECK    CheckMode = "check"
	CHECK_MODE_OPTIMIZE CheckMode = "optimize"
	CHECK_MODE_REPAIR   CheckMode = "repair"
)

// AssocArgs holds named options given on the command line, keyed without the
// leading dashes. A switch without value maps to "".
type AssocArgs map[string]string

func (a AssocArgs) Has(key string) bool {
	_, ok := a[key]
	return ok
}

func (a AssocArgs) Get(key string) string {
	return a[key]
}

// Keys returns the option names in sorted order.
func (a AssocArgs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Without returns a copy of a lacking the given keys.
func (a AssocArgs) Without(keys ...string) AssocArgs {
	out := make(AssocArgs, len(a))
	for k, v := range a {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

type ExportOptions struct {
	// Tables limits the export to these tables. Empty means all.
	Tables        []string
	ExcludeTables []string
	Args          AssocArgs
}

type ImportOptions struct {
	// File is read from; empty means Stdin.
	File             string
	Stdin            io.Reader
	SkipOptimization bool
	Args             AssocArgs
}

type QueryResult struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	// Modifying is set for INSERT, UPDATE, DELETE and REPLACE statements.
	Modifying bool
}

type TableSize struct {
	Name  string
	Bytes int64
}

type Column struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

type UserSpec struct {
	User     string
	Host     string
	Password string
	Grant    bool
}

type DbCredentials struct {
	Host     string
	Port     int
	Socket   string
	User     string
	Password string
	DbName   string
	Charset  string
	Collate  string
}
