package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/sandstorm/dbkit/pkg/common/dto"
	"github.com/sandstorm/dbkit/pkg/output"
	"github.com/spf13/cobra"
)

// tableSelectionFlags are shared by the commands working on a set of tables.
type tableSelectionFlags struct {
	scope               string
	allTables           bool
	allTablesWithPrefix bool
}

func (f *tableSelectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scope, "scope", common.SCOPE_ALL, "can be all, global, ms_global, blog, or old tables")
	cmd.Flags().BoolVar(&f.allTablesWithPrefix, "all-tables-with-prefix", false, "list all tables that match the table prefix even if not registered as core tables")
	cmd.Flags().BoolVar(&f.allTables, "all-tables", false, "list all tables in the database, regardless of the prefix")
}

func (f *tableSelectionFlags) selection(s *session, names []string) common.TableSelection {
	return common.TableSelection{
		Names:               names,
		AllTables:           f.allTables,
		AllTablesWithPrefix: f.allTablesWithPrefix,
		Scope:               f.scope,
		Prefix:              s.cfg.TablePrefix,
	}
}

func (f *tableSelectionFlags) tables(cmd *cobra.Command, s *session, names []string) ([]string, error) {
	existing, err := s.backend.Tables(cmd.Context())
	if err != nil {
		return nil, err
	}
	return common.SelectTables(existing, f.selection(s, names))
}

var tablesFlags tableSelectionFlags
var tablesFormat string

var tablesCmd = &cobra.Command{
	Use:   "tables [<table>...]",
	Short: "Lists the database tables",
	Long:  `Lists the core tables of the installation. Table names may contain the wildcards * and ?.`,
	Example: `dbkit db tables
dbkit db tables 'wp_post*' --format=csv
dbkit db tables --all-tables`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			tables, err := tablesFlags.tables(cmd, s, args)
			if err != nil {
				return err
			}
			if tablesFormat == output.FORMAT_CSV {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tables, ","))
				return err
			}
			for _, table := range tables {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), table); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var sizeFlags tableSelectionFlags
var sizeFormat string
var sizeUnit string
var sizeTables bool
var sizeHumanReadable bool

var ErrSizeFormatConflict = errors.New("Cannot use --size_format and --human-readable arguments at the same time.")

var sizeCmd = &cobra.Command{
	Use:   "size [<table>...]",
	Short: "Displays the database name and size",
	Long: `Displays the size of the database, or of each table with --tables.

Sizes are shown in bytes unless --size_format or --human-readable is given.
--size_format alone prints the bare number.`,
	Example: `dbkit db size
dbkit db size --tables --size_format=MiB
dbkit db size --human-readable`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sizeUnit != "" && sizeHumanReadable {
			return ErrSizeFormatConflict
		}
		return withSession(func(s *session) error {
			ctx := cmd.Context()
			var rows [][]any

			if sizeTables || sizeFlags.allTables || sizeFlags.allTablesWithPrefix || len(args) > 0 {
				tables, err := sizeFlags.tables(cmd, s, args)
				if err != nil {
					return err
				}
				sizes, err := s.backend.TableSizes(ctx, tables)
				if err != nil {
					return err
				}
				for _, size := range sizes {
					rows = append(rows, []any{size.Name, dto.FormatSize(size.Bytes, sizeUnit, sizeHumanReadable)})
				}
			} else {
				bytes, err := s.backend.Size(ctx)
				if err != nil {
					return err
				}
				rows = append(rows, []any{s.dbName(), dto.FormatSize(bytes, sizeUnit, sizeHumanReadable)})
			}

			if sizeUnit != "" && sizeFormat == "" && len(rows) == 1 && !sizeTables && !sizeFlags.allTables && !sizeFlags.allTablesWithPrefix {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), dto.SizeNumber(rows[0][1].(string)))
				return err
			}
			return output.Render(cmd.OutOrStdout(), sizeFormat, []string{"Name", "Size"}, rows)
		})
	},
}

var prefixCmd = &cobra.Command{
	Use:     "prefix",
	Short:   "Displays the database table prefix",
	Example: `dbkit db prefix`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), s.cfg.TablePrefix)
			return err
		})
	},
}

var columnsFormat string

var columnsCmd = &cobra.Command{
	Use:     "columns <table>",
	Short:   "Displays information about a given table",
	Example: `dbkit db columns wp_posts --format=json`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			existing, err := s.backend.Tables(cmd.Context())
			if err != nil {
				return err
			}
			tables, err := common.SelectTables(existing, common.TableSelection{Names: args[:1], AllTables: true})
			if err != nil {
				return err
			}
			columns, err := s.backend.Columns(cmd.Context(), tables[0])
			if err != nil {
				return err
			}

			rows := make([][]any, 0, len(columns))
			for _, c := range columns {
				rows = append(rows, []any{c.Field, c.Type, c.Null, c.Key, c.Default, c.Extra})
			}
			return output.Render(cmd.OutOrStdout(), columnsFormat, []string{"Field", "Type", "Null", "Key", "Default", "Extra"}, rows)
		})
	},
}

func init() {
	tablesFlags.register(tablesCmd)
	tablesCmd.Flags().StringVar(&tablesFormat, "format", output.FORMAT_LIST, "list or csv")

	sizeFlags.register(sizeCmd)
	sizeCmd.Flags().StringVar(&sizeUnit, "size_format", "", "display the size in a given unit: "+strings.Join(dto.SizeFormats, ", "))
	sizeCmd.Flags().BoolVar(&sizeTables, "tables", false, "display each table name and size instead of the database size")
	sizeCmd.Flags().BoolVar(&sizeHumanReadable, "human-readable", false, "display the size in a human readable format")
	sizeCmd.Flags().StringVar(&sizeFormat, "format", "", "table, csv, json or yaml")

	columnsCmd.Flags().StringVar(&columnsFormat, "format", output.FORMAT_TABLE, "table, csv, json or yaml")
}
