package cmd

import (
	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/search"
	"github.com/spf13/cobra"
)

var searchFlags tableSelectionFlags
var searchOpts search.Options
var tableColumnColor string
var idColor string
var matchColor string

var searchCmd = &cobra.Command{
	Use:   "search <search> [<tables>...]",
	Short: "Finds a string in the database",
	Long: `Searches the text columns of the given tables (default: all core tables) for a string and prints
every match with its context, prefixed by the primary key of the row.

Colors are given as tokens like %G (bold green) or %3%k (black on yellow), and are turned off by --raw.`,
	Example: `dbkit db search example.com
dbkit db search 'https?://' --regex --all-tables --one_line
dbkit db search cookie wp_options --stats`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := searchOpts
		opts.Needle = args[0]
		opts.Colors = search.NewColors(!pterm.RawOutput, tableColumnColor, idColor, matchColor, opts.BeforeContext > 0 || opts.AfterContext > 0)

		return withSession(func(s *session) error {
			tables, err := searchFlags.tables(cmd, s, args[1:])
			if err != nil {
				return err
			}
			searcher, err := search.New(s.backend, cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}
			stats, err := searcher.Run(cmd.Context(), tables)
			if err != nil {
				return err
			}
			if opts.Stats {
				pterm.Success.Println(stats.String())
			}
			return nil
		})
	},
}

func init() {
	searchFlags.register(searchCmd)
	f := searchCmd.Flags()
	f.IntVar(&searchOpts.BeforeContext, "before_context", search.DEFAULT_CONTEXT, "number of characters to display before the match")
	f.IntVar(&searchOpts.AfterContext, "after_context", search.DEFAULT_CONTEXT, "number of characters to display after the match")
	f.BoolVar(&searchOpts.Regex, "regex", false, "runs the search as a regular expression")
	f.StringVar(&searchOpts.RegexFlags, "regex-flags", "", "pass regex flags to the search: i, m, s, U")
	f.BoolVar(&searchOpts.TableColumnOnce, "table_column_once", false, "output the 'table:column' line once before all matching row lines in the table column")
	f.BoolVar(&searchOpts.OneLine, "one_line", false, "place the 'table:column' output on the same line as the row id and match")
	f.BoolVar(&searchOpts.MatchesOnly, "matches_only", false, "only output the string matches (including context), no 'table:column's or row ids")
	f.BoolVar(&searchOpts.Stats, "stats", false, "output stats on the number of matches found, time taken, tables/columns/rows searched, tables skipped")
	f.StringVar(&tableColumnColor, "table_column_color", "", "color for the 'table:column' output")
	f.StringVar(&idColor, "id_color", "", "color for the row id output")
	f.StringVar(&matchColor, "match_color", "", "color for the match")
}
