package cmd

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/output"
	"github.com/spf13/cobra"
)

var cliCmd = &cobra.Command{
	Use:     "cli",
	Aliases: []string{"connect"},
	Short:   "Opens a MySQL console using credentials from wp-config.php",
	Example: `dbkit db cli -- --database=other`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, assoc, err := commandArgs(cmd, args, 0)
		if err != nil {
			return err
		}
		return withSession(func(s *session) error {
			return s.backend.Cli(cmd.Context(), assoc)
		})
	},
}

var queryCmd = &cobra.Command{
	Use:   "query [<sql>]",
	Short: "Executes a SQL query against the database",
	Long:  `Executes an arbitrary SQL query. Without a query argument it is read from STDIN.`,
	Example: `dbkit db query "SELECT * FROM wp_options WHERE option_name = 'home'"
echo "SHOW TABLES" | dbkit db query`,
	RunE: func(cmd *cobra.Command, args []string) error {
		positional, assoc, err := commandArgs(cmd, args, 1)
		if err != nil {
			return err
		}
		return withSession(func(s *session) error {
			statement := ""
			if len(positional) > 0 {
				statement = positional[0]
			} else if s.resolution.IsEmbedded() {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read query from STDIN: %w", err)
				}
				statement = string(b)
			}

			result, err := s.backend.Query(cmd.Context(), statement, assoc)
			if err != nil {
				return err
			}
			switch {
			case result == nil:
				// printed by the mysql client
				return nil
			case result.Modifying:
				pterm.Success.Printfln("Query succeeded. Rows affected: %d", result.RowsAffected)
				return nil
			case len(result.Rows) == 0:
				return nil
			}
			return output.Render(cmd.OutOrStdout(), output.FORMAT_TABLE, result.Columns, result.Rows)
		})
	},
}
