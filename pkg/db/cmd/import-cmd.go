package cmd

import (
	"io"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/sandstorm/dbkit/pkg/crypt"
	"github.com/spf13/cobra"
)

var importSkipOptimization bool
var importPassphrase string

var importCmd = &cobra.Command{
	Use:   "import [<file>]",
	Short: "Imports a database from a file or from STDIN",
	Long: `Runs the SQL statements of a dump against the database. Defaults to <DB_NAME>.sql,
use "-" to read from STDIN.`,
	Example: `dbkit db import wordpress.sql
cat dump.sql | dbkit db import -
dbkit db import backup.sql.age --passphrase=secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		positional, assoc, err := commandArgs(cmd, args, 1)
		if err != nil {
			return err
		}
		return withSession(func(s *session) error {
			file := s.dbName() + ".sql"
			if len(positional) > 0 && positional[0] != "" {
				file = positional[0]
			}

			opts := common.ImportOptions{
				SkipOptimization: importSkipOptimization,
				Args:             assoc,
			}
			label := file
			if file == "-" {
				label = "STDIN"
				var stdin io.Reader = cmd.InOrStdin()
				if importPassphrase != "" {
					if stdin, err = crypt.Decrypt(stdin, importPassphrase); err != nil {
						return err
					}
				}
				opts.Stdin = stdin
			} else if importPassphrase != "" {
				plain, cleanup, err := crypt.DecryptToTempFile(file, importPassphrase)
				defer cleanup()
				if err != nil {
					return err
				}
				opts.File = plain
			} else {
				opts.File = file
			}

			if err := s.backend.Import(cmd.Context(), opts); err != nil {
				return err
			}
			pterm.Success.Printfln("Imported from '%s'.", label)
			return nil
		})
	},
}

func init() {
	importCmd.Flags().BoolVar(&importSkipOptimization, "skip-optimization", false, "when using an SQL file, do not include speed optimization such as disabling auto-commit and key checks")
	importCmd.Flags().StringVar(&importPassphrase, "passphrase", "", "decrypt the dump with this passphrase")
}
