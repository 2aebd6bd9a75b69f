package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/sandstorm/dbkit/pkg/crypt"
	"github.com/spf13/cobra"
)

var exportTables string
var exportExcludeTables string
var exportPorcelain bool
var exportPassphrase string

var ErrPorcelainStdout = errors.New("Porcelain is not allowed when output mode is STDOUT.")

// defaultExportFile is like "wordpress-2024-01-31-1a2b3c4.sql".
func defaultExportFile(dbName string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s.sql", dbName, now.Format("2006-01-02"), uuid.NewString()[:7])
}

// openExportTarget returns the writer a dump goes to: stdout for "-", the
// file otherwise, age encrypted when passphrase is set.
func openExportTarget(stdout io.Writer, file string, passphrase string) (crypt.WriteCloserWithSize, error) {
	if file == "-" {
		if passphrase != "" {
			return crypt.Encrypt(stdout, passphrase)
		}
		return crypt.Plain(stdout), nil
	}
	if passphrase != "" {
		w, err := crypt.EncryptToFile(file, passphrase)
		if err != nil {
			return nil, fmt.Errorf("could not open %s for writing: %w", file, err)
		}
		return w, nil
	}
	f, err := os.Create(file)
	if err != nil {
		return nil, fmt.Errorf("could not open %s for writing: %w", file, err)
	}
	return crypt.Plain(f), nil
}

var exportCmd = &cobra.Command{
	Use:     "export [<file>]",
	Aliases: []string{"dump"},
	Short:   "Exports the database to a file or to STDOUT",
	Long: `Writes an SQL dump of the database. Use "-" as file to write to STDOUT.

With --passphrase the dump is encrypted with age; import it again with the same passphrase.`,
	Example: `dbkit db export
dbkit db export - --tables=wp_posts,wp_postmeta > posts.sql
dbkit db export backup.sql.age --passphrase=secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		positional, assoc, err := commandArgs(cmd, args, 1)
		if err != nil {
			return err
		}
		if len(positional) > 0 && positional[0] == "-" {
			// the dump owns stdout
			pterm.SetDefaultOutput(cmd.ErrOrStderr())
		}
		return withSession(func(s *session) error {
			file := defaultExportFile(s.dbName(), time.Now())
			if len(positional) > 0 && positional[0] != "" {
				file = positional[0]
			}
			stdout := file == "-"
			if stdout && exportPorcelain {
				return ErrPorcelainStdout
			}

			opts := common.ExportOptions{
				Tables:        common.ParseTableList(exportTables),
				ExcludeTables: common.ParseTableList(exportExcludeTables),
				Args:          assoc,
			}

			w, err := openExportTarget(cmd.OutOrStdout(), file, exportPassphrase)
			if err != nil {
				return err
			}
			err = s.backend.Export(cmd.Context(), w, opts)
			if closeErr := w.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				if !stdout {
					_ = os.Remove(file)
				}
				return err
			}

			pterm.Debug.Printfln("Wrote %s", humanize.Bytes(w.Size()))
			if exportPorcelain {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), file)
				return err
			}
			if !stdout {
				pterm.Success.Printfln("Exported to '%s'.", file)
			}
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportTables, "tables", "", "comma separated list of tables to export")
	exportCmd.Flags().StringVar(&exportExcludeTables, "exclude_tables", "", "comma separated list of tables to leave out")
	exportCmd.Flags().BoolVar(&exportPorcelain, "porcelain", false, "output filename for the exported database")
	exportCmd.Flags().StringVar(&exportPassphrase, "passphrase", "", "encrypt the dump with this passphrase")
}
