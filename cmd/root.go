package cmd

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/cli/util"
	dbcmd "github.com/sandstorm/dbkit/pkg/db/cmd"
	"github.com/spf13/cobra"
)

// !! NOTE: we are not allowed to move this file, as this is needed by the build system at https://github.com/pterm/tag-action/blob/main/entrypoint.sh

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dbkit",
	Short: "Database administration for WordPress installations on MySQL, MariaDB and SQLite",
	Long: `dbkit reads the database credentials of an installation from its wp-config.php and performs
administrative tasks on the database: creating and dropping it, importing and exporting dumps,
inspecting tables and searching their contents.

Configuration constants can be overridden by a .dbkit.yml next to wp-config.php, by ~/.dbkit.yaml
or by environment variables like DB_HOST.`,
	Example: `dbkit db export
dbkit db import backup.sql --path=/var/www/html
dbkit db size --human-readable`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			pterm.Warning.Println("user interrupt")
		}
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(util.InitConfig(&cfgFile))

	rootCmd.AddCommand(dbcmd.DbCmd)

	// Adds global flags for PTerm settings.
	rootCmd.PersistentFlags().BoolVarP(&pterm.PrintDebugMessages, "debug", "", false, "enable debug messages")
	rootCmd.PersistentFlags().BoolVarP(&pterm.RawOutput, "raw", "", false, "print unstyled raw output (set it if output is written to a file)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dbkit.yaml)")

	// Change global PTerm theme
	pterm.ThemeDefault.SectionStyle = *pterm.NewStyle(pterm.FgCyan)
}
