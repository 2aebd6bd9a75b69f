package cmd

import (
	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/spf13/cobra"
)

// newCheckCmd builds the check, optimize and repair commands which only
// differ in the mysqlcheck mode.
func newCheckCmd(mode common.CheckMode, short string, success string) *cobra.Command {
	return &cobra.Command{
		Use:     string(mode),
		Short:   short,
		Example: "dbkit db " + string(mode),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, assoc, err := commandArgs(cmd, args, 0)
			if err != nil {
				return err
			}
			return withSession(func(s *session) error {
				if err := s.backend.Check(cmd.Context(), mode, assoc); err != nil {
					return err
				}
				pterm.Success.Println(success)
				return nil
			})
		},
	}
}

var checkCmd = newCheckCmd(common.CHECK_MODE_CHECK, "Checks the current status of the database", "Database checked.")

var optimizeCmd = newCheckCmd(common.CHECK_MODE_OPTIMIZE, "Optimizes the database", "Database optimized.")

var repairCmd = newCheckCmd(common.CHECK_MODE_REPAIR, "Repairs the database", "Database repaired.")
