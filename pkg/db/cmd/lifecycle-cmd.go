package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create",
	Short:   "Creates a new database",
	Long:    `Runs CREATE DATABASE with the name, charset and collation of the configuration. For SQLite the database file is created.`,
	Example: `dbkit db create`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if err := s.backend.Create(cmd.Context()); err != nil {
				return err
			}
			pterm.Success.Println("Database created.")
			return nil
		})
	},
}

var dropCmd = &cobra.Command{
	Use:     "drop",
	Short:   "Deletes the existing database",
	Example: `dbkit db drop --yes`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			ok, err := confirmed(fmt.Sprintf("Are you sure you want to drop the '%s' database?", s.dbName()))
			if err != nil || !ok {
				return err
			}
			if err := s.backend.Drop(cmd.Context()); err != nil {
				return err
			}
			pterm.Success.Println("Database dropped.")
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Removes all tables from the database",
	Long:    `Drops the database and creates it again.`,
	Example: `dbkit db reset --yes`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			ok, err := confirmed(fmt.Sprintf("Are you sure you want to reset the '%s' database?", s.dbName()))
			if err != nil || !ok {
				return err
			}
			if err := s.backend.Reset(cmd.Context()); err != nil {
				return err
			}
			pterm.Success.Println("Database reset.")
			return nil
		})
	},
}

var cleanCmd = &cobra.Command{
	Use:     "clean",
	Short:   "Removes all tables with the table prefix from the database",
	Example: `dbkit db clean --yes`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			question := fmt.Sprintf("Are you sure you want to drop all the tables on '%s' that use the current site's database prefix ('%s')?", s.dbName(), s.cfg.TablePrefix)
			ok, err := confirmed(question)
			if err != nil || !ok {
				return err
			}

			existing, err := s.backend.Tables(cmd.Context())
			if err != nil {
				return err
			}
			tables, err := common.SelectTables(existing, common.TableSelection{
				AllTablesWithPrefix: true,
				Prefix:              s.cfg.TablePrefix,
			})
			if err != nil {
				return err
			}
			if err := s.backend.DropTables(cmd.Context(), tables); err != nil {
				return err
			}
			pterm.Success.Println("Tables dropped.")
			return nil
		})
	},
}
