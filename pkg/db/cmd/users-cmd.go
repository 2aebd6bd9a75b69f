package cmd

import (
	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/spf13/cobra"
)

var userPassword string
var userGrantPrivileges bool

var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manages database users",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <user> [<host>]",
	Short: "Creates a new database user with optional privileges",
	Long:  `Creates a MySQL user. The host defaults to localhost. Not available for SQLite.`,
	Example: `dbkit db users create editor
dbkit db users create editor % --password=secret --grant-privileges`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user := common.UserSpec{
			User:     args[0],
			Host:     "localhost",
			Password: userPassword,
			Grant:    userGrantPrivileges,
		}
		if len(args) > 1 {
			user.Host = args[1]
		}

		return withSession(func(s *session) error {
			if err := s.backend.CreateUser(cmd.Context(), user); err != nil {
				return err
			}
			if user.Grant {
				pterm.Success.Printfln("Database user '%s'@'%s' created with privileges on database '%s'.", user.User, user.Host, s.dbName())
			} else {
				pterm.Success.Printfln("Database user '%s'@'%s' created.", user.User, user.Host)
			}
			return nil
		})
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "password for the new user")
	usersCreateCmd.Flags().BoolVar(&userGrantPrivileges, "grant-privileges", false, "grant all privileges on the current database to the new user")
	UsersCmd.AddCommand(usersCreateCmd)
}
