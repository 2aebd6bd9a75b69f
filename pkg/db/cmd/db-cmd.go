package cmd

import (
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/backend"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/sandstorm/dbkit/pkg/common/config"
	"github.com/sandstorm/dbkit/pkg/sqlite"
	"github.com/sandstorm/dbkit/pkg/ui/confirm"
	"github.com/sandstorm/dbkit/pkg/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var installPath string
var assumeYes bool
var dbUser string
var dbPass string
var useDefaults bool

// Runner starts the mysql client binaries.
var Runner util.Runner = util.ExecRunner{}

var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Perform basic database operations",
	Long: `Performs basic database operations using credentials stored in wp-config.php.

The engine is detected automatically: installations using the SQLite database
integration are handled in process, everything else through the mysql client
binaries. Options for the client binaries can be given after "--".`,
	Example: `dbkit db create
dbkit db export backup.sql --exclude_tables=wp_users
dbkit db query "SELECT * FROM wp_options" -- --skip-column-names
dbkit db search example.com wp_posts --stats`,
}

// session holds what a single database command works with.
type session struct {
	cfg        *config.Config
	resolution backend.Resolution
	backend    common.DatabaseBackend
}

func newSession() (*session, error) {
	cfg, err := config.Load(installPath, viper.GetViper())
	if err != nil {
		return nil, err
	}
	if dbUser != "" {
		cfg.Set("DB_USER", dbUser)
	}
	if dbPass != "" {
		cfg.Set("DB_PASSWORD", dbPass)
	}

	resolution := backend.Resolve(cfg)
	pterm.Debug.Printfln("Using %s database of %s", resolution.Engine, cfg.Root)
	return &session{
		cfg:        cfg,
		resolution: resolution,
		backend:    backend.New(resolution, cfg, Runner),
	}, nil
}

func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		pterm.Debug.Printfln("Error closing database: %s", err)
	}
}

// dbName is DB_NAME, or the database file name for SQLite installations
// which do not define it.
func (s *session) dbName() string {
	if name := s.cfg.Constant("DB_NAME"); name != "" {
		return name
	}
	if b, ok := s.backend.(*sqlite.Backend); ok {
		return filepath.Base(b.Path())
	}
	return ""
}

// withSession runs fn with a fresh session which is closed afterwards.
func withSession(fn func(s *session) error) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// confirmed asks question unless --yes was given.
func confirmed(question string) (bool, error) {
	ok, err := confirm.Exec(question, assumeYes)
	if err != nil {
		return false, err
	}
	if !ok {
		pterm.Debug.Println("Aborted by user")
	}
	return ok, nil
}

func init() {
	DbCmd.PersistentFlags().StringVar(&installPath, "path", ".", "path to the installation containing wp-config.php")
	DbCmd.PersistentFlags().BoolVar(&assumeYes, "yes", false, "answer yes to the confirmation message")
	DbCmd.PersistentFlags().StringVar(&dbUser, "dbuser", "", "username to pass to mysql, defaults to DB_USER")
	DbCmd.PersistentFlags().StringVar(&dbPass, "dbpass", "", "password to pass to mysql, defaults to DB_PASSWORD")
	DbCmd.PersistentFlags().BoolVar(&useDefaults, "defaults", false, "load the environment's MySQL option files (default behavior is to skip loading them)")

	DbCmd.AddCommand(createCmd, dropCmd, resetCmd, cleanCmd)
	DbCmd.AddCommand(checkCmd, optimizeCmd, repairCmd)
	DbCmd.AddCommand(cliCmd, queryCmd)
	DbCmd.AddCommand(exportCmd, importCmd)
	DbCmd.AddCommand(tablesCmd, sizeCmd, prefixCmd, columnsCmd)
	DbCmd.AddCommand(searchCmd)
	DbCmd.AddCommand(UsersCmd)
}
