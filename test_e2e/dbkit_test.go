package test_e2e

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"

	"github.com/orlangure/gnomock"
	"github.com/orlangure/gnomock/preset/mariadb"
	"github.com/rogpeppe/go-internal/testscript"
	"github.com/sandstorm/dbkit/cmd"
)

// setting to TRUE greatly speeds up tests
const reuseDatabaseContainer = true

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"dbkit": func() int {
			cmd.Execute(context.Background())
			return 0
		},
	}))
}

func TestSqlite(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/sqlite",
	})
}

const queries = `
	drop table if exists wp_posts;
	create table wp_posts(ID bigint unsigned not null auto_increment primary key, post_title text not null);
	insert into wp_posts (post_title) values ('Hello world');
	insert into wp_posts (post_title) values ('Second post');
`

func startDb(t *testing.T) (string, int) {
	t.Helper()
	p := mariadb.Preset(
		mariadb.WithUser("admin", "password"),
		mariadb.WithDatabase("wordpress"),
		mariadb.WithQueries(queries),
	)
	var container *gnomock.Container
	var err error
	if reuseDatabaseContainer {
		container, err = gnomock.Start(p, gnomock.WithContainerReuse(), gnomock.WithContainerName("dbkit-test-mariadb"))
	} else {
		container, err = gnomock.Start(p)
		t.Cleanup(func() {
			_ = gnomock.Stop(container)
		})
	}
	if err != nil {
		t.Fatalf("could not start mariadb: %s", err)
	}
	return container.Host, container.DefaultPort()
}

// TestMariaDB needs docker; set DBKIT_E2E_MARIADB=1 to run it.
func TestMariaDB(t *testing.T) {
	if os.Getenv("DBKIT_E2E_MARIADB") == "" {
		t.Skip("DBKIT_E2E_MARIADB not set")
	}
	dbHost, dbPort := startDb(t)
	testscript.Run(t, testscript.Params{
		Dir: "testdata/mariadb",
		Setup: func(env *testscript.Env) error {
			env.Setenv("DB_USER", "admin")
			env.Setenv("DB_PASSWORD", "password")
			env.Setenv("DB_NAME", "wordpress")
			env.Setenv("DB_HOST", net.JoinHostPort(dbHost, strconv.Itoa(dbPort)))
			return nil
		},
	})
}
