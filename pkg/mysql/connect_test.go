package mysql

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/sandstorm/dbkit/pkg/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	t.Run("defaults to localhost", func(t *testing.T) {
		parsed, err := mysql.ParseDSN(DSN(common.DbCredentials{User: "wp", Password: "pw", DbName: "wordpress"}))
		require.NoError(t, err)
		assert.Equal(t, "tcp", parsed.Net)
		assert.Equal(t, "localhost:3306", parsed.Addr)
		assert.Equal(t, "wp", parsed.User)
		assert.Equal(t, "pw", parsed.Passwd)
		assert.Equal(t, "wordpress", parsed.DBName)
	})

	t.Run("ipv6 host with port", func(t *testing.T) {
		parsed, err := mysql.ParseDSN(DSN(common.DbCredentials{Host: "::1", Port: 3307, DbName: "wp"}))
		require.NoError(t, err)
		assert.Equal(t, "[::1]:3307", parsed.Addr)
	})

	t.Run("socket and charset", func(t *testing.T) {
		parsed, err := mysql.ParseDSN(DSN(common.DbCredentials{Socket: "/tmp/mysql.sock", DbName: "wp", Charset: "utf8mb4"}))
		require.NoError(t, err)
		assert.Equal(t, "unix", parsed.Net)
		assert.Equal(t, "/tmp/mysql.sock", parsed.Addr)
		assert.Equal(t, "utf8mb4", parsed.Params["charset"])
	})
}

func TestCredentialsFromConfig(t *testing.T) {
	cfg := config.New(t.TempDir())
	cfg.Set("DB_HOST", "db:3307")
	cfg.Set("DB_USER", "wp")
	cfg.Set("DB_PASSWORD", "pw")
	cfg.Set("DB_NAME", "wordpress")
	cfg.Set("DB_CHARSET", "utf8mb4")

	assert.Equal(t, common.DbCredentials{
		Host:     "db",
		Port:     3307,
		User:     "wp",
		Password: "pw",
		DbName:   "wordpress",
		Charset:  "utf8mb4",
	}, CredentialsFromConfig(cfg))
}
