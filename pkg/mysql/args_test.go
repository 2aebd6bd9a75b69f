package mysql

import (
	"testing"

	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/stretchr/testify/assert"
)

func TestParseHost(t *testing.T) {
	cases := []struct {
		in     string
		host   string
		port   int
		socket string
	}{
		{"", "", 0, ""},
		{"localhost", "localhost", 0, ""},
		{"db:3307", "db", 3307, ""},
		{"localhost:/run/mysqld/mysqld.sock", "localhost", 0, "/run/mysqld/mysqld.sock"},
		{"db:3307:/tmp/mysql.sock", "db", 3307, "/tmp/mysql.sock"},
		{"[::1]:3306", "::1", 3306, ""},
		{"[::1]", "::1", 0, ""},
		{" 127.0.0.1 ", "127.0.0.1", 0, ""},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			host, port, socket := ParseHost(c.in)
			assert.Equal(t, c.host, host)
			assert.Equal(t, c.port, port)
			assert.Equal(t, c.socket, socket)
		})
	}
}

func TestFilterMysqlArgs(t *testing.T) {
	filtered := FilterMysqlArgs(common.AssocArgs{
		"force":                 "1",
		"default-character-set": "utf8mb4",
		"porcelain":             "",
		"unknown":               "x",
		"verbose":               "",
	})
	assert.Equal(t, common.AssocArgs{"force": "1", "default-character-set": "utf8mb4"}, filtered)
}

func TestConnectionArgs(t *testing.T) {
	creds := common.DbCredentials{
		Host:     "db",
		Port:     3307,
		User:     "wp",
		Password: "s3cret",
		Charset:  "utf8mb4",
	}
	final, password := connectionArgs(creds, common.AssocArgs{"dbuser": "x", "porcelain": "", "force": ""})

	assert.Equal(t, "s3cret", password)
	assert.Equal(t, common.AssocArgs{
		"host":                  "db",
		"port":                  "3307",
		"user":                  "wp",
		"default-character-set": "utf8mb4",
		"force":                 "",
	}, final)

	final, _ = connectionArgs(creds, common.AssocArgs{"default-character-set": "latin1"})
	assert.Equal(t, "latin1", final["default-character-set"])
}

func TestBaseAndFormatArgs(t *testing.T) {
	assert.Equal(t, []string{"--no-defaults", "--no-auto-rehash"}, baseArgs(common.AssocArgs{}, "--no-auto-rehash"))
	assert.Equal(t, []string{"--check"}, baseArgs(common.AssocArgs{"defaults": ""}, "--check"))

	assert.Equal(t,
		[]string{"--execute=SELECT 1", "--force", "--host=db"},
		formatArgs(common.AssocArgs{"host": "db", "force": "", "execute": "SELECT 1"}),
	)
}
