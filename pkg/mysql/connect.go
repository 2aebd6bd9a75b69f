package mysql

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/sandstorm/dbkit/pkg/common/config"
)

const defaultPort = 3306

// CredentialsFromConfig collects the connection settings of an installation.
func CredentialsFromConfig(cfg *config.Config) common.DbCredentials {
	host, port, socket := ParseHost(cfg.Constant("DB_HOST"))
	return common.DbCredentials{
		Host:     host,
		Port:     port,
		Socket:   socket,
		User:     cfg.Constant("DB_USER"),
		Password: cfg.Constant("DB_PASSWORD"),
		DbName:   cfg.Constant("DB_NAME"),
		Charset:  cfg.Constant("DB_CHARSET"),
		Collate:  cfg.Constant("DB_COLLATE"),
	}
}

// DSN builds the go-sql-driver connection string for creds.
func DSN(creds common.DbCredentials) string {
	config := mysql.NewConfig()
	config.User = creds.User
	config.Passwd = creds.Password
	config.DBName = creds.DbName
	if creds.Socket != "" {
		config.Net = "unix"
		config.Addr = creds.Socket
	} else {
		host := creds.Host
		if host == "" {
			host = "localhost"
		}
		port := creds.Port
		if port == 0 {
			port = defaultPort
		}
		config.Net = "tcp"
		config.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
	if creds.Charset != "" {
		config.Params = map[string]string{"charset": creds.Charset}
	}
	return config.FormatDSN()
}

func openDB(creds common.DbCredentials) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(creds))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return db, nil
}
