package mysql

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/sandstorm/dbkit/pkg/common"
)

// AllowedMysqlOptions are the options of the mysql client which may be passed
// through to imports.
var AllowedMysqlOptions = []string{
	"auto-rehash", "auto-vertical-output", "batch", "binary-as-hex", "binary-mode",
	"bind-address", "character-sets-dir", "column-names", "column-type-info", "comments",
	"compress", "connect-expired-password", "connect_timeout", "database", "debug",
	"debug-check", "debug-info", "default-auth", "default-character-set", "defaults-extra-file",
	"defaults-file", "defaults-group-suffix", "delimiter", "enable-cleartext-plugin", "execute",
	"force", "get-server-public-key", "help", "histignore", "host",
	"html", "ignore-spaces", "init-command", "line-numbers", "local-infile",
	"login-path", "max_allowed_packet", "max_join_size", "named-commands", "net_buffer_length",
	"no-beep", "one-database", "pager", "pipe", "plugin-dir",
	"port", "print-defaults", "protocol", "quick", "raw",
	"reconnect", "i-am-a-dummy", "safe-updates", "secure-auth", "select_limit",
	"server-public-key-path", "shared-memory-base-name", "show-warnings", "sigint-ignore", "silent",
	"skip-auto-rehash", "skip-column-names", "skip-line-numbers", "skip-named-commands", "skip-pager",
	"skip-reconnect", "socket", "ssl-ca", "ssl-capath", "ssl-cert",
	"ssl-cipher", "ssl-crl", "ssl-crlpath", "ssl-fips-mode", "ssl-key",
	"ssl-mode", "syslog", "table", "tee", "tls-version",
	"unbuffered", "verbose", "version", "vertical", "wait",
	"xml",
}

// options handled by dbkit itself, never handed to a client binary
var ownOptions = []string{"dbuser", "dbpass", "pass", "password", "porcelain", "tables", "exclude_tables", "skip-optimization", "defaults"}

// FilterMysqlArgs keeps the allowed mysql client options which carry a value.
func FilterMysqlArgs(args common.AssocArgs) common.AssocArgs {
	out := common.AssocArgs{}
	for k, v := range args {
		if slices.Contains(AllowedMysqlOptions, k) && v != "" {
			out[k] = v
		}
	}
	return out
}

// ParseHost splits a DB_HOST value like "db:3307", "localhost:/run/mysqld.sock"
// or "[::1]:3306" into host, port and socket.
func ParseHost(dbHost string) (host string, port int, socket string) {
	dbHost = strings.TrimSpace(dbHost)
	if dbHost == "" {
		return "", 0, ""
	}

	if h, p, err := net.SplitHostPort(dbHost); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			return h, n, ""
		}
	}

	if strings.HasPrefix(dbHost, "[") {
		return strings.Trim(dbHost, "[]"), 0, ""
	}

	i := strings.Index(dbHost, ":")
	if i < 0 {
		return dbHost, 0, ""
	}
	rest := dbHost[i+1:]
	host = dbHost[:i]
	// "host:port:/socket" is accepted as well
	if j := strings.Index(rest, ":"); j >= 0 {
		if n, err := strconv.Atoi(rest[:j]); err == nil {
			port = n
		}
		return host, port, rest[j+1:]
	}
	if n, err := strconv.Atoi(rest); err == nil {
		return host, n, ""
	}
	return host, 0, rest
}

// connectionArgs merges credentials into args the way the mysql client
// binaries expect them. The password is returned separately, it is handed over
// through MYSQL_PWD so it never shows up in the process list.
func connectionArgs(creds common.DbCredentials, args common.AssocArgs) (common.AssocArgs, string) {
	final := args.Without(ownOptions...)

	if creds.Host != "" {
		final["host"] = creds.Host
	}
	if creds.Port != 0 {
		final["port"] = strconv.Itoa(creds.Port)
	}
	if creds.Socket != "" {
		final["socket"] = creds.Socket
	}
	if creds.User != "" {
		final["user"] = creds.User
	}
	if !final.Has("default-character-set") && creds.Charset != "" {
		final["default-character-set"] = creds.Charset
	}

	return final, creds.Password
}

// baseArgs starts a client invocation. --no-defaults keeps option files from
// overriding the configured credentials unless --defaults was asked for.
func baseArgs(args common.AssocArgs, extra ...string) []string {
	var out []string
	if !args.Has("defaults") {
		out = append(out, "--no-defaults")
	}
	return append(out, extra...)
}

// formatArgs renders options sorted by name, "--key=value" or "--key" for
// switches.
func formatArgs(args common.AssocArgs) []string {
	out := make([]string, 0, len(args))
	for _, k := range args.Keys() {
		if v := args[k]; v != "" {
			out = append(out, fmt.Sprintf("--%s=%s", k, v))
		} else {
			out = append(out, "--"+k)
		}
	}
	return out
}
