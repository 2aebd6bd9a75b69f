package mysql

import (
	"strings"
)

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteString renders str as a single quoted MySQL string literal.
// Taken from https://gist.github.com/siddontang/8875771
func QuoteString(str string) string {
	var b strings.Builder
	b.Grow(len(str) + 2)
	b.WriteByte('\'')

	var escape byte
	for i := 0; i < len(str); i++ {
		c := str[i]

		escape = 0

		switch c {
		case 0: /* Must be escaped for 'mysql' */
			escape = '0'
		case '\n': /* Must be escaped for logs */
			escape = 'n'
		case '\r':
			escape = 'r'
		case '\\':
			escape = '\\'
		case '\'':
			escape = '\''
		case '"': /* Better safe than sorry */
			escape = '"'
		case '\032': /* This gives problems on Win32 */
			escape = 'Z'
		}

		if escape != 0 {
			b.WriteByte('\\')
			b.WriteByte(escape)
		} else {
			b.WriteByte(c)
		}
	}

	b.WriteByte('\'')
	return b.String()
}
