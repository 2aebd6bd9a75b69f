package sqlite

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	Null Kind = iota
	Number
	Text
)

// Value is a single column value of a dumped row. The kind is decided once
// when the row is read from the database.
type Value struct {
	Kind Kind
	Raw  string
}

// ValueOf classifies a value as returned by the database driver.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: Null}
	case int64:
		return Value{Kind: Number, Raw: strconv.FormatInt(t, 10)}
	case int:
		return Value{Kind: Number, Raw: strconv.Itoa(t)}
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Value{Kind: Text, Raw: strconv.FormatFloat(t, 'g', -1, 64)}
		}
		return Value{Kind: Number, Raw: strconv.FormatFloat(t, 'g', -1, 64)}
	case bool:
		if t {
			return Value{Kind: Number, Raw: "1"}
		}
		return Value{Kind: Number, Raw: "0"}
	case []byte:
		return stringValue(string(t))
	case string:
		return stringValue(t)
	default:
		return Value{Kind: Text, Raw: fmt.Sprint(t)}
	}
}

func stringValue(s string) Value {
	if isNumeric(s) {
		return Value{Kind: Number, Raw: s}
	}
	return Value{Kind: Text, Raw: s}
}

// isNumeric accepts strings which read back as the very same number, so
// "42" and "-1.5" qualify while "007" or " 1" stay text.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(i, 10) == s
	}
	if strings.ContainsAny(s, "xXpP_") {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return strconv.FormatFloat(f, 'f', -1, 64) == s || strconv.FormatFloat(f, 'g', -1, 64) == s
}

// Literal renders the value for an INSERT statement. Text goes through quote
// and newlines are escaped afterwards so every INSERT stays on one line.
func (v Value) Literal(quote func(string) string) string {
	switch v.Kind {
	case Null:
		return "NULL"
	case Number:
		return v.Raw
	default:
		return strings.ReplaceAll(quote(v.Raw), "\n", `\n`)
	}
}

// EncodeRow renders the comma separated value list of an INSERT statement.
func EncodeRow(row []Value, quote func(string) string) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(v.Literal(quote))
	}
	return b.String()
}
