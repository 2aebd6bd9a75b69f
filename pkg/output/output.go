package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

const (
	FORMAT_TABLE = "table"
	FORMAT_CSV   = "csv"
	FORMAT_JSON  = "json"
	FORMAT_YAML  = "yaml"
	FORMAT_LIST  = "list"
)

var Formats = []string{FORMAT_TABLE, FORMAT_CSV, FORMAT_JSON, FORMAT_YAML, FORMAT_LIST}

// Render writes rows in the given format. The list format prints the first
// column only, one value per line.
func Render(w io.Writer, format string, columns []string, rows [][]any) error {
	switch format {
	case FORMAT_TABLE, "":
		return renderTable(w, columns, rows)
	case FORMAT_CSV:
		return renderCsv(w, columns, rows)
	case FORMAT_JSON:
		b, err := json.Marshal(records(columns, rows))
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case FORMAT_YAML:
		b, err := yaml.Marshal(records(columns, rows))
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	case FORMAT_LIST:
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			if _, err := fmt.Fprintln(w, Stringify(row[0])); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid format %q, expected one of: %s", format, strings.Join(Formats, ", "))
	}
}

// Stringify renders a database value for display. NULL becomes "NULL".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case *string:
		if t == nil {
			return "NULL"
		}
		return *t
	default:
		return fmt.Sprint(t)
	}
}

func renderTable(w io.Writer, columns []string, rows [][]any) error {
	data := pterm.TableData{columns}
	for _, row := range rows {
		line := make([]string, len(row))
		for i, v := range row {
			line[i] = Stringify(v)
		}
		data = append(data, line)
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

func renderCsv(w io.Writer, columns []string, rows [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		line := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				continue
			}
			line[i] = Stringify(v)
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func records(columns []string, rows [][]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]any, len(columns))
		for i, c := range columns {
			v := row[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if p, ok := v.(*string); ok {
				if p == nil {
					v = nil
				} else {
					v = *p
				}
			}
			m[c] = v
		}
		out = append(out, m)
	}
	return out
}
