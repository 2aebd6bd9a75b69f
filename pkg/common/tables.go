package common

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/repeale/fp-go"
)

const (
	SCOPE_ALL       = "all"
	SCOPE_BLOG      = "blog"
	SCOPE_GLOBAL    = "global"
	SCOPE_MS_GLOBAL = "ms_global"
	SCOPE_OLD       = "old"
)

var scopeTables = map[string][]string{
	SCOPE_BLOG:      {"posts", "comments", "links", "options", "postmeta", "terms", "term_taxonomy", "term_relationships", "termmeta", "commentmeta"},
	SCOPE_GLOBAL:    {"users", "usermeta"},
	SCOPE_MS_GLOBAL: {"blogs", "blogmeta", "signups", "site", "sitemeta", "registration_log"},
	SCOPE_OLD:       {"categories", "post2cat", "link2cat"},
}

// TableSelection describes which tables a command works on.
type TableSelection struct {
	// Names are table names or shell patterns like "wp_*".
	Names               []string
	AllTables           bool
	AllTablesWithPrefix bool
	// Scope selects the core tables of the installation; defaults to SCOPE_ALL.
	Scope  string
	Prefix string
}

// ScopeTables returns the prefixed core tables of scope.
func ScopeTables(scope, prefix string) ([]string, error) {
	var names []string
	switch scope {
	case "", SCOPE_ALL:
		names = append(slices.Clone(scopeTables[SCOPE_BLOG]), scopeTables[SCOPE_GLOBAL]...)
	default:
		var ok bool
		if names, ok = scopeTables[scope]; !ok {
			return nil, fmt.Errorf("Invalid scope '%s'.", scope)
		}
	}
	return fp.Map(func(name string) string { return prefix + name })(names), nil
}

// SelectTables narrows the existing tables down to the selection. Core
// tables which do not exist are left out.
func SelectTables(existing []string, sel TableSelection) ([]string, error) {
	var tables []string
	switch {
	case sel.AllTables:
		tables = slices.Clone(existing)
	case sel.AllTablesWithPrefix:
		tables = fp.Filter(func(t string) bool { return strings.HasPrefix(t, sel.Prefix) })(existing)
	default:
		scoped, err := ScopeTables(sel.Scope, sel.Prefix)
		if err != nil {
			return nil, err
		}
		tables = fp.Filter(func(t string) bool { return slices.Contains(existing, t) })(scoped)
	}

	if len(sel.Names) == 0 {
		return tables, nil
	}

	var wanted []string
	for _, name := range sel.Names {
		if strings.ContainsAny(name, "*?") {
			for _, t := range tables {
				if ok, _ := path.Match(name, t); ok && !slices.Contains(wanted, t) {
					wanted = append(wanted, t)
				}
			}
		} else if !slices.Contains(wanted, name) {
			wanted = append(wanted, name)
		}
	}
	// keep the order of tables
	selected := fp.Filter(func(t string) bool { return slices.Contains(wanted, t) })(tables)
	if len(selected) == 0 {
		return nil, fmt.Errorf("Couldn't find any tables matching: %s", strings.Join(sel.Names, " "))
	}
	return selected, nil
}

// ParseTableList splits a comma separated list like "wp_posts, wp_users".
func ParseTableList(list string) []string {
	trimmed := fp.Map(strings.TrimSpace)(strings.Split(list, ","))
	return fp.Filter(func(t string) bool { return t != "" })(trimmed)
}
