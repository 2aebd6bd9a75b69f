package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var existingTables = []string{"custom", "wp_comments", "wp_options", "wp_posts", "wp_users", "wp_yoast_seo"}

func TestSelectTables(t *testing.T) {
	cases := []struct {
		name string
		sel  TableSelection
		want []string
	}{
		{"default scope", TableSelection{Prefix: "wp_"}, []string{"wp_posts", "wp_comments", "wp_options", "wp_users"}},
		{"blog scope", TableSelection{Prefix: "wp_", Scope: SCOPE_BLOG}, []string{"wp_posts", "wp_comments", "wp_options"}},
		{"global scope", TableSelection{Prefix: "wp_", Scope: SCOPE_GLOBAL}, []string{"wp_users"}},
		{"all tables", TableSelection{Prefix: "wp_", AllTables: true}, existingTables},
		{"with prefix", TableSelection{Prefix: "wp_", AllTablesWithPrefix: true}, []string{"wp_comments", "wp_options", "wp_posts", "wp_users", "wp_yoast_seo"}},
		{"names", TableSelection{Prefix: "wp_", Names: []string{"wp_users", "wp_posts"}}, []string{"wp_posts", "wp_users"}},
		{"wildcard", TableSelection{Prefix: "wp_", AllTables: true, Names: []string{"wp_?o*"}}, []string{"wp_comments", "wp_posts", "wp_yoast_seo"}},
		{"custom name needs all tables", TableSelection{Prefix: "wp_", AllTables: true, Names: []string{"custom"}}, []string{"custom"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := SelectTables(existingTables, c.sel)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestSelectTables_Errors(t *testing.T) {
	_, err := SelectTables(existingTables, TableSelection{Prefix: "wp_", Names: []string{"custom", "nope_*"}})
	require.EqualError(t, err, "Couldn't find any tables matching: custom nope_*")

	_, err = SelectTables(existingTables, TableSelection{Prefix: "wp_", Scope: "galaxy"})
	require.EqualError(t, err, "Invalid scope 'galaxy'.")
}

func TestParseTableList(t *testing.T) {
	assert.Equal(t, []string{"wp_posts", "wp_users"}, ParseTableList(" wp_posts, ,wp_users,"))
	assert.Empty(t, ParseTableList(""))
}
