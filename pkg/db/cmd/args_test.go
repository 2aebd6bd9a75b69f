package cmd

import (
	"testing"

	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssocArgs(t *testing.T) {
	assoc, err := ParseAssocArgs([]string{"--max_allowed_packet=64M", "--force", "--init-command=SET a=1"})
	require.NoError(t, err)
	assert.Equal(t, common.AssocArgs{
		"max_allowed_packet": "64M",
		"force":              "",
		"init-command":       "SET a=1",
	}, assoc)

	_, err = ParseAssocArgs([]string{"force"})
	require.EqualError(t, err, "unexpected argument 'force', expected --<field>=<value>")

	_, err = ParseAssocArgs([]string{"--"})
	require.Error(t, err)
}
