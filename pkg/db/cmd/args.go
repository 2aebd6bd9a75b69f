package cmd

import (
	"fmt"
	"strings"

	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/spf13/cobra"
)

// ParseAssocArgs reads options like "--max_allowed_packet=64M" or "--force"
// given after "--" on the command line.
func ParseAssocArgs(args []string) (common.AssocArgs, error) {
	assoc := common.AssocArgs{}
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") || len(arg) == 2 {
			return nil, fmt.Errorf("unexpected argument '%s', expected --<field>=<value>", arg)
		}
		key, value, _ := strings.Cut(arg[2:], "=")
		assoc[key] = value
	}
	return assoc, nil
}

// splitArgs separates positional arguments from the passthrough options
// following "--".
func splitArgs(cmd *cobra.Command, args []string) ([]string, common.AssocArgs, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, common.AssocArgs{}, nil
	}
	assoc, err := ParseAssocArgs(args[dash:])
	if err != nil {
		return nil, nil, err
	}
	return args[:dash], assoc, nil
}

// commandArgs collects passthrough options plus the flags every database
// command shares which also matter to the engine.
func commandArgs(cmd *cobra.Command, args []string, maxPositional int) ([]string, common.AssocArgs, error) {
	positional, assoc, err := splitArgs(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	if maxPositional >= 0 && len(positional) > maxPositional {
		return nil, nil, fmt.Errorf("too many arguments: %s", strings.Join(positional[maxPositional:], " "))
	}
	if dbUser != "" {
		assoc["dbuser"] = dbUser
	}
	if dbPass != "" {
		assoc["dbpass"] = dbPass
	}
	if useDefaults {
		assoc["defaults"] = ""
	}
	return positional, assoc, nil
}
