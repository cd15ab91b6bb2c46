package cmd

import (
	"sort"

	"github.com/josephlewis42/accsh/core/shell"
	"github.com/josephlewis42/accsh/core/vio"
	"github.com/spf13/cobra"
)

// builtinsCmd lists the commands the interpreter runs itself
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands of the shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		var names []string
		for name := range shell.AllBuiltins {
			names = append(names, name)
		}
		sort.Strings(names)

		sh := &shell.Shell{IO: vio.NewAdapter(nil, cmd.OutOrStdout(), cmd.ErrOrStderr())}
		shell.Help(sh, append([]string{"help"}, names...))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
