// query.go implements the "sift query" command for refining a session query.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <session-id> <new query...>",
	Short: "Replace the session's analysis query",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	return printResult(e.tools.UpdateQuery(args[0], strings.Join(args[1:], " ")))
}
