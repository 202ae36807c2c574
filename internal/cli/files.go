// files.go implements the "sift files" command listing session artifacts.
package cli

import (
	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files <session-id>",
	Short: "List the session's files, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runFiles,
}

func runFiles(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	return printResult(e.tools.ListSessionFiles(args[0]))
}
