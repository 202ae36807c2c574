// pause.go implements the "sift pause" command.
package cli

import (
	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause <session-id>",
	Short: "Pause a running session",
	Long: `Pause a running session so it can be resumed later. Only running
sessions can be paused; anything else yields a warning and no change.`,
	Args: cobra.ExactArgs(1),
	RunE: runPause,
}

var pauseReason string

func init() {
	pauseCmd.Flags().StringVar(&pauseReason, "reason", "", "Why the session is being paused")
}

func runPause(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	return printResult(e.tools.PauseWorkflow(args[0], pauseReason))
}
