// summary.go implements the "sift summary" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <session-id>",
	Short: "Show the analysis summary for a session",
	Long: `Show the merged analysis view: status, progress, error count,
report-like files, and the conversation rollup when one exists.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

var summarySet string

func init() {
	summaryCmd.Flags().StringVar(&summarySet, "set", "", "Store this text as the session's conversation summary")
}

func runSummary(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sessionID := args[0]

	if summarySet != "" {
		if !e.store.SetSummary(sessionID, summarySet) {
			return fmt.Errorf("failed to store summary for session %s", sessionID)
		}
		fmt.Println("Summary stored.")
		return nil
	}

	if err := printResult(e.tools.AnalysisSummary(sessionID)); err != nil {
		return err
	}

	if rollup, ok := e.store.Summary(sessionID); ok && rollup.Summary != "" {
		fmt.Printf("\nConversation summary: %s\n", rollup.Summary)
	}
	return nil
}
