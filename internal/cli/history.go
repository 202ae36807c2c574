// history.go implements the "sift history" command printing conversation turns.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sift-dev/sift/internal/conversation"
)

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Show the session's conversation history",
	Long: `Print the stored conversation turns for a session, oldest first.
Use --recent to see only the most recent window instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

var (
	historyLimit  int
	historyRecent bool
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum number of turns to show")
	historyCmd.Flags().BoolVar(&historyRecent, "recent", false, "Show the most recent turns instead of the oldest")
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sessionID := args[0]
	var turns []conversation.Turn
	if historyRecent {
		turns = e.store.RecentHistory(sessionID, historyLimit, verbose)
	} else {
		turns = e.store.History(sessionID, historyLimit, verbose)
	}

	if len(turns) == 0 {
		fmt.Printf("No conversation history for session %s.\n", sessionID)
		return nil
	}

	for _, turn := range turns {
		fmt.Printf("[%s] %s: %s\n", turn.Timestamp.Format("2006-01-02 15:04:05"), turn.Role, turn.Message)
	}
	fmt.Printf("\n%d turn(s).\n", len(turns))

	return nil
}
