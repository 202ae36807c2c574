// delete.go implements the "sift delete" command removing a session.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session, its files, and its conversation history",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var deleteKeepHistory bool

func init() {
	deleteCmd.Flags().BoolVar(&deleteKeepHistory, "keep-history", false, "Keep the conversation history in the store")
}

func runDelete(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sessionID := args[0]
	if !e.manager.Delete(sessionID) {
		return fmt.Errorf("session %s not found", sessionID)
	}

	if !deleteKeepHistory {
		e.store.ClearHistory(sessionID)
	}

	fmt.Printf("Deleted session %s\n", sessionID)
	return nil
}
