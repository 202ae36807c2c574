// list.go implements the "sift list" command showing all sessions.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	RunE:  runList,
}

var listStatusFilter string

func init() {
	listCmd.Flags().StringVar(&listStatusFilter, "status", "", "Only show sessions with this status")
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sessions := e.manager.List(listStatusFilter)
	if len(sessions) == 0 {
		fmt.Println("No sessions found; create one with: sift register")
		return nil
	}

	for _, rec := range sessions {
		query := rec.Query
		if query == "" {
			query = "-"
		}
		fmt.Printf("  %-36s  %-9s  step %-3d  %s\n", rec.SessionID, rec.Status, rec.CurrentStep, query)
	}
	fmt.Printf("\n%d session(s).\n", len(sessions))

	return nil
}
