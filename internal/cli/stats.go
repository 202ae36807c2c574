// stats.go implements the "sift stats" command over the conversation store.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show conversation store statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	stats := e.store.GetStats()

	fmt.Printf("Database:       %s\n", stats.DatabasePath)
	fmt.Printf("Sessions:       %d\n", stats.TotalSessions)
	fmt.Printf("Messages:       %d\n", stats.TotalMessages)
	fmt.Printf("Tokens:         %d\n", stats.TotalTokens)
	for role, count := range stats.MessagesByRole {
		fmt.Printf("  %-12s  %d\n", role, count)
	}

	return nil
}
