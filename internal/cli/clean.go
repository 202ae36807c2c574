// clean.go implements the "sift clean" command for pruning stale sessions.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sift-dev/sift/internal/cleanup"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove stale sessions",
	Long: `Remove sessions older than the configured max_age_days (default 30).
Running and paused sessions are never removed.
Use --orphans to also remove directories without a session document.
Use --dry-run to preview what would be removed.`,
	RunE: runClean,
}

var (
	dryRunFlag  bool
	orphansFlag bool
)

func init() {
	cleanCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview what would be removed without deleting")
	cleanCmd.Flags().BoolVar(&orphansFlag, "orphans", false, "Also remove directories without a session document")
}

func runClean(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	maxAge := e.cfg.Cleanup.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 30
	}

	pruned, err := cleanup.PruneByAge(e.manager, maxAge, dryRunFlag)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if orphansFlag {
		orphans, err := cleanup.PruneOrphans(e.manager.BaseDir(), dryRunFlag)
		if err != nil {
			return fmt.Errorf("orphan cleanup failed: %w", err)
		}
		pruned = append(pruned, orphans...)
	}

	if len(pruned) == 0 {
		fmt.Println("No sessions to clean up.")
		return nil
	}

	verb := "Removed"
	if dryRunFlag {
		verb = "Would remove"
	}

	for _, name := range pruned {
		fmt.Printf("  %s %s\n", verb, name)
	}
	fmt.Printf("%s %d session(s).\n", verb, len(pruned))

	return nil
}
