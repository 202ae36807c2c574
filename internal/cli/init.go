// init.go implements the "sift init" command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sift-dev/sift/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sift in the current directory",
	Long: `Create the .sift/ directory with a default configuration and the
analyses data directory. Safe to re-run; an existing config is kept.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	if _, err := config.ReadConfig(dir); err == nil {
		fmt.Println("sift is already initialized; keeping existing config.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := config.WriteConfig(dir, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.MkdirAll(cfg.AnalysesDir, 0755); err != nil {
		return fmt.Errorf("creating analyses directory: %w", err)
	}

	fmt.Printf("Initialized sift: .sift/config.yaml, %s/\n", cfg.AnalysesDir)
	return nil
}
