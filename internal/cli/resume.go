// resume.go implements the "sift resume" command for paused sessions.
package cli

import (
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Prepare a paused session to resume",
	Long: `Return a paused session to idle with resume markers set, so the
workflow driver can pick it back up at its current step.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	return printResult(e.tools.ResumeWorkflow(args[0]))
}
