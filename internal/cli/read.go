// read.go implements the "sift read" command for scoped file access.
package cli

import (
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <session-id> <filename>",
	Short: "Read a file from the session directory",
	Long: `Read one file from the session's directory. Filenames are
validated before any filesystem access; paths outside the session
directory are rejected.`,
	Args: cobra.ExactArgs(2),
	RunE: runRead,
}

var readMaxSize int64

func init() {
	readCmd.Flags().Int64Var(&readMaxSize, "max-size", 0, "Maximum file size in bytes (0 = default limit)")
}

func runRead(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	return printResult(e.tools.ReadFile(args[0], args[1], readMaxSize))
}
