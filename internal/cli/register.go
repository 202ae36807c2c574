// register.go implements the "sift register" command creating a session.
package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register [session-id]",
	Short: "Register a new analysis session",
	Long: `Create a new session with an idle status and its own directory
under the analyses root. A session id is minted when none is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegister,
}

var registerQuery string

func init() {
	registerCmd.Flags().StringVar(&registerQuery, "query", "", "Initial analysis query for the session")
}

func runRegister(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sessionID := uuid.NewString()
	if len(args) == 1 {
		sessionID = args[0]
	}

	if !e.manager.Register(sessionID, registerQuery, nil) {
		return fmt.Errorf("session %s already exists", sessionID)
	}

	fmt.Printf("Registered session %s\n", sessionID)
	return nil
}
