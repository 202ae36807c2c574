// env.go wires the config, logger, session manager, conversation store,
// and tool facade together for command handlers.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sift-dev/sift/internal/config"
	"github.com/sift-dev/sift/internal/conversation"
	"github.com/sift-dev/sift/internal/log"
	"github.com/sift-dev/sift/internal/state"
	"github.com/sift-dev/sift/internal/tools"
)

type env struct {
	cfg     *config.Config
	manager *state.Manager
	store   *conversation.Store
	tools   *tools.Tools
	logger  *log.Logger
}

// newEnv loads config from the working directory and opens the session
// manager and conversation store under the analyses directory.
func newEnv() (*env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	cfg := config.Load(cwd)

	logger, err := log.NewLogger(cfg.AnalysesDir)
	if err != nil {
		// Logging is best-effort; a nil logger discards events.
		logger = nil
	}

	manager, err := state.NewManager(cfg.AnalysesDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening session manager: %w", err)
	}

	store, err := conversation.NewStore(filepath.Join(cfg.AnalysesDir, cfg.DatabaseFile), logger)
	if err != nil {
		return nil, fmt.Errorf("opening conversation store: %w", err)
	}

	return &env{
		cfg:     cfg,
		manager: manager,
		store:   store,
		tools:   tools.New(manager, store, logger),
		logger:  logger,
	}, nil
}

func (e *env) close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// printResult renders a tool Result. Error results become command errors so
// the process exits non-zero; warnings print their message and exit clean.
func printResult(res tools.Result) error {
	switch res.Status {
	case tools.StatusError:
		return fmt.Errorf("%s", res.Message)
	case tools.StatusWarning:
		fmt.Printf("warning: %s\n", res.Message)
		return nil
	}

	if res.Message != "" {
		fmt.Println(res.Message)
	}
	if len(res.Data) > 0 {
		data, err := json.MarshalIndent(res.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}
