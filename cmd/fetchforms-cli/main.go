package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cliState is shared by every subcommand of one invocation.
type cliState struct {
	verbose bool
	logger  *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	state := &cliState{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "fetchforms-cli",
		Short: "Submit HTML forms the way fetch-data forms do",
		Long: `fetchforms-cli loads an HTML page, takes over the forms matching the
configured selector and submits them asynchronously: fields are normalised
into one payload, sent with the form's method and the response is rendered
back into the page.

Use "serve" to start the echo backend and demo page for local testing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if state.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			state.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = state.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newSubmitCmd(state),
		newFillCmd(state),
		newServeCmd(state),
	)
	return root
}
