package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanglvm/reco-hub/internal/logging"
	"github.com/khanglvm/reco-hub/internal/rpc"
)

// NewServeCmd creates the 'serve' command for the stdio bridge.
func NewServeCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dashboard requests over stdio (line-delimited JSON)",
		Long: `Start the stdio bridge. Each stdin line is one JSON request and produces
one JSON response line on stdout:

  {"id": 1, "method": "recommendations", "params": {"user": "ai730048"}}

Methods: users, resolve, recommendations, vote, set_vote, explain, feedback,
export. Logs go to stderr as JSON.`,
		Example: `  echo '{"id":1,"method":"users"}' | reco-hub serve`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	return cmd
}

// runServe runs the bridge until stdin closes or a signal arrives.
func runServe(cmd *cobra.Command, opts *RootOptions) error {
	// stdout carries responses only
	logging.Init(logging.Config{
		Level:  opts.Config.Logging.Level,
		Format: "json",
		Output: cmd.ErrOrStderr(),
	})

	svc, closeFn, err := opts.openService()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	server := rpc.NewServer(svc)
	logging.Info().Msg("stdio bridge started")

	// Run blocks on stdin, so wait for it or the signal.
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("received signal, shutting down")
		return nil
	case err := <-errChan:
		if err != nil && err != context.Canceled {
			return fmt.Errorf("server error: %w", err)
		}
		logging.Info().Msg("stdin closed, shutting down")
		return nil
	}
}
