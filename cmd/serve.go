package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dialectic-ai/dialectic/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr string
		opts appOptions
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP server exposing the debate and evaluation API.

Live debates stream over SSE at /api/stream?debateId=ID; evaluations run in
the background and are pollable at /api/evaluation/status/{id}.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildAppContext(opts)
			if err != nil {
				return err
			}
			defer app.Broker.Stop()

			httpSrv := server.NewHTTPServer(addr, app)

			shutdownCtx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			serverDone := make(chan error, 1)
			go func() {
				defer close(serverDone)
				if err := httpSrv.Start(); err != nil {
					serverDone <- err
				}
			}()

			select {
			case <-shutdownCtx.Done():
				fmt.Println("Shutdown signal received, stopping HTTP server...")
				if err := httpSrv.Shutdown(context.Background()); err != nil {
					return fmt.Errorf("error shutting down: %w", err)
				}
			case err := <-serverDone:
				if err != nil {
					return fmt.Errorf("HTTP server error: %w", err)
				}
			}

			fmt.Println("HTTP server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "HTTP server address")
	registerAppFlags(cmd, &opts)

	return cmd
}
