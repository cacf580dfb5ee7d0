package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcptools "github.com/dialectic-ai/dialectic/internal/mcp"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

func newMCPCmd() *cobra.Command {
	var (
		transport    string
		httpAddr     string
		httpEndpoint string
		opts         appOptions
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long: `Start the MCP server to expose dialogue strategies, benchmarks and
evaluation runs via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default, for IDE integration)
  - streamable-http: HTTP with streaming support (for remote access)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildAppContext(opts)
			if err != nil {
				return err
			}
			defer app.Broker.Stop()

			mcpSrv := mcpserver.NewMCPServer("dialectic", rootCmd.Version,
				mcpserver.WithToolCapabilities(true),
			)
			if err := mcptools.RegisterTools(mcpSrv, app); err != nil {
				return fmt.Errorf("failed to register MCP tools: %w", err)
			}

			shutdownCtx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			switch transport {
			case transportStdio:
				return runStdioServer(mcpSrv)
			case transportStreamableHTTP:
				fmt.Printf("Starting dialectic MCP server with %s transport...\n", transport)
				return runMCPHTTPServer(shutdownCtx, mcpSrv, httpAddr, httpEndpoint)
			default:
				return fmt.Errorf("unsupported transport: %s (supported: stdio, streamable-http)", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http)")
	registerAppFlags(cmd, &opts)

	return cmd
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runMCPHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr, endpoint string) error {
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(endpoint),
	)

	mux := http.NewServeMux()
	mux.Handle(endpoint, mcpHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	fmt.Printf("  HTTP endpoint: %s\n", endpoint)
	fmt.Printf("  Health: /healthz\n")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	fmt.Println("HTTP server stopped")
	return nil
}
