package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cipherkit/internal/api"
	"cipherkit/internal/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start the cipherkit HTTP API server.

Endpoints:
  GET  /health          Health check
  GET  /v1/algorithms   List algorithms
  POST /v1/cipher       {"algorithm", "param", "text"}
  POST /v1/decipher     {"algorithm", "param", "text"}
  POST /v1/hash         {"text", "algorithms"}
  POST /v1/messages     {"text"} answered like a chat command

Logs go to stderr and to a size-rotated file (logging.file).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	serverLogger, err := logs.ServerLogger()
	if err != nil {
		return err
	}
	logger = serverLogger

	serverCfg := cfg.Server
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}

	server := api.NewServer(serverCfg, newDispatcher(storage.SourceAPI), logger,
		api.WithChatDispatcher(newDispatcher(storage.SourceChat)))

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "cipherkit HTTP API listening on http://%s\n", serverCfg.Addr)
		fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")
	}

	return nil
}
