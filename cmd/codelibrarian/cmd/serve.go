package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP stdio server for the configured project",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := Config()
		log := Logger()

		srv, err := mcp.NewServer(cfg, log)
		if err != nil {
			return fmt.Errorf("start mcp server: %w", err)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			log.Info("mcp server ready, listening on stdio", "root", cfg.IndexRoot())
			errCh <- srv.Serve(ctx)
		}()

		select {
		case sig := <-sigCh:
			log.Info("received signal, shutting down", "signal", sig.String())
			cancel()
			return nil
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
