package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/nishad/tcgaimport/internal/api"
	"github.com/nishad/tcgaimport/internal/catalog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the artifact catalog over HTTP",
	Long: `Start a read-only JSON API over the artifact catalog.

Endpoints:
  GET /api/v1/artifacts         list artifacts (basename, platform, data_sub_type, limit)
  GET /api/v1/artifacts/{name}  one artifact with its metadata
  GET /api/v1/health            catalog health`,
	Example: `  tcgaimport serve
  tcgaimport serve --port 3000 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost       string
	servePort       int
	serveEnableCORS bool
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default: from config)")
	serveCmd.Flags().BoolVar(&serveEnableCORS, "enable-cors", true, "Enable CORS for web access")
}

func runServe(cmd *cobra.Command, args []string) error {
	if !cfg.Catalog.Enabled {
		return fmt.Errorf("catalog is disabled in the configuration")
	}

	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer cat.Close()

	host, port := cfg.Server.Host, cfg.Server.Port
	if serveHost != "" {
		host = serveHost
	}
	if servePort != 0 {
		port = servePort
	}

	server := api.NewServer(&api.Config{Host: host, Port: port, EnableCORS: serveEnableCORS}, cat, logger)

	ctx, cancel := signalContext()
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		printInfo("Catalog: %s", cfg.Catalog.Path)
		printSuccess("Server ready at http://%s:%d", host, port)
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		printInfo("Shutting down server...")
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	printSuccess("Server stopped gracefully")
	return nil
}
