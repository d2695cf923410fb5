package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/server"
	"github.com/cwbudde/rootlab/internal/store"
)

var (
	serveAddr    string
	serveDataDir string
	serveNoStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the HTTP API. Runs are submitted as JSON to POST /api/v1/runs and
can be followed over server-sent events or a websocket. Finished runs are
saved under the data directory unless --no-store is given.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "Directory for saved runs (default from config)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "Keep runs in memory only")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	opts := server.Options{
		Addr:         addr,
		Tol:          cfg.Solver.Tol,
		MaxIter:      cfg.Solver.MaxIter,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	if !serveNoStore {
		dir := cfg.General.DataDir
		if serveDataDir != "" {
			dir = serveDataDir
		}
		st, err := store.NewFSStore(dir)
		if err != nil {
			return fmt.Errorf("failed to open run store: %w", err)
		}
		opts.Store = st
	}

	srv := server.NewServer(opts)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
