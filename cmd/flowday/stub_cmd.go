package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowday/flowday/internal/stub"
)

var (
	listenAddr string
	dbPath     string
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run the local stub backend",
	Long:  `Starts a local stand-in for the Flowday REST API backed by SQLite. Any email and password sign in.`,
	RunE:  runStub,
}

func init() {
	stubCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides stub.listen)")
	stubCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides stub.db)")
}

func runStub(cmd *cobra.Command, args []string) error {
	if listenAddr == "" {
		listenAddr = cfg.Stub.Listen
	}
	if dbPath == "" {
		dbPath = cfg.Stub.DB
	}
	logger.WithField("db", dbPath).Info("stub.starting")

	s, err := stub.NewStore(dbPath)
	if err != nil {
		return err
	}
	server := stub.NewServer(s, listenAddr, logger)

	ctx, cancel := signalContext()
	defer cancel()

	// Channel to receive server errors
	serverErr := make(chan error, 1)
	go func() {
		err := server.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		logger.Info("stub.shutdown_requested")
	case err := <-serverErr:
		if err != nil {
			logger.WithError(err).Error("stub.server_failed")
			s.Close()
			return err
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("stub.shutdown_failed")
	}
	if err := s.Close(); err != nil {
		logger.WithError(err).Warn("stub.db_close_failed")
	}
	logger.Info("stub.stopped")
	return nil
}
