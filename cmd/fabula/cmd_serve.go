package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fabula/internal/api"
	"fabula/internal/bible"
	"fabula/internal/logging"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blend API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVarP(&flagRulesPath, "rules", "r", "", "path to a rulebook file (default: embedded curated rules)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	rules, err := loadRules(flagRulesPath)
	if err != nil {
		return err
	}
	schemas, metaphors, frames, err := bible.DefaultBanks()
	if err != nil {
		return err
	}
	if err := bible.ValidateRules(rules, frames, schemas, metaphors); err != nil {
		return fmt.Errorf("refusing to serve an invalid rulebook: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New("serve")
	srv := &http.Server{
		Addr:              flagServeAddr,
		Handler:           api.NewServer(rules, schemas, metaphors, frames),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", flagServeAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
