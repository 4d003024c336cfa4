package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ai-pulse/internal/handler"
	"ai-pulse/internal/service"
	"github.com/spf13/cobra"
)

var noCron bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read API and run scheduled jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var schedule service.Schedule
		if !noCron {
			if err := a.scheduler.Start(); err != nil {
				return err
			}
			defer a.scheduler.Stop()
			schedule = a.scheduler
		}

		h := handler.NewHandler(a.store, service.NewStatusService(a.store, schedule, a.llm), logger)
		srv := &http.Server{
			Addr:              cfg.GetServerAddress(),
			Handler:           handler.NewRouter(h, cfg.Server.Mode),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noCron, "no-cron", false, "serve the API without scheduled jobs")
	rootCmd.AddCommand(serveCmd)
}
