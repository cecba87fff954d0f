package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hangman-service/internal/app"
	"hangman-service/internal/config"
	transport "hangman-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the hangman server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.attachQueue(); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewAPI(rt.service, rt.checks...).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", finalPort).Info("starting hangman service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return rt.runWorker(gctx)
	})
	g.Go(func() error {
		return runEvery(gctx, config.TTLDuration(cfg.Schedule.AverageInterval, 5*time.Minute),
			app.TaskCacheAverageAttempts, rt.service.RunTask)
	})
	g.Go(func() error {
		return runEvery(gctx, config.TTLDuration(cfg.Schedule.ReminderInterval, 24*time.Hour),
			app.TaskSendReminders, rt.service.RunTask)
	})
	return g.Wait()
}

// runEvery runs task on every tick until ctx is done. A non-positive
// interval disables the schedule. Task failures are logged, not returned.
func runEvery(ctx context.Context, interval time.Duration, task string, run func(context.Context, string) error) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	entry := log.WithFields(log.Fields{"task": task, "interval": interval.String()})
	entry.Info("scheduled task started")
	for {
		select {
		case <-ctx.Done():
			entry.Info("scheduled task stopped")
			return nil
		case <-ticker.C:
			if err := run(ctx, task); err != nil {
				entry.WithError(err).Error("scheduled task failed")
			}
		}
	}
}
