package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exambank/internal/app"
	"exambank/internal/config"
	"exambank/internal/store"
	transport "exambank/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the ExamBank HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if cfg.Store.Driver == "postgres" && cfg.Postgres.URL != "" {
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

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	opener, err := backendOpener(cfg)
	if err != nil {
		return err
	}

	registry := store.NewRegistry(loc, log)
	defer func() {
		if err := registry.Close(); err != nil {
			log.WithError(err).Warn("close store")
		}
	}()

	var examStore app.ExamStore
	if client := registry.Initialize(ctx, opener); client != nil {
		examStore = client
		log.WithField("driver", config.StringOr(cfg.Store.Driver, "memory")).Info("store ready")
	} else {
		log.Warn("store unavailable, serving sample data")
	}

	service := app.NewExamService(examStore, app.Options{StrictWrites: cfg.Exams.StrictWrites}, log)
	debounce := config.Duration(cfg.Exams.SearchDebounce, 300*time.Millisecond)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, debounce, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Infof("starting exambank on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
