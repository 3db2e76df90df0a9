package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comandero/internal/api"
	"comandero/internal/api/handlers"
	"comandero/internal/api/middleware"
	"comandero/internal/config"
	"comandero/internal/core"
	"comandero/internal/db"
	"comandero/internal/notify"
	"comandero/internal/printer"
	"comandero/internal/settings"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("comandero: %v", err)
	}
}

func run(cfg *config.Config) error {
	store, err := settings.Open(cfg.Settings.Path)
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	orderDB, err := db.Connect(ctx, cfg.OrderDB)
	cancel()
	if err != nil {
		return fmt.Errorf("connect order db: %w", err)
	}
	defer orderDB.Close()

	jobStore := db.NewJobStore(orderDB)

	hub := notify.NewHub(notify.Config{
		WebhookURL: cfg.Webhook.URL,
		Timeout:    cfg.Webhook.Timeout,
		QueueSize:  cfg.Webhook.QueueSize,
	})
	hub.Start()
	defer hub.Stop()

	sink := printer.NewClient(cfg.Printer.DefaultPort)

	service := core.NewPrintService(jobStore, sink, store, hub,
		cfg.Printer.PrintTimeout, cfg.Printer.ReportTimeout)

	scheduler := core.NewScheduler(service, jobStore, store, hub, cfg.Scheduler.PollInterval)
	scheduler.Start()
	defer scheduler.Stop()

	auth, err := middleware.NewAuthMiddleware(store)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	router := api.NewRouter(auth,
		handlers.NewPrintHandler(service, hub),
		handlers.NewSettingsHandler(store),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("comandero listening on :%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}

	return nil
}
