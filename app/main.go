package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"todoapi/app/config"
	"todoapi/app/controllers"
	"todoapi/app/metrics"
	"todoapi/app/routes"
	"todoapi/app/services"
	"todoapi/app/store"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := config.NewLogger(cfg.Log, os.Stdout)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the store
	backend, name, err := config.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize store")
	}
	defer backend.Close(context.Background())

	var m *metrics.Metrics
	if cfg.Server.MetricsEnabled {
		m = metrics.New(nil)
		backend = store.Instrument(backend, name, m)
	}

	// Initialize the service layer
	todoService := services.NewTodoService(backend, logger)
	if m != nil {
		todoService.WithObserver(m)
	}

	// Initialize the controller layer
	todoController := controllers.NewTodoController(todoService, logger)
	healthController := controllers.NewHealthController(backend, cfg.Store.Timeout, logger)

	router := routes.NewRouter(todoController, healthController, m, logger)
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.Server.Addr, "store": name}).Info("Server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
