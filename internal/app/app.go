// Package app wires the risk-assessment service together and runs it until
// shutdown.
package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/outdoorrisk/internal/cache"
	"github.com/chrissnell/outdoorrisk/internal/controllers/restserver"
	"github.com/chrissnell/outdoorrisk/internal/log"
	"github.com/chrissnell/outdoorrisk/internal/precipitation"
	"github.com/chrissnell/outdoorrisk/internal/reanalysis"
	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.Provider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.Provider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	settings, err := a.configProvider.Load()
	if err != nil {
		return err
	}

	// One HTTP client shared by every upstream fetch
	httpClient := &http.Client{
		Timeout: settings.ConnectTimeout() + settings.ReadTimeout(),
	}

	var clientOpts []reanalysis.Option
	if settings.CachePath != "" {
		store, err := cache.Open(settings.CachePath, settings.CacheTTL())
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Purge(); err != nil {
			log.Warnf("cache purge failed: %v", err)
		}
		clientOpts = append(clientOpts, reanalysis.WithCache(store))
		log.Infof("response cache enabled at %s", settings.CachePath)
	}

	daily := reanalysis.NewClient(settings, httpClient, clientOpts...)

	var precipClient *precipitation.Client
	if settings.EnableHalfHourly || settings.EnablePrecipFallback {
		precipClient = precipitation.NewClient(settings, precipitation.NewSimulatedSource(), daily)
	}

	collector := samples.NewCollector(settings, daily, precipClient)

	restServer, err := restserver.NewController(ctx, &wg, settings, collector, a.logger)
	if err != nil {
		return err
	}
	if err := restServer.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
