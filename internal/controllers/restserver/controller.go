// Package restserver exposes the risk assessment and export operations over
// HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/outdoorrisk/internal/log"
	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	settings  config.Settings
	collector *samples.Collector
	Server    http.Server
	logger    *zap.SugaredLogger
	handlers  *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, settings config.Settings, collector *samples.Collector, logger *zap.SugaredLogger) (*Controller, error) {
	if collector == nil {
		return nil, fmt.Errorf("collector must not be nil")
	}

	ctrl := &Controller{
		ctx:       ctx,
		wg:        wg,
		settings:  settings,
		collector: collector,
		logger:    logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server = http.Server{
		Addr:         fmt.Sprintf("%s:%d", settings.ListenAddr, settings.HTTPPort),
		Handler:      ctrl.setupRouter(),
		ReadTimeout:  settings.ReadTimeout(),
		WriteTimeout: 2 * settings.ReadTimeout(),
	}

	return ctrl, nil
}

// StartController starts the HTTP listener and shuts it down when the
// controller context is cancelled.
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(c.requestIDMiddleware)
	router.Use(c.corsMiddleware)
	router.Use(c.loggingMiddleware)

	router.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/v1/risk", c.handlers.GetRiskAssessment).Methods(http.MethodGet)
	router.HandleFunc("/v1/export", c.handlers.GetExport).Methods(http.MethodGet)

	return router
}
