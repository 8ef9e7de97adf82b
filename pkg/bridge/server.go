// Package bridge exposes the HTTP surface of the relay: one endpoint per
// capability, each translated into a single round trip over the executor
// channel, plus health, metrics and the executor connection endpoint.
package bridge

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nanobridge-dev/nanobridge/internal/metrics"
	"github.com/nanobridge-dev/nanobridge/pkg/config"
	"github.com/nanobridge-dev/nanobridge/pkg/relay"
)

// App wires the HTTP layer to the relay hub.
type App struct {
	Config  *config.Config
	Hub     *relay.Hub
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	registry *prometheus.Registry
	router   *mux.Router
}

// NewApp creates a bridge application. It owns the relay hub and the metrics
// registry for the lifetime of the process.
func NewApp(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	hub := relay.NewHub(
		relay.WithTimeout(cfg.Relay.RequestTimeout),
		relay.WithLogger(logger.Named("relay")),
		relay.WithMetrics(m),
	)

	return &App{
		Config:   cfg,
		Hub:      hub,
		Logger:   logger,
		Metrics:  m,
		registry: registry,
	}
}

// Build creates the HTTP server. The write timeout leaves room for a full
// relay round trip plus encoding.
func (a *App) Build() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: a.Config.Relay.RequestTimeout + 15*time.Second,
	}
}

// Handler returns the routed handler, building it on first use.
func (a *App) Handler() http.Handler {
	if a.router == nil {
		a.router = mux.NewRouter()
		a.setupRoutes()
	}
	return a.router
}

// Close tears down the executor connection and fails nothing silently; any
// outstanding calls resolve through their own deadlines.
func (a *App) Close() {
	a.Hub.Close()
}

func (a *App) setupRoutes() {
	a.router.HandleFunc("/health", a.handleHealth).Methods("GET")
	a.router.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods("GET")
	a.router.HandleFunc("/ws", a.Hub.HandleConnect)

	actions := a.router.NewRoute().Subrouter()
	actions.Use(a.logRequests, a.requireAPIKey)
	actions.HandleFunc("/prompt", a.handleAction("prompt")).Methods("POST")
	actions.HandleFunc("/write", a.handleAction("write")).Methods("POST")
	actions.HandleFunc("/summarize", a.handleAction("summarize")).Methods("POST")
	actions.HandleFunc("/translate", a.handleAction("translate")).Methods("POST")
	actions.HandleFunc("/rewrite", a.handleAction("rewrite")).Methods("POST")
	actions.HandleFunc("/proofread", a.handleAction("proofread")).Methods("POST")
	actions.HandleFunc("/detect-language", a.handleAction("detectLanguage")).Methods("POST")
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, a.Hub.Connected())
}
