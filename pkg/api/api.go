package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
	"github.com/teamaptiv/volunteer-hub/pkg/metrics"
)

// API is the HTTP surface over the scheduling service
type API struct {
	root     *mux.Router
	router   *mux.Router
	svc      *services.Service
	auth     Authenticator
	logger   *zap.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// NewAPI creates the API. A nil gatherer disables the /metrics endpoint.
func NewAPI(svc *services.Service, auth Authenticator, logger *zap.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *API {
	if m == nil {
		m = metrics.NewMetrics(nil)
	}

	root := mux.NewRouter()
	return &API{
		root:     root,
		router:   root.PathPrefix("/api").Subrouter(),
		svc:      svc,
		auth:     auth,
		logger:   logger,
		metrics:  m,
		gatherer: gatherer,
	}
}

// Router returns the root router without logging and recovery, for tests
func (a *API) Router() *mux.Router {
	return a.root
}

// Handler wraps the router with panic recovery and access logging
func (a *API) Handler() http.Handler {
	stdLogger := zap.NewStdLog(a.logger.Named("http"))

	var h http.Handler = a.root
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(stdLogger), handlers.PrintRecoveryStack(true))(h)
	return handlers.LoggingHandler(stdLogger.Writer(), h)
}

// RegisterRoutes wires every endpoint
func (a *API) RegisterRoutes() {
	a.router.Use(a.metrics.Middleware())

	a.router.HandleFunc("/health", a.health).Methods(http.MethodGet)
	a.router.HandleFunc("/slots/preview", a.previewSlots).Methods(http.MethodGet)
	a.router.HandleFunc("/users", a.registerUser).Methods(http.MethodPost)

	authed := a.router.NewRoute().Subrouter()
	authed.Use(a.authenticate)

	authed.HandleFunc("/events", a.createEvent).Methods(http.MethodPost)
	authed.HandleFunc("/events", a.listEvents).Methods(http.MethodGet)
	authed.HandleFunc("/events/series", a.createEventSeries).Methods(http.MethodPost)
	authed.HandleFunc("/events/{id}", a.getEvent).Methods(http.MethodGet)
	authed.HandleFunc("/events/{id}/cancel", a.cancelEvent).Methods(http.MethodPost)
	authed.HandleFunc("/events/{id}/reschedule", a.rescheduleEvent).Methods(http.MethodPost)
	authed.HandleFunc("/events/{id}/reservations", a.reserveSlots).Methods(http.MethodPost)
	authed.HandleFunc("/events/{id}/reservations/cancel", a.cancelSlots).Methods(http.MethodPost)
	authed.HandleFunc("/events/{id}/donations", a.donate).Methods(http.MethodPost)
	authed.HandleFunc("/orgs", a.ensureOrg).Methods(http.MethodPost)
	authed.HandleFunc("/orgs/{id}/donations", a.donateToOrg).Methods(http.MethodPost)
	authed.HandleFunc("/users/{id}/profile", a.getProfile).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}/deactivate", a.deactivateUser).Methods(http.MethodPost)
	authed.HandleFunc("/users/{id}/activate", a.activateUser).Methods(http.MethodPost)

	if a.gatherer != nil {
		a.root.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}
