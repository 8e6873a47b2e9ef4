package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"timesheets.service/internal/api/handler"
	"timesheets.service/pkg/metrics"
)

// AuthService is the account side of the core used by the router.
type AuthService interface {
	handler.AuthService
	handler.Authenticator
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the services the router mounts.
type Deps struct {
	Auth       AuthService
	Timesheets handler.TimesheetService
	Metrics    *metrics.Metrics
	// Health is optional. When set, /health fails while it returns an error.
	Health HealthCheck
}

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(deps Deps) *mux.Router {
	authHandler := handler.AuthHandler{Service: deps.Auth}
	timesheetHandler := handler.TimesheetHandler{Service: deps.Timesheets}

	r := mux.NewRouter()
	r.Use(handler.Instrument(deps.Metrics))

	api := r.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/employers/search", authHandler.SearchEmployers).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(handler.RequireAuth(deps.Auth))
	protected.HandleFunc("/user/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/timesheets/dashboard", timesheetHandler.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/timesheets/clock-in", timesheetHandler.ClockIn).Methods(http.MethodPost)
	protected.HandleFunc("/timesheets/clock-out", timesheetHandler.ClockOut).Methods(http.MethodPost)

	r.HandleFunc("/health", healthHandler(deps.Health)).Methods(http.MethodGet)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("Health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("Service is degraded."))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}
}
