// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	corslib "github.com/rs/cors"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/apiutil"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/fixtures"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/matchdays"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/api/results"
	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/ratelimit"
)

// RouterConfig carries the transport settings the router needs. Handler
// packages are initialized separately through their InitHandlers.
type RouterConfig struct {
	AllowedOrigins []string
	Buckets        *ratelimit.IPBuckets
	TrustProxy     bool
}

// NewRouter wires middleware and every fixture route.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Outermost first: request id is available to recovery and logging.
	r.Use(WithRequestID)
	r.Use(WithLogging)
	r.Use(WithRecovery)

	c := corslib.New(corslib.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
	})
	r.Use(c.Handler)

	if cfg.Buckets != nil {
		r.Use(WithRateLimit(cfg.Buckets, cfg.TrustProxy))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apiutil.WriteError(w, http.StatusNotFound, apiutil.CodeNotFound, "Route not found", r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apiutil.WriteError(w, http.StatusMethodNotAllowed, apiutil.CodeBadRequest, "Method not allowed", r.Method)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/zones/{zoneID}", func(r chi.Router) {
			r.Post("/fixture", fixtures.HandleGenerateZone)
			r.Post("/fixture/preview", fixtures.HandlePreviewZone)
			r.Get("/fixture/generations", fixtures.HandleListGenerations)
			r.Get("/matchdays", matchdays.HandleListMatchdays)
			r.Post("/matchdays/{round}/finalize", matchdays.HandleFinalize)
			r.Get("/standings", results.HandleStandings)
		})

		r.Post("/tournaments/{tournamentID}/fixture", fixtures.HandleGenerateTournament)
		r.Post("/tournaments/{tournamentID}/fixture/preview", fixtures.HandlePreviewTournament)

		r.Put("/matches/{matchID}/result", results.HandleRecordResult)
	})

	return r
}
