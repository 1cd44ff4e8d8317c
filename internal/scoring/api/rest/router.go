// Package rest exposes the scoring engine over HTTP. Commands map to POST
// routes, the single-step undo to a DELETE on the delivery collection, and
// reads come from the engine's derived scorecard and the raw ledger.
package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/creaselive/crease/internal/scoring/engine"
	"github.com/creaselive/crease/internal/scoring/storage"
)

const requestTimeout = 30 * time.Second

// RouterOptions configures transport concerns of the REST API.
type RouterOptions struct {
	// AllowedOrigins configures CORS; empty disables cross-origin access.
	AllowedOrigins []string
}

// NewRouter builds the HTTP routing tree for the scoring API.
func NewRouter(e *engine.Engine, store storage.Store, options RouterOptions) http.Handler {
	h := NewHandler(e, store)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	if len(options.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: options.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", h.health)

	r.Route("/v1/matches", func(r chi.Router) {
		r.Post("/", h.createMatch)
		r.Get("/", h.listMatches)

		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/", h.getScorecard)
			r.Get("/events", h.listEvents)
			r.Post("/toss", h.recordToss)
			r.Post("/end", h.endMatch)
			r.Post("/verify", h.verifyMatch)
			r.Delete("/deliveries/latest", h.undoDelivery)

			r.Route("/innings/{inningsNumber}", func(r chi.Router) {
				r.Post("/start", h.startInnings)
				r.Post("/end", h.endInnings)
				r.Post("/deliveries", h.submitDelivery)
				r.Post("/bowler", h.changeBowler)
				r.Post("/replacement", h.selectReplacement)
				r.Post("/strike", h.switchStrike)
			})
		})
	})

	return otelhttp.NewHandler(r, "scoring.http")
}
