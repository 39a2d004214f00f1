// Package router assembles the full HTTP API surface.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	extractionhandler "olea/internal/extraction/handler"
	formhandler "olea/internal/form/handler"
	"olea/internal/platform/metrics"
	"olea/internal/platform/middleware"
	"olea/internal/platform/redis"
	predictionhandler "olea/internal/prediction/handler"
	sessionhandler "olea/internal/session/handler"
	"olea/internal/transport/http/shared"
	userhandler "olea/internal/user/handler"
)

// Deps carries everything the router mounts. Nil handlers are skipped so
// tests can assemble partial routers.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Cache   *redis.Client

	Extraction *extractionhandler.Handler
	Forms      *formhandler.Handler
	Prediction *predictionhandler.Handler
	Session    *sessionhandler.Handler
	Users      *userhandler.Handler
}

// New builds the router: global middleware, /health, /metrics, and the
// /api/v1 surface. Multipart routes (ocr, session scan) stay outside the
// JSON content-type guard.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.LatencyMiddleware(deps.Metrics))
	}
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", healthHandler(deps.Cache))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// JSON-only domains.
		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)
			if deps.Forms != nil {
				deps.Forms.Register(r)
			}
			if deps.Prediction != nil {
				deps.Prediction.Register(r)
			}
			if deps.Users != nil {
				deps.Users.Register(r)
			}
		})

		// Multipart uploads live on these.
		if deps.Extraction != nil {
			deps.Extraction.Register(r)
		}
		if deps.Session != nil {
			deps.Session.Register(r)
		}
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

func healthHandler(cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheStatus := "disabled"
		if cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cache.Health(ctx); err != nil {
				cacheStatus = "unhealthy"
			} else {
				cacheStatus = "ok"
			}
		}
		shared.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Cache: cacheStatus})
	}
}
