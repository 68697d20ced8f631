package app

import (
	"context"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/httpjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler builds the HTTP API.
func (app *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		correlationID,
		middleware.RealIP,
		middleware.Recoverer,
	)

	r.Get("/healthz", app.healthz)
	if app.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(app.Observability.Registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(app.AuthModule.Middleware()...)
		app.RoundModule.Mount(r)
		app.ActivityModule.Mount(r)
		app.NotificationModule.Mount(r)
	})
	return r
}

// correlationID exposes the chi request id to the logging attrs.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(attr.WithCorrelationID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (app *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.DB.PingContext(ctx); err != nil {
		app.logger.WarnContext(ctx, "Health check failed", attr.String("component", "postgres"), attr.Error(err))
		httpjson.Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	if q := app.NotificationModule.Queue; q != nil {
		if err := q.HealthCheck(ctx); err != nil {
			httpjson.Error(w, http.StatusServiceUnavailable, "queue unavailable")
			return
		}
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}
