package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Config struct {
	ServiceName    string
	JWTSecret      string
	MaxUploadBytes int64
	SecureCookies  bool
	SessionTTL     time.Duration
	// Health reports readiness of backing services. Optional.
	Health func(ctx context.Context) error
}

// New wires the middleware stack and the listing routes. mm may be nil.
func New(cfg Config, listings *handler.ListingHandler, mm *metrics.MetricsManager, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.Logger(log.Named("http")))
	r.Use(chimw.Recoverer)
	if mm != nil {
		r.Use(middleware.Metrics(mm))
	}
	// Multipart bodies carry the image plus form fields.
	r.Use(middleware.BodyLimit(cfg.MaxUploadBytes + 1<<20))
	r.Use(middleware.MethodOverride)
	r.Use(middleware.Session(cfg.SecureCookies, cfg.SessionTTL))
	r.Use(middleware.Authenticate(cfg.JWTSecret, log.Named("auth")))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/listings", http.StatusFound)
	})
	r.Get("/healthz", healthHandler(cfg.Health))

	r.Route("/listings", func(r chi.Router) {
		r.Get("/", listings.Index)
		r.Get("/{id}", listings.Show)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/new", listings.New)
			r.Post("/", listings.Create)
			r.Get("/{id}/edit", listings.Edit)
			r.Put("/{id}", listings.Update)
			r.Delete("/{id}", listings.Delete)
		})
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
