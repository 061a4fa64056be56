package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/orbitdesk/portal/internal/config"
	httpmiddleware "github.com/orbitdesk/portal/internal/http/middleware"
	"github.com/orbitdesk/portal/internal/registry"
	"github.com/orbitdesk/portal/internal/service"
)

// Resolver is the resolution service the handlers depend on.
type Resolver interface {
	Resolve(ctx context.Context, in service.ResolveInput) (*service.ResolveResult, error)
}

// Handler holds the dependencies of the HTTP surface.
type Handler struct {
	cfg        *config.Config
	resolver   Resolver
	components *registry.Table
	limiter    *httpmiddleware.RateLimiter
}

// NewRouter returns the configured router.
func NewRouter(cfg *config.Config, resolver Resolver, components *registry.Table) http.Handler {
	h := &Handler{
		cfg:        cfg,
		resolver:   resolver,
		components: components,
		limiter:    httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))
	r.Use(httpmiddleware.IPRateLimit(h.limiter))

	r.Get("/healthz", h.handleHealth)
	r.Post("/api/auth/resolve", h.handleResolve)
	r.Get("/api/registry/components", h.handleComponents)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleComponents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"components": h.components.Manifest(),
	})
}
