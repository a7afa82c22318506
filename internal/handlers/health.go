package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/srm/pkg/http"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is anything that can report its own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	database Pinger
	store    Pinger
	logger   *slog.Logger
}

func NewHealthHandler(database, store Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{database: database, store: store, logger: logger}
}

// HealthResponse reports each dependency as "up" or "down"
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Store    string `json:"store"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "healthy",
		Database: h.probe(ctx, "database", h.database),
		Store:    h.probe(ctx, "store", h.store),
	}

	status := http.StatusOK
	if resp.Database != "up" || resp.Store != "up" {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	pkghttp.WriteJSON(w, status, resp)
}

func (h *HealthHandler) probe(ctx context.Context, name string, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("dependency", name), slog.Any("error", err))
		return "down"
	}
	return "up"
}
