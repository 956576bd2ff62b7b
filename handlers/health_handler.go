package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/upb/research-assistant/corpus"
	"github.com/upb/research-assistant/services/audit"
	"github.com/upb/research-assistant/services/providers"
	"github.com/upb/research-assistant/utils"
	"go.uber.org/zap"
)

const (
	readinessTimeout    = 5 * time.Second
	availabilityTimeout = 3 * time.Second
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Version     string      `json:"version"`
	Environment string      `json:"environment"`
	Model       string      `json:"model"`
	Available   bool        `json:"modelAvailable"`
	Providers   []string    `json:"providers"`
	Documents   int         `json:"documents"`
	Categories  int         `json:"categories"`
	Audit       audit.Stats `json:"audit"`
}

type AuditStats interface {
	GetStats() audit.Stats
}

// HealthInfo is fixed at startup.
type HealthInfo struct {
	Version     string
	Environment string
	Model       string
}

// HealthHandler serves liveness, readiness and status. db is nil when no
// audit store is open.
type HealthHandler struct {
	db       *sql.DB
	registry *providers.Registry
	store    *corpus.Store
	audit    AuditStats
	info     HealthInfo
	logger   *zap.Logger
}

func NewHealthHandler(db *sql.DB, registry *providers.Registry, store *corpus.Store, auditStats AuditStats, info HealthInfo, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, registry: registry, store: store, audit: auditStats, info: info, logger: logger}
}

// HandleHealth answers 200 whenever the process is serving.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: now()})
}

// HandleReadiness answers 503 when any check fails. A missing database is
// not a failure; the audit trail is optional.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{
		"database": h.databaseState(ctx),
		"corpus":   "loaded",
		"provider": "configured",
	}
	if h.store.Len() == 0 {
		checks["corpus"] = "empty"
	}
	if _, _, err := h.registry.Resolve(h.info.Model); err != nil {
		h.logger.Warn("configured model has no provider", zap.String("model", h.info.Model), zap.Error(err))
		checks["provider"] = "missing"
	}

	resp := HealthResponse{Status: "healthy", Timestamp: now(), Checks: checks}
	status := http.StatusOK
	if checks["database"] == "unhealthy" || checks["corpus"] != "loaded" || checks["provider"] != "configured" {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	if err := utils.WriteJSON(w, status, resp); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

func (h *HealthHandler) databaseState(ctx context.Context) string {
	if h.db == nil {
		return "not_configured"
	}
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		return "unhealthy"
	}
	return "healthy"
}

// HandleStatus reports configuration and counters. modelAvailable asks
// the model's provider directly and is false when it has none.
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), availabilityTimeout)
	defer cancel()

	resp := StatusResponse{
		Version:     h.info.Version,
		Environment: h.info.Environment,
		Model:       h.info.Model,
		Providers:   h.registry.Names(),
		Documents:   h.store.Len(),
		Categories:  len(h.store.Categories()),
		Audit:       h.audit.GetStats(),
	}
	if p, _, err := h.registry.Resolve(h.info.Model); err == nil {
		resp.Available = p.IsAvailable(ctx)
	}

	if err := utils.WriteOK(w, resp); err != nil {
		h.logger.Error("failed to write status response", zap.Error(err))
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
