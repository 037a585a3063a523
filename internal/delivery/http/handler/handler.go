package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lesingerouge/crawler/internal/delivery/http/response"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by every visited store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	store  Pinger
	logger *zap.Logger
}

func NewHandler(store Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// HandleHealthCheck reports 200 while the visited store answers and 503
// otherwise. A crawl cannot make progress without it.
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("visited store unreachable", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, response.HealthResponse{
			Status: "unavailable",
			Error:  err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}

// HandleNotFound answers unknown routes with a JSON error.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, response.ErrorResponse{Error: "not found"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
