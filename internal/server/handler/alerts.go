package handler

import (
	"log/slog"
	"net/http"

	"github.com/minglew/perpscope/internal/domain"
)

// AlertsHandler serves the persisted alert audit trail.
type AlertsHandler struct {
	store  domain.AlertStore
	logger *slog.Logger
}

// NewAlertsHandler creates an AlertsHandler.
func NewAlertsHandler(store domain.AlertStore, logger *slog.Logger) *AlertsHandler {
	return &AlertsHandler{
		store:  store,
		logger: logHandler(logger, "alerts"),
	}
}

// ListRecent returns the most recently sent alerts, newest first.
// GET /api/alerts/recent
func (h *AlertsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 500)

	alerts, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list alerts failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}
