package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/minglew/perpscope/internal/domain"
)

// ComparisonHandler serves the latest reconciliation pass from the cache.
type ComparisonHandler struct {
	cache  domain.ComparisonCache
	logger *slog.Logger
}

// NewComparisonHandler creates a ComparisonHandler.
func NewComparisonHandler(cache domain.ComparisonCache, logger *slog.Logger) *ComparisonHandler {
	return &ComparisonHandler{
		cache:  cache,
		logger: logHandler(logger, "comparison"),
	}
}

// GetLatest returns the most recent comparison pass.
// GET /api/comparison
func (h *ComparisonHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	c, err := h.cache.Get(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "no comparison available yet")
			return
		}
		h.logger.Error("cache get failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load comparison")
		return
	}

	writeJSON(w, http.StatusOK, c)
}
