package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/minglew/perpscope/internal/domain"
)

// VenuesHandler serves the per-venue instrument listings carried on the
// latest comparison pass.
type VenuesHandler struct {
	cache  domain.ComparisonCache
	logger *slog.Logger
}

// NewVenuesHandler creates a VenuesHandler.
func NewVenuesHandler(cache domain.ComparisonCache, logger *slog.Logger) *VenuesHandler {
	return &VenuesHandler{
		cache:  cache,
		logger: logHandler(logger, "venues"),
	}
}

// ListInstruments returns the instrument view for one venue.
// GET /api/venues/{venue}/instruments
func (h *VenuesHandler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	venue := domain.Venue(pathParam(r, "venue"))
	if venue != domain.VenueHyperliquid && venue != domain.VenueOstium {
		writeError(w, http.StatusBadRequest, "unknown venue: "+string(venue))
		return
	}

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

	view := c.Hyperliquid
	if venue == domain.VenueOstium {
		view = c.Ostium
	}

	writeJSON(w, http.StatusOK, view)
}
