package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/minglew/perpscope/internal/domain"
)

// FeeParamsService exposes the live fee parameters of the reconciliation
// engine. Updates trigger an immediate recomputation pass.
type FeeParamsService interface {
	FeeParams() domain.FeeParams
	SetFeeParams(p domain.FeeParams)
}

// FeesHandler serves and updates the trader fee parameters.
type FeesHandler struct {
	svc    FeeParamsService
	logger *slog.Logger
}

// NewFeesHandler creates a FeesHandler.
func NewFeesHandler(svc FeeParamsService, logger *slog.Logger) *FeesHandler {
	return &FeesHandler{
		svc:    svc,
		logger: logHandler(logger, "fees"),
	}
}

// GetParams returns the fee parameters currently applied to comparisons.
// GET /api/fees/params
func (h *FeesHandler) GetParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.FeeParams())
}

// PutParams replaces the fee parameters. Out-of-range values are clamped to
// the supported tier and discount ranges; the effective values are returned.
// PUT /api/fees/params
func (h *FeesHandler) PutParams(w http.ResponseWriter, r *http.Request) {
	var params domain.FeeParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	h.svc.SetFeeParams(params)
	effective := h.svc.FeeParams()

	h.logger.Info("fee params updated",
		slog.Int("tier", effective.Tier),
		slog.Float64("discount_pct", effective.DiscountPct),
	)

	writeJSON(w, http.StatusOK, effective)
}
