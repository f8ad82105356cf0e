package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/premierlux/premierlux-backend/pkg/httputil"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// ReplenishmentHandler handles reorder planning endpoints
type ReplenishmentHandler struct {
	replenishing *service.ReplenishmentService
	forecasting  *service.ForecastService
	logger       *logger.Logger
}

// NewReplenishmentHandler creates a new replenishment handler
func NewReplenishmentHandler(
	replenishing *service.ReplenishmentService,
	forecasting *service.ForecastService,
	log *logger.Logger,
) *ReplenishmentHandler {
	return &ReplenishmentHandler{
		replenishing: replenishing,
		forecasting:  forecasting,
		logger:       log,
	}
}

// Suggestions lists items that need replenishment, most urgent first
func (h *ReplenishmentHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	plans, err := h.replenishing.Suggestions(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, plans)
}

// Plan returns the replenishment plan for one item
func (h *ReplenishmentHandler) Plan(w http.ResponseWriter, r *http.Request) {
	branch := chi.URLParam(r, "branch")
	name := chi.URLParam(r, "name")

	plan, err := h.replenishing.PlanFor(r.Context(), name, branch)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, plan)
}

// Forecast projects demand for one item
func (h *ReplenishmentHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	branch := chi.URLParam(r, "branch")
	name := chi.URLParam(r, "name")

	forecast, err := h.forecasting.DemandForecast(r.Context(), name, branch)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, forecast)
}
