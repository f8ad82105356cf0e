package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/premierlux/premierlux-backend/pkg/httputil"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// AlertHandler handles alert endpoints
type AlertHandler struct {
	alerts *service.AlertService
	logger *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alerts *service.AlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
		logger: log,
	}
}

// List lists the alerts the caller has not yet acknowledged
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.Active(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if severity := r.URL.Query().Get("severity"); severity != "" {
		filtered := alerts[:0]
		for _, a := range alerts {
			if a.Severity != severity {
				continue
			}
			filtered = append(filtered, a)
		}
		alerts = filtered
	}

	httputil.JSON(w, http.StatusOK, alerts)
}

// Acknowledge records that the caller has seen an alert
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.alerts.Acknowledge(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
