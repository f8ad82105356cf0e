package handler

import (
	"net/http"
	"strconv"

	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/premierlux/premierlux-backend/pkg/httputil"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// AnalyticsHandler handles dashboard analytics endpoints
type AnalyticsHandler struct {
	analytics    *service.AnalyticsService
	compliance   *service.ComplianceService
	movementRepo *repository.MovementRepository
	auditRepo    *repository.AuditRepository
	logger       *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	analytics *service.AnalyticsService,
	compliance *service.ComplianceService,
	movementRepo *repository.MovementRepository,
	auditRepo *repository.AuditRepository,
	log *logger.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics:    analytics,
		compliance:   compliance,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		logger:       log,
	}
}

// Snapshot serves the full dashboard payload on demand
func (h *AnalyticsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.analytics.BuildSnapshot(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, snapshot)
}

// WeeklyConsumption serves outbound totals per day over the trailing week
func (h *AnalyticsHandler) WeeklyConsumption(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.movementRepo.WeeklyConsumption(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, buckets)
}

// MonthlyConsumption serves outbound totals per month over six months
func (h *AnalyticsHandler) MonthlyConsumption(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.movementRepo.MonthlyConsumption(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, buckets)
}

// TopConsumed serves the most-consumed ranking
func (h *AnalyticsHandler) TopConsumed(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.movementRepo.TopConsumed(r.Context(), limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// Compliance serves the stock hygiene report
func (h *AnalyticsHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	report, err := h.compliance.Report(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// AuditTrail serves recent audit entries
func (h *AnalyticsHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.auditRepo.ListRecent(r.Context(), limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}
