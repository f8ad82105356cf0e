package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/premierlux/premierlux-backend/pkg/httputil"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// BatchHandler handles supply batch endpoints
type BatchHandler struct {
	intake *service.IntakeService
	logger *logger.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(intake *service.IntakeService, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		intake: intake,
		logger: log,
	}
}

// Register records a new supply batch
func (h *BatchHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.IntakeInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&input); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.intake.Register(r.Context(), &input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// List lists visible supply batches
func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	batches, err := h.intake.ListBatches(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// Get returns one batch by batch number
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	batchNumber := chi.URLParam(r, "batchNumber")

	batch, err := h.intake.GetBatch(r.Context(), batchNumber)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}

// Expiring lists batches expiring within the window
func (h *BatchHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	batches, err := h.intake.ExpiringBatches(r.Context(), days)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// Expired lists batches past their expiry date
func (h *BatchHandler) Expired(w http.ResponseWriter, r *http.Request) {
	batches, err := h.intake.ExpiredBatches(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// Scan resolves a QR token to its batch
func (h *BatchHandler) Scan(w http.ResponseWriter, r *http.Request) {
	qrCode := chi.URLParam(r, "qrCode")

	batch, err := h.intake.Scan(r.Context(), qrCode)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}
