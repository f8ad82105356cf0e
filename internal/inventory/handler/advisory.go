package handler

import (
	"net/http"

	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/premierlux/premierlux-backend/pkg/httputil"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// AdvisoryHandler handles the stock advisory endpoint
type AdvisoryHandler struct {
	advisory *service.AdvisoryService
	logger   *logger.Logger
}

// NewAdvisoryHandler creates a new advisory handler
func NewAdvisoryHandler(advisory *service.AdvisoryService, log *logger.Logger) *AdvisoryHandler {
	return &AdvisoryHandler{
		advisory: advisory,
		logger:   log,
	}
}

// AskRequest is the advisory question payload.
type AskRequest struct {
	Question string `json:"question" validate:"required,min=3"`
}

// Ask answers a free-form stock question
func (h *AdvisoryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	answer, err := h.advisory.Ask(r.Context(), req.Question)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, answer)
}
