package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/errors"
	"github.com/premierlux/premierlux-backend/pkg/httputil"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/scope"
)

// SupplierHandler handles supplier management endpoints
type SupplierHandler struct {
	repo   *repository.SupplierRepository
	logger *logger.Logger
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(repo *repository.SupplierRepository, log *logger.Logger) *SupplierHandler {
	return &SupplierHandler{
		repo:   repo,
		logger: log,
	}
}

// CreateSupplierRequest is the payload for registering a supplier.
type CreateSupplierRequest struct {
	Name         string `json:"name" validate:"required"`
	ContactName  string `json:"contact_name"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	LeadTimeDays int    `json:"lead_time_days" validate:"gte=0"`
}

// Create registers a supplier. Owners and admins only.
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	sc := scope.FromContext(r.Context())
	if sc == nil || !sc.CanManageOrders() {
		httputil.Error(w, errors.Forbidden("only owners and admins can manage suppliers"))
		return
	}

	var req CreateSupplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	supplier := &repository.Supplier{
		Name:         req.Name,
		ContactName:  req.ContactName,
		Email:        req.Email,
		Phone:        req.Phone,
		LeadTimeDays: req.LeadTimeDays,
	}

	if err := h.repo.Create(r.Context(), supplier); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, supplier)
}

// List lists all suppliers
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, suppliers)
}

// Get returns one supplier
func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	supplier, err := h.repo.GetByName(r.Context(), name)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, supplier)
}

// Delete removes a supplier. Owners and admins only.
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sc := scope.FromContext(r.Context())
	if sc == nil || !sc.CanManageOrders() {
		httputil.Error(w, errors.Forbidden("only owners and admins can manage suppliers"))
		return
	}

	name := chi.URLParam(r, "name")

	if err := h.repo.Delete(r.Context(), name); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
