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

// BranchHandler handles branch management endpoints
type BranchHandler struct {
	repo   *repository.BranchRepository
	logger *logger.Logger
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(repo *repository.BranchRepository, log *logger.Logger) *BranchHandler {
	return &BranchHandler{
		repo:   repo,
		logger: log,
	}
}

// CreateBranchRequest is the payload for registering a branch.
type CreateBranchRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
	Manager  string `json:"manager"`
}

// Create registers a branch. Owners and admins only.
func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	sc := scope.FromContext(r.Context())
	if sc == nil || !sc.CanManageOrders() {
		httputil.Error(w, errors.Forbidden("only owners and admins can manage branches"))
		return
	}

	var req CreateBranchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	branch := &repository.Branch{
		Name:     req.Name,
		Location: req.Location,
		Manager:  req.Manager,
	}

	if err := h.repo.Create(r.Context(), branch); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, branch)
}

// List lists all branches
func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, branches)
}

// Get returns one branch
func (h *BranchHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	branch, err := h.repo.GetByName(r.Context(), name)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, branch)
}

// Delete removes a branch. Owners and admins only.
func (h *BranchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sc := scope.FromContext(r.Context())
	if sc == nil || !sc.CanManageOrders() {
		httputil.Error(w, errors.Forbidden("only owners and admins can manage branches"))
		return
	}

	name := chi.URLParam(r, "name")

	if err := h.repo.Delete(r.Context(), name); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
