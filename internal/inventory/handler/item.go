package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/premierlux/premierlux-backend/pkg/httputil"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// ItemHandler handles stock ledger endpoints
type ItemHandler struct {
	ledger *service.LedgerService
	logger *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(ledger *service.LedgerService, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		ledger: ledger,
		logger: log,
	}
}

// CreateItemRequest is the payload for registering a ledger row.
type CreateItemRequest struct {
	Name         string  `json:"name" validate:"required"`
	Branch       string  `json:"branch" validate:"required"`
	SKU          string  `json:"sku"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	ReorderLevel int     `json:"reorder_level" validate:"gte=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	Category     string  `json:"category"`
	Supplier     string  `json:"supplier"`
	MonthlyUsage int     `json:"monthly_usage" validate:"gte=0"`
}

// Create registers a new inventory item
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	item := &repository.InventoryItem{
		Name:         req.Name,
		Branch:       req.Branch,
		SKU:          req.SKU,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		Price:        req.Price,
		Category:     req.Category,
		Supplier:     req.Supplier,
		MonthlyUsage: req.MonthlyUsage,
	}

	if err := h.ledger.CreateItem(r.Context(), item); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, item)
}

// List lists visible inventory items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.ListItems(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// Get returns one inventory item
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	branch := chi.URLParam(r, "branch")
	name := chi.URLParam(r, "name")

	item, err := h.ledger.GetItem(r.Context(), name, branch)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Delete removes an inventory item and its batches
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	branch := chi.URLParam(r, "branch")
	name := chi.URLParam(r, "name")

	if err := h.ledger.DeleteItem(r.Context(), name, branch); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Adjust applies a signed stock delta
func (h *ItemHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var input service.AdjustmentInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&input); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.ledger.Adjust(r.Context(), &input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// LowStock lists items at or below their reorder level
func (h *ItemHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.ListLowStock(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// Movements lists recent movement log entries
func (h *ItemHandler) Movements(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.ledger.RecentMovements(r.Context(), limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, records)
}
