package service

import (
	"context"
	"time"

	"github.com/premierlux/premierlux-backend/internal/inventory/events"
	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/errors"
	"github.com/premierlux/premierlux-backend/pkg/identifier"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/scope"
)

// IntakeService registers supply batches and keeps the ledger in step.
type IntakeService struct {
	batchRepo *repository.BatchRepository
	idgen     *identifier.Generator
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewIntakeService creates a new intake service
func NewIntakeService(
	batchRepo *repository.BatchRepository,
	idgen *identifier.Generator,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *IntakeService {
	return &IntakeService{
		batchRepo: batchRepo,
		idgen:     idgen,
		publisher: publisher,
		logger:    log,
	}
}

// IntakeInput describes one incoming supply batch.
type IntakeInput struct {
	Name          string    `json:"name" validate:"required"`
	Branch        string    `json:"branch" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,gt=0"`
	MfgDate       time.Time `json:"mfg_date"`
	ExpiryDate    time.Time `json:"expiry_date" validate:"required"`
	Supplier      string    `json:"supplier"`
	SupplierBatch string    `json:"supplier_batch"`
	SKU           string    `json:"sku"`
	ReorderLevel  int       `json:"reorder_level"`
	Price         float64   `json:"price" validate:"gte=0"`
	Category      string    `json:"category"`
	MonthlyUsage  int       `json:"monthly_usage" validate:"gte=0"`
}

// IntakeResult reports a registered batch and the resulting ledger state.
type IntakeResult struct {
	Batch       *repository.SupplyBatch `json:"batch"`
	NewQuantity int                     `json:"new_quantity"`
}

// Register records a supply batch. Identifiers are generated here, never
// supplied by the caller. The ledger row is created or incremented in the
// same transaction as the batch insert.
func (s *IntakeService) Register(ctx context.Context, input *IntakeInput) (*IntakeResult, error) {
	sc := scope.FromContext(ctx)
	if sc != nil && !sc.CanWriteBranch(input.Branch) {
		return nil, errors.Forbidden("cannot register batches outside your branch")
	}

	if input.Quantity <= 0 {
		return nil, errors.BadRequest("quantity must be positive")
	}

	receivedBy := "system"
	if sc != nil {
		receivedBy = sc.UserID
	}

	supplierBatch := input.SupplierBatch
	if supplierBatch == "" {
		supplierBatch = identifier.DefaultSupplierBatch
	}

	// Intakes without a manufacture date default to the receipt date.
	mfgDate := input.MfgDate
	if mfgDate.IsZero() {
		mfgDate = time.Now()
	}

	batch := &repository.SupplyBatch{
		BatchNumber:   s.idgen.BatchNumber(),
		LotNumber:     s.idgen.LotNumber(),
		QRCodeID:      s.idgen.QRCodeID(),
		Name:          input.Name,
		Branch:        input.Branch,
		Quantity:      input.Quantity,
		MfgDate:       mfgDate,
		ExpiryDate:    input.ExpiryDate,
		Category:      input.Category,
		Supplier:      input.Supplier,
		SupplierBatch: supplierBatch,
		ReceivedBy:    receivedBy,
	}

	ledger := &repository.IntakeLedgerFields{
		SKU:          input.SKU,
		ReorderLevel: input.ReorderLevel,
		Price:        input.Price,
		Category:     input.Category,
		Supplier:     input.Supplier,
		MonthlyUsage: input.MonthlyUsage,
	}

	newQuantity, err := s.batchRepo.Create(ctx, batch, ledger)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishBatchReceived(ctx, batch)

	s.logger.Info().
		Str("batch_number", batch.BatchNumber).
		Str("name", batch.Name).
		Str("branch", batch.Branch).
		Int("quantity", batch.Quantity).
		Msg("supply batch registered")

	return &IntakeResult{Batch: batch, NewQuantity: newQuantity}, nil
}

// ListBatches returns batches visible to the caller.
func (s *IntakeService) ListBatches(ctx context.Context) ([]repository.SupplyBatch, error) {
	return s.batchRepo.List(ctx)
}

// GetBatch returns the batch with the given batch number.
func (s *IntakeService) GetBatch(ctx context.Context, batchNumber string) (*repository.SupplyBatch, error) {
	return s.batchRepo.GetByNumber(ctx, batchNumber)
}

// Scan resolves a QR token to its batch.
func (s *IntakeService) Scan(ctx context.Context, qrCode string) (*repository.SupplyBatch, error) {
	batch, err := s.batchRepo.GetByQRCode(ctx, qrCode)
	if err != nil {
		return nil, err
	}

	sc := scope.FromContext(ctx)
	if sc != nil && !sc.CanWriteBranch(batch.Branch) {
		return nil, errors.Forbidden("batch belongs to another branch")
	}

	return batch, nil
}

// ExpiringBatches returns unexpired batches inside the expiry window.
func (s *IntakeService) ExpiringBatches(ctx context.Context, days int) ([]repository.SupplyBatch, error) {
	if days <= 0 {
		days = ExpiryWindowDays
	}
	return s.batchRepo.ListExpiringWithin(ctx, days)
}

// ExpiredBatches returns batches already past expiry.
func (s *IntakeService) ExpiredBatches(ctx context.Context) ([]repository.SupplyBatch, error) {
	return s.batchRepo.ListExpired(ctx)
}
