package service

import (
	"context"
	"time"

	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// AnalyticsSnapshot is one dashboard payload. The broadcaster publishes
// it on a fixed cadence; the KPI endpoint serves the same shape on demand.
// RecentWindowDays is the trailing window for the "new this week" counters.
const RecentWindowDays = 7

type AnalyticsSnapshot struct {
	GeneratedAt        time.Time                  `json:"generated_at"`
	TotalItems         int                        `json:"total_items"`
	NewItems7d         int                        `json:"new_items_7d"`
	Batches7d          int                        `json:"batches_7d"`
	Branches           int                        `json:"branches"`
	TotalStock         int                        `json:"total_stock"`
	TotalStockValue    float64                    `json:"total_stock_value"`
	LowStockCount      int                        `json:"low_stock_count"`
	ExpiringBatchCount int                        `json:"expiring_batch_count"`
	ExpiredBatchCount  int                        `json:"expired_batch_count"`
	PendingOrders      int                        `json:"pending_orders"`
	ActiveAlerts       int                        `json:"active_alerts"`
	CriticalAlerts     int                        `json:"critical_alerts"`
	BranchBreakdown    map[string]BranchStats     `json:"branch_breakdown"`
	WeeklyConsumption  []repository.UsageByPeriod `json:"weekly_consumption"`
	MonthlyConsumption []repository.UsageByPeriod `json:"monthly_consumption"`
	TopConsumed        []repository.TopItem       `json:"top_consumed"`
	ComplianceScore    int                        `json:"compliance_score"`
	ComplianceRating   string                     `json:"compliance_rating"`
}

// BranchStats is per-branch aggregate state.
type BranchStats struct {
	Items      int     `json:"items"`
	Stock      int     `json:"stock"`
	StockValue float64 `json:"stock_value"`
	LowStock   int     `json:"low_stock"`
}

// AnalyticsService assembles dashboard snapshots.
type AnalyticsService struct {
	itemRepo     *repository.ItemRepository
	batchRepo    *repository.BatchRepository
	orderRepo    *repository.OrderRepository
	movementRepo *repository.MovementRepository
	branchRepo   *repository.BranchRepository
	alerts       *AlertService
	compliance   *ComplianceService
	logger       *logger.Logger
	now          func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	itemRepo *repository.ItemRepository,
	batchRepo *repository.BatchRepository,
	orderRepo *repository.OrderRepository,
	movementRepo *repository.MovementRepository,
	branchRepo *repository.BranchRepository,
	alerts *AlertService,
	compliance *ComplianceService,
	log *logger.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		itemRepo:     itemRepo,
		batchRepo:    batchRepo,
		orderRepo:    orderRepo,
		movementRepo: movementRepo,
		branchRepo:   branchRepo,
		alerts:       alerts,
		compliance:   compliance,
		logger:       log,
		now:          time.Now,
	}
}

// BuildSnapshot assembles the full dashboard payload for the caller's
// visible branches.
func (s *AnalyticsService) BuildSnapshot(ctx context.Context) (*AnalyticsSnapshot, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	expiring, err := s.batchRepo.ListExpiringWithin(ctx, ExpiryWindowDays)
	if err != nil {
		return nil, err
	}

	expired, err := s.batchRepo.ListExpired(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.orderRepo.List(ctx, repository.OrderStatusPending)
	if err != nil {
		return nil, err
	}

	alerts, err := s.alerts.Active(ctx)
	if err != nil {
		return nil, err
	}

	weekly, err := s.movementRepo.WeeklyConsumption(ctx)
	if err != nil {
		return nil, err
	}

	monthly, err := s.movementRepo.MonthlyConsumption(ctx)
	if err != nil {
		return nil, err
	}

	top, err := s.movementRepo.TopConsumed(ctx, 5)
	if err != nil {
		return nil, err
	}

	report, err := s.compliance.Report(ctx)
	if err != nil {
		return nil, err
	}

	newItems, err := s.itemRepo.CountCreatedSince(ctx, RecentWindowDays)
	if err != nil {
		return nil, err
	}

	recentBatches, err := s.batchRepo.CountManufacturedSince(ctx, RecentWindowDays)
	if err != nil {
		return nil, err
	}

	branches, err := s.branchRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &AnalyticsSnapshot{
		GeneratedAt:        s.now().UTC(),
		TotalItems:         len(items),
		NewItems7d:         newItems,
		Batches7d:          recentBatches,
		Branches:           len(branches),
		ExpiringBatchCount: len(expiring),
		ExpiredBatchCount:  len(expired),
		PendingOrders:      len(pending),
		ActiveAlerts:       len(alerts),
		BranchBreakdown:    map[string]BranchStats{},
		WeeklyConsumption:  weekly,
		MonthlyConsumption: monthly,
		TopConsumed:        top,
		ComplianceScore:    report.Score,
		ComplianceRating:   report.Rating,
	}

	for i := range items {
		item := &items[i]
		snapshot.TotalStock += item.Quantity
		snapshot.TotalStockValue += float64(item.Quantity) * item.Price

		stats := snapshot.BranchBreakdown[item.Branch]
		stats.Items++
		stats.Stock += item.Quantity
		stats.StockValue += float64(item.Quantity) * item.Price
		if item.LowStock() {
			stats.LowStock++
			snapshot.LowStockCount++
		}
		snapshot.BranchBreakdown[item.Branch] = stats
	}

	for _, a := range alerts {
		if a.Severity == SeverityCritical {
			snapshot.CriticalAlerts++
		}
	}

	return snapshot, nil
}
