package service

import (
	"context"

	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// Compliance ratings by score.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingWarning   = "Warning"
	RatingCritical  = "Critical"
)

// ComplianceReport summarizes stock hygiene: expired batches on the shelf
// and items sitting below their reorder line both count as issues.
type ComplianceReport struct {
	Score          int      `json:"score"`
	Rating         string   `json:"rating"`
	ExpiredBatches int      `json:"expired_batches"`
	LowStockItems  int      `json:"low_stock_items"`
	Issues         []string `json:"issues"`
}

// ComplianceScore maps an issue count to a 0..100 score, five points per
// issue.
func ComplianceScore(issueCount int) int {
	score := 100 - 5*issueCount
	if score < 0 {
		return 0
	}
	return score
}

// ComplianceRating buckets a score.
func ComplianceRating(score int) string {
	switch {
	case score >= 90:
		return RatingExcellent
	case score >= 70:
		return RatingGood
	case score >= 50:
		return RatingWarning
	default:
		return RatingCritical
	}
}

// ComplianceService scores stock hygiene for the caller's visible branches.
type ComplianceService struct {
	itemRepo  *repository.ItemRepository
	batchRepo *repository.BatchRepository
	logger    *logger.Logger
}

// NewComplianceService creates a new compliance service
func NewComplianceService(
	itemRepo *repository.ItemRepository,
	batchRepo *repository.BatchRepository,
	log *logger.Logger,
) *ComplianceService {
	return &ComplianceService{
		itemRepo:  itemRepo,
		batchRepo: batchRepo,
		logger:    log,
	}
}

// Report builds the current compliance report.
func (s *ComplianceService) Report(ctx context.Context) (*ComplianceReport, error) {
	expired, err := s.batchRepo.ListExpired(ctx)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.itemRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	issues := []string{}
	for _, b := range expired {
		issues = append(issues, "expired batch "+b.BatchNumber+" of "+b.Name+" at "+b.Branch)
	}
	for _, item := range lowStock {
		issues = append(issues, item.Name+" at "+item.Branch+" below reorder level")
	}

	score := ComplianceScore(len(issues))

	return &ComplianceReport{
		Score:          score,
		Rating:         ComplianceRating(score),
		ExpiredBatches: len(expired),
		LowStockItems:  len(lowStock),
		Issues:         issues,
	}, nil
}
