package service

import (
	"context"
	"math"

	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// Planning constants. Lead time falls back to the default when the item's
// supplier is unknown; safety stock equals the item's reorder level so a
// replenished branch lands comfortably above its alert line.
const (
	DefaultLeadTimeDays = 7
	CoverageExtraDays   = 7
	RiskHorizonDays     = 30
)

// Risk levels, most urgent first.
const (
	RiskCritical = "Critical"
	RiskHigh     = "High"
	RiskMedium   = "Medium"
	RiskLow      = "Low"
)

// ReplenishmentPlan is the calculator output for one ledger row.
type ReplenishmentPlan struct {
	Name              string  `json:"name"`
	Branch            string  `json:"branch"`
	Quantity          int     `json:"quantity"`
	ReorderLevel      int     `json:"reorder_level"`
	AvgDailyUsage     float64 `json:"avg_daily_usage"`
	ReorderPoint      float64 `json:"reorder_point"`
	TriggerLevel      float64 `json:"trigger_level"`
	TargetLevel       float64 `json:"target_level"`
	SuggestedQuantity int     `json:"suggested_quantity"`
	DaysOfStockLeft   float64 `json:"days_of_stock_left"`
	RiskScore         float64 `json:"risk_score"`
	RiskLevel         string  `json:"risk_level"`
	EstimatedCost     float64 `json:"estimated_cost"`
}

// ComputePlan runs the replenishment math for one item.
//
// avg daily usage is monthly usage over 30. The reorder point covers lead
// time demand plus safety stock (the reorder level). The trigger is the
// higher of the configured reorder level and the computed point, so a
// hand-tuned level is never silently lowered. The target covers lead time
// plus one extra week of demand.
func ComputePlan(item *repository.InventoryItem, leadTimeDays int) ReplenishmentPlan {
	if leadTimeDays <= 0 {
		leadTimeDays = DefaultLeadTimeDays
	}

	avgDaily := float64(item.MonthlyUsage) / 30.0
	safety := float64(item.ReorderLevel)

	// Thresholds stay fractional; only the suggested order rounds.
	reorderPoint := avgDaily*float64(leadTimeDays) + safety
	trigger := math.Max(float64(item.ReorderLevel), reorderPoint)

	target := avgDaily*float64(leadTimeDays+CoverageExtraDays) + safety
	suggested := int(math.Round(target - float64(item.Quantity)))
	if suggested < 0 {
		suggested = 0
	}

	daysLeft := daysOfStock(item.Quantity, avgDaily)
	score := riskScore(daysLeft, RiskHorizonDays)

	return ReplenishmentPlan{
		Name:              item.Name,
		Branch:            item.Branch,
		Quantity:          item.Quantity,
		ReorderLevel:      item.ReorderLevel,
		AvgDailyUsage:     avgDaily,
		ReorderPoint:      reorderPoint,
		TriggerLevel:      trigger,
		TargetLevel:       target,
		SuggestedQuantity: suggested,
		DaysOfStockLeft:   daysLeft,
		RiskScore:         score,
		RiskLevel:         riskLevel(daysLeft, score),
		EstimatedCost:     float64(suggested) * item.Price,
	}
}

// NeedsReplenishment reports whether the plan's item should be reordered.
// Items with plenty of runway and stock above their reorder level are
// excluded even if the raw score is non-zero.
func (p ReplenishmentPlan) NeedsReplenishment() bool {
	if p.DaysOfStockLeft > RiskHorizonDays && p.Quantity >= p.ReorderLevel {
		return false
	}
	return float64(p.Quantity) <= p.TriggerLevel
}

// daysOfStock returns how many days the current quantity lasts at the
// average usage rate. Zero usage means the stock never runs out.
func daysOfStock(quantity int, avgDaily float64) float64 {
	if avgDaily <= 0 {
		return math.Inf(1)
	}
	return float64(quantity) / avgDaily
}

// riskScore maps days of stock remaining onto a 0..100 urgency score.
// The ratio of the horizon to the remaining runway is capped at 2 and
// rescaled, so exhausted stock scores 100 and unlimited runway bottoms
// out at 40.
func riskScore(daysLeft float64, horizonDays float64) float64 {
	if daysLeft <= 0 {
		return 100
	}

	ratio := 0.0
	if !math.IsInf(daysLeft, 1) {
		ratio = math.Min(horizonDays/daysLeft, 2.0)
	}

	score := ratio*60 + 40
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// riskLevel buckets a plan's urgency. Days-left thresholds dominate so an
// item about to run out is always flagged regardless of score rounding.
func riskLevel(daysLeft, score float64) string {
	switch {
	case daysLeft <= 3 || score >= 90:
		return RiskCritical
	case daysLeft <= 7 || score >= 75:
		return RiskHigh
	case daysLeft <= 14 || score >= 55:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ReplenishmentService computes reorder suggestions across the ledger.
type ReplenishmentService struct {
	itemRepo     *repository.ItemRepository
	supplierRepo *repository.SupplierRepository
	logger       *logger.Logger
}

// NewReplenishmentService creates a new replenishment service
func NewReplenishmentService(
	itemRepo *repository.ItemRepository,
	supplierRepo *repository.SupplierRepository,
	log *logger.Logger,
) *ReplenishmentService {
	return &ReplenishmentService{
		itemRepo:     itemRepo,
		supplierRepo: supplierRepo,
		logger:       log,
	}
}

// Suggestions returns plans for every visible item that needs
// replenishment, most urgent first.
func (s *ReplenishmentService) Suggestions(ctx context.Context) ([]ReplenishmentPlan, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	leadTimes := s.supplierLeadTimes(ctx)

	plans := []ReplenishmentPlan{}
	for i := range items {
		lead := leadTimes[items[i].Supplier]
		plan := ComputePlan(&items[i], lead)
		if plan.NeedsReplenishment() {
			plans = append(plans, plan)
		}
	}

	sortPlansByRisk(plans)
	return plans, nil
}

// PlanFor returns the plan for a single (name, branch) pair regardless of
// whether it currently needs replenishment.
func (s *ReplenishmentService) PlanFor(ctx context.Context, name, branch string) (*ReplenishmentPlan, error) {
	item, err := s.itemRepo.Get(ctx, name, branch)
	if err != nil {
		return nil, err
	}

	leadTimes := s.supplierLeadTimes(ctx)
	plan := ComputePlan(item, leadTimes[item.Supplier])
	return &plan, nil
}

// supplierLeadTimes maps supplier name to lead time. Lookup failures fall
// back to the default lead time rather than failing the calculation.
func (s *ReplenishmentService) supplierLeadTimes(ctx context.Context) map[string]int {
	leadTimes := map[string]int{}

	suppliers, err := s.supplierRepo.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load supplier lead times, using default")
		return leadTimes
	}

	for _, sup := range suppliers {
		if sup.LeadTimeDays > 0 {
			leadTimes[sup.Name] = sup.LeadTimeDays
		}
	}

	return leadTimes
}

func sortPlansByRisk(plans []ReplenishmentPlan) {
	for i := 1; i < len(plans); i++ {
		for j := i; j > 0 && plans[j].RiskScore > plans[j-1].RiskScore; j-- {
			plans[j], plans[j-1] = plans[j-1], plans[j]
		}
	}
}
