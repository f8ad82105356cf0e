package service

import (
	"context"
	"math"

	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/logger"
)

// SmoothingFactor weights recent consumption in the forecast. Higher
// values react faster to demand shifts.
const SmoothingFactor = 0.3

// Forecast is a demand projection for one item.
type Forecast struct {
	Name            string  `json:"name"`
	Branch          string  `json:"branch"`
	DailyForecast   float64 `json:"daily_forecast"`
	WeeklyForecast  float64 `json:"weekly_forecast"`
	MonthlyForecast float64 `json:"monthly_forecast"`
	SampleDays      int     `json:"sample_days"`
	Method          string  `json:"method"`
}

// Forecast methods
const (
	MethodExponentialSmoothing = "exponential_smoothing"
	MethodMean                 = "mean"
)

// SmoothSeries runs single exponential smoothing over a consumption
// series and returns the next-step forecast. Fewer than three data points
// is too thin to smooth; the plain mean is returned instead.
func SmoothSeries(series []float64, alpha float64) (float64, string) {
	if len(series) == 0 {
		return 0, MethodMean
	}

	if len(series) < 3 {
		var sum float64
		for _, v := range series {
			sum += v
		}
		return sum / float64(len(series)), MethodMean
	}

	level := series[0]
	for _, v := range series[1:] {
		level = alpha*v + (1-alpha)*level
	}
	return level, MethodExponentialSmoothing
}

// ForecastService projects demand from the movement log.
type ForecastService struct {
	movementRepo *repository.MovementRepository
	logger       *logger.Logger
}

// NewForecastService creates a new forecast service
func NewForecastService(movementRepo *repository.MovementRepository, log *logger.Logger) *ForecastService {
	return &ForecastService{
		movementRepo: movementRepo,
		logger:       log,
	}
}

// DemandForecast projects daily demand for one item from its trailing
// 30 days of outbound movements.
func (s *ForecastService) DemandForecast(ctx context.Context, name, branch string) (*Forecast, error) {
	buckets, err := s.movementRepo.DailyConsumption(ctx, name, branch, 30)
	if err != nil {
		return nil, err
	}

	series := make([]float64, len(buckets))
	for i, b := range buckets {
		series[i] = float64(b.Quantity)
	}

	daily, method := SmoothSeries(series, SmoothingFactor)
	daily = math.Max(daily, 0)

	return &Forecast{
		Name:            name,
		Branch:          branch,
		DailyForecast:   daily,
		WeeklyForecast:  daily * 7,
		MonthlyForecast: daily * 30,
		SampleDays:      len(series),
		Method:          method,
	}, nil
}
