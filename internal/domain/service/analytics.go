package service

import (
	"time"

	"FinBoard/internal/domain/models"
)

// CycleAnalyzer segments a normalized price series into market cycles.
type CycleAnalyzer interface {
	DetectCycles(series []models.PricePoint, p models.CycleParams) ([]models.MarketCycle, error)
	NextTrough(series []models.PricePoint, after time.Time) (time.Time, bool)
	CycleConfirmed(series []models.PricePoint, c models.MarketCycle, confirmWindow int) bool
}

// RiskAnalyzer computes valuation and trend scores and their composite over
// an asset series and its benchmark ratio series.
type RiskAnalyzer interface {
	ComputeRiskMetrics(series, ratio []models.PricePoint, cfg models.RiskConfig) (models.RiskMetrics, error)
	Bands(series []models.PricePoint, p models.FairValueParams, cutoff time.Time) ([]models.FairValueBands, error)
}
