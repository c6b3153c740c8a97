package analytics

import (
	"fmt"
	"time"

	"FinBoard/internal/domain/models"
	domsvc "FinBoard/internal/domain/service"
)

// Default composite weights and classification cut points.
const (
	DefaultSValWeight    = 0.5
	DefaultSRelWeight    = 0.5
	DefaultLowThreshold  = 0.2
	DefaultHighThreshold = 0.8
)

// ComputeRiskMetrics runs the full valuation pipeline: percentile-normalized
// fair-value deviation (S_val), trendline position of the benchmark ratio
// (S_rel), and their weighted composite, one entry per date present in both
// inputs. The snapshot at the last date is reported as the current state.
func ComputeRiskMetrics(series, ratio []models.PricePoint, cfg models.RiskConfig) (models.RiskMetrics, error) {
	var rm models.RiskMetrics

	cutoff := cfg.Cutoff
	if cutoff.IsZero() && len(series) > 0 {
		cutoff = series[len(series)-1].Date
	}
	sVal, err := ValuationScores(series, cfg.FairValue, cutoff)
	if err != nil {
		return rm, fmt.Errorf("valuation: %w", err)
	}
	trend, err := TrendScores(ratio, cfg.Trend)
	if err != nil {
		return rm, fmt.Errorf("relative trend: %w", err)
	}

	wVal, wRel := cfg.SValWeight, cfg.SRelWeight
	if wVal == 0 && wRel == 0 {
		wVal, wRel = DefaultSValWeight, DefaultSRelWeight
	}
	low, high := cfg.LowThreshold, cfg.HighThreshold
	if low == 0 && high == 0 {
		low, high = DefaultLowThreshold, DefaultHighThreshold
	}

	valByDate := make(map[time.Time]float64, len(series))
	for i, pt := range series {
		valByDate[pt.Date] = sVal[i]
	}

	for i, d := range trend.Dates {
		sv, ok := valByDate[d]
		if !ok {
			continue
		}
		sr := trend.Scores[i]
		rm.Dates = append(rm.Dates, d)
		rm.SVal = append(rm.SVal, sv)
		rm.SRel = append(rm.SRel, sr)
		rm.RiskEq = append(rm.RiskEq, wVal*sv+wRel*sr)
	}
	if len(rm.Dates) == 0 {
		return rm, fmt.Errorf("risk metrics: no overlapping dates: %w", ErrInsufficientData)
	}

	last := len(rm.Dates) - 1
	rm.Current = models.RiskState{
		Date:           rm.Dates[last],
		SVal:           rm.SVal[last],
		SRel:           rm.SRel[last],
		RiskEq:         rm.RiskEq[last],
		Classification: ClassifyRisk(rm.RiskEq[last], low, high),
	}
	return rm, nil
}

// Engine bundles the pure analytics functions behind the domain service
// interfaces so callers receive them by injection rather than reaching for
// package globals.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

func (*Engine) DetectCycles(series []models.PricePoint, p models.CycleParams) ([]models.MarketCycle, error) {
	return DetectCycles(series, p)
}

func (*Engine) NextTrough(series []models.PricePoint, after time.Time) (time.Time, bool) {
	return NextTrough(series, after)
}

func (*Engine) CycleConfirmed(series []models.PricePoint, c models.MarketCycle, confirmWindow int) bool {
	return CycleConfirmed(series, c, confirmWindow)
}

func (*Engine) ComputeRiskMetrics(series, ratio []models.PricePoint, cfg models.RiskConfig) (models.RiskMetrics, error) {
	return ComputeRiskMetrics(series, ratio, cfg)
}

func (*Engine) Bands(series []models.PricePoint, p models.FairValueParams, cutoff time.Time) ([]models.FairValueBands, error) {
	return Bands(series, p, cutoff)
}

var (
	_ domsvc.CycleAnalyzer = (*Engine)(nil)
	_ domsvc.RiskAnalyzer  = (*Engine)(nil)
)
