package analytics

import (
	"math"
	"testing"

	"FinBoard/internal/domain/models"
)

// riskFixture returns an asset series tracking the fair-value curve with
// alternating deviations, plus a benchmark ratio with visible oscillation.
func riskFixture() (series, ratio []models.PricePoint, cfg models.RiskConfig) {
	p := fvParams()
	offsets := []float64{-0.1, 0.1, -0.05, 0.05, -0.02, 0.02, -0.08, 0.08, -0.01, 0.01, 0}
	series = make([]models.PricePoint, len(offsets))
	for i, off := range offsets {
		d := dayAt(400 + i)
		fv, _ := FairValue(d, p)
		series[i] = models.PricePoint{Date: d, Close: fv * math.Exp(off)}
	}
	ratio = make([]models.PricePoint, len(offsets))
	base := []float64{1, 3, 1.1, 3.2, 1.2, 3.4, 1.3, 3.6, 1.4, 3.8, 1.5}
	for i := range ratio {
		ratio[i] = models.PricePoint{Date: dayAt(400 + i), Close: base[i]}
	}
	cfg = models.RiskConfig{
		FairValue: p,
		Cutoff:    series[len(series)-1].Date,
		Trend:     models.TrendParams{Window: 1, MinGapFrac: 0.10},
	}
	return series, ratio, cfg
}

func TestComputeRiskMetricsCompositeWeighting(t *testing.T) {
	series, ratio, cfg := riskFixture()
	rm, err := ComputeRiskMetrics(series, ratio, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rm.Dates) != len(series) {
		t.Fatalf("expected %d entries, got %d", len(series), len(rm.Dates))
	}

	// Under default weights the composite is the plain average of the two
	// scores, which must match recomputing the components directly.
	sVal, err := ValuationScores(series, cfg.FairValue, cfg.Cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trend, err := TrendScores(ratio, cfg.Trend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range rm.Dates {
		want := 0.5*sVal[i] + 0.5*trend.Scores[i]
		if !approx(rm.RiskEq[i], want, 1e-12) {
			t.Fatalf("riskEq[%d] = %v, want %v", i, rm.RiskEq[i], want)
		}
		if rm.RiskEq[i] < 0 || rm.RiskEq[i] > 1 {
			t.Fatalf("riskEq[%d] out of [0,1]: %v", i, rm.RiskEq[i])
		}
	}
}

func TestComputeRiskMetricsCustomWeights(t *testing.T) {
	series, ratio, cfg := riskFixture()
	cfg.SValWeight = 0.7
	cfg.SRelWeight = 0.3
	rm, err := ComputeRiskMetrics(series, ratio, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range rm.Dates {
		want := 0.7*rm.SVal[i] + 0.3*rm.SRel[i]
		if !approx(rm.RiskEq[i], want, 1e-12) {
			t.Fatalf("riskEq[%d] = %v, want %v", i, rm.RiskEq[i], want)
		}
	}
}

func TestComputeRiskMetricsCurrentState(t *testing.T) {
	series, ratio, cfg := riskFixture()
	rm, err := ComputeRiskMetrics(series, ratio, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := len(rm.Dates) - 1
	if !rm.Current.Date.Equal(rm.Dates[last]) {
		t.Fatalf("current state not at last date")
	}
	if rm.Current.RiskEq != rm.RiskEq[last] {
		t.Fatalf("current state score mismatch")
	}
	want := ClassifyRisk(rm.RiskEq[last], DefaultLowThreshold, DefaultHighThreshold)
	if rm.Current.Classification != want {
		t.Fatalf("classification %q, want %q", rm.Current.Classification, want)
	}
}

func TestComputeRiskMetricsJoinsOnSharedDates(t *testing.T) {
	series, ratio, cfg := riskFixture()
	// Put the ratio on an every-other-day grid; only dates present in both
	// inputs may appear in the output.
	for i := range ratio {
		ratio[i].Date = dayAt(400 + 2*i)
	}
	rm, err := ComputeRiskMetrics(series, ratio, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rm.Dates) != (len(series)+1)/2 {
		t.Fatalf("expected %d shared dates, got %d", (len(series)+1)/2, len(rm.Dates))
	}
}
