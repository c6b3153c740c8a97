package analytics

import (
	"math"
	"testing"

	"FinBoard/internal/domain/models"
)

func TestValuationScoresAtFairValue(t *testing.T) {
	// Price pinned exactly to the curve: every deviation equals the
	// historical median, so every score is 0.5.
	p := fvParams()
	series := make([]models.PricePoint, 10)
	for i := range series {
		d := dayAt(400 + i)
		fv, err := FairValue(d, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		series[i] = models.PricePoint{Date: d, Close: fv}
	}
	scores, err := ValuationScores(series, p, series[len(series)-1].Date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range scores {
		if !approx(s, 0.5, 1e-9) {
			t.Fatalf("score[%d] = %v, want 0.5", i, s)
		}
	}
}

func TestValuationScoresOrdering(t *testing.T) {
	// Increasing deviation above fair value must rank monotonically higher.
	p := fvParams()
	offsets := []float64{-0.2, -0.1, 0, 0.1, 0.2}
	series := make([]models.PricePoint, len(offsets))
	for i, off := range offsets {
		d := dayAt(400 + i)
		fv, _ := FairValue(d, p)
		series[i] = models.PricePoint{Date: d, Close: fv * math.Exp(off)}
	}
	scores, err := ValuationScores(series, p, series[len(series)-1].Date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] <= scores[i-1] {
			t.Fatalf("scores not increasing with deviation: %v", scores)
		}
	}
	for _, s := range scores {
		if s < 0 || s > 1 {
			t.Fatalf("score out of [0,1]: %v", s)
		}
	}
	// The middle observation sits at the median deviation.
	if !approx(scores[2], 0.5, 1e-9) {
		t.Fatalf("median deviation should score 0.5, got %v", scores[2])
	}
}

func TestValuationScoresSigmaFixedPastCutoff(t *testing.T) {
	// Scores after the cutoff use the cutoff-window sigma and distribution:
	// extending the series must not change earlier scores.
	p := fvParams()
	offsets := []float64{-0.1, 0.05, -0.02, 0.08, 0.01}
	series := make([]models.PricePoint, len(offsets))
	for i, off := range offsets {
		d := dayAt(400 + i)
		fv, _ := FairValue(d, p)
		series[i] = models.PricePoint{Date: d, Close: fv * math.Exp(off)}
	}
	cut := series[2].Date
	short, err := ValuationScores(series[:3], p, cut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long, err := ValuationScores(series, p, cut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range short {
		if !approx(short[i], long[i], 1e-12) {
			t.Fatalf("score[%d] changed with future data: %v vs %v", i, short[i], long[i])
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		score float64
		val   string
		risk  string
	}{
		{0.1, "undervalued", "low"},
		{0.5, "fair", "neutral"},
		{0.9, "overvalued", "high"},
		{0.2, "fair", "neutral"},
		{0.8, "fair", "neutral"},
	}
	for _, c := range cases {
		if got := ClassifyValuation(c.score, 0.2, 0.8); got != c.val {
			t.Fatalf("ClassifyValuation(%v) = %q, want %q", c.score, got, c.val)
		}
		if got := ClassifyRisk(c.score, 0.2, 0.8); got != c.risk {
			t.Fatalf("ClassifyRisk(%v) = %q, want %q", c.score, got, c.risk)
		}
	}
}
