package analytics

import (
	"errors"
	"testing"

	"FinBoard/internal/domain/models"
)

func trendParams(window int) models.TrendParams {
	return models.TrendParams{Window: window, MinGapFrac: 0.10}
}

// oscillating builds a sawtooth ratio series with clear alternating extremes.
func oscillating() []models.PricePoint {
	return mkSeries(1, 3, 1.1, 3.2, 1.2, 3.4, 1.3, 3.6, 1.4, 3.8, 1.5)
}

func TestTrendScoresWithinUnitInterval(t *testing.T) {
	res, err := TrendScores(oscillating(), trendParams(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Scores) != 11 {
		t.Fatalf("expected a score per date, got %d", len(res.Scores))
	}
	for i, s := range res.Scores {
		if s < 0 || s > 1 {
			t.Fatalf("score[%d] = %v out of [0,1]", i, s)
		}
	}
	if len(res.PeakDates) == 0 || len(res.TroughDates) == 0 {
		t.Fatalf("expected selected extremes, got %d peaks / %d troughs", len(res.PeakDates), len(res.TroughDates))
	}
}

func TestTrendScoresClampsOutliers(t *testing.T) {
	series := oscillating()
	// Spike far above every peak; the score must clamp at 1, and a crash far
	// below every trough must clamp at 0.
	series = append(series,
		models.PricePoint{Date: dayAt(len(series)), Close: 50},
		models.PricePoint{Date: dayAt(len(series) + 1), Close: 0.01},
	)
	res, err := TrendScores(series, trendParams(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := len(res.Scores)
	if res.Scores[n-2] != 1 {
		t.Fatalf("spike should clamp to 1, got %v", res.Scores[n-2])
	}
	if res.Scores[n-1] != 0 {
		t.Fatalf("crash should clamp to 0, got %v", res.Scores[n-1])
	}
}

func TestTrendScoresMinimumSeparation(t *testing.T) {
	// Peaks and troughs nearly coincide; without the minimum gap the bands
	// would collapse and scores would blow up.
	series := mkSeries(1.00, 1.02, 1.00, 1.02, 1.00, 1.02, 1.00, 5.0, 0.5)
	res, err := TrendScores(series, trendParams(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range res.Scores {
		if s < 0 || s > 1 {
			t.Fatalf("score[%d] = %v out of [0,1]", i, s)
		}
	}
}

func TestTrendScoresTooShort(t *testing.T) {
	_, err := TrendScores(mkSeries(1, 2), trendParams(1))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestFitLineExact(t *testing.T) {
	// Points on y = 2 + 0.5x must recover slope and intercept exactly.
	series := make([]models.PricePoint, 4)
	for i := range series {
		series[i] = models.PricePoint{Date: dayAt(i * 2), Close: 2 + 0.5*float64(i*2)}
	}
	x := func(i int) float64 { return series[i].Date.Sub(series[0].Date).Hours() / 24 }
	line, err := fitLine(series, []int{0, 1, 2, 3}, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(line.Slope, 0.5, 1e-12) || !approx(line.Intercept, 2, 1e-12) {
		t.Fatalf("got slope %v intercept %v", line.Slope, line.Intercept)
	}
}

func TestFitLineSinglePointFallback(t *testing.T) {
	series := mkSeries(7)
	x := func(i int) float64 { return 0 }
	line, err := fitLine(series, []int{0}, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Slope != 0 || line.Intercept != 7 {
		t.Fatalf("expected constant line at 7, got %+v", line)
	}
}

func TestFitLineDegenerate(t *testing.T) {
	series := mkSeries(1, 2)
	x := func(i int) float64 { return 42 } // same x for every point
	_, err := fitLine(series, []int{0, 1}, x)
	if !errors.Is(err, ErrDegenerateFit) {
		t.Fatalf("expected ErrDegenerateFit, got %v", err)
	}
}
