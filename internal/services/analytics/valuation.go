package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"FinBoard/internal/domain/models"
)

// ValuationScores maps each observation's deviation from fair value to a
// percentile rank within the historical deviation distribution.
//
// z(t) = (ln(price) - ln(fair)) / sigma, with sigma fixed from the cutoff
// window and reused for all dates. The score is the mid-rank percentile of
// z(t) among the z-values up to the cutoff: ties contribute half, so a
// degenerate all-equal distribution scores 0.5 (the historical median)
// rather than 1.
func ValuationScores(series []models.PricePoint, p models.FairValueParams, cutoff time.Time) ([]float64, error) {
	if err := validateFairValueParams(p); err != nil {
		return nil, err
	}
	if err := validateSeries(series); err != nil {
		return nil, err
	}
	sigma, err := residualSigma(series, p, cutoff)
	if err != nil {
		return nil, err
	}

	zs := make([]float64, len(series))
	for i, pt := range series {
		r := math.Log(pt.Close) - math.Log(fairValue(pt.Date, p))
		if sigma > 0 {
			zs[i] = r / sigma
		}
		// sigma == 0 leaves every z at 0: all deviations are identical and
		// each scores the median.
	}

	end := day(cutoff).AddDate(0, 0, 1)
	nHist := searchDate(series, end)
	if nHist < 2 {
		return nil, fmt.Errorf("valuation scores: %d points before cutoff: %w", nHist, ErrInsufficientData)
	}
	hist := make([]float64, nHist)
	copy(hist, zs[:nHist])
	sort.Float64s(hist)

	out := make([]float64, len(series))
	for i, z := range zs {
		out[i] = percentileRank(hist, z)
	}
	return out, nil
}

// percentileRank is the mid-rank percentile of z in the sorted sample:
// (count below + half the ties) / n.
func percentileRank(sorted []float64, z float64) float64 {
	lo := sort.SearchFloat64s(sorted, z)
	hi := sort.Search(len(sorted), func(i int) bool { return sorted[i] > z })
	return (float64(lo) + float64(hi-lo)/2) / float64(len(sorted))
}

// ClassifyValuation buckets a valuation score against the two cut points.
func ClassifyValuation(score, low, high float64) string {
	switch {
	case score < low:
		return "undervalued"
	case score > high:
		return "overvalued"
	default:
		return "fair"
	}
}

// ClassifyRisk buckets a composite risk score against the two cut points.
func ClassifyRisk(score, low, high float64) string {
	switch {
	case score < low:
		return "low"
	case score > high:
		return "high"
	default:
		return "neutral"
	}
}
