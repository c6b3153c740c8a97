package analytics

import (
	"fmt"
	"math"
	"time"

	"FinBoard/internal/domain/models"
)

// minYears clamps elapsed time for dates at or before the curve origin so the
// log stays defined: one trading day.
const minYears = 1.0 / 252.0

const hoursPerYear = 24 * 365.25

func yearsSince(origin, t time.Time) float64 {
	y := t.Sub(origin).Hours() / hoursPerYear
	if y < minYears {
		return minYears
	}
	return y
}

func validateFairValueParams(p models.FairValueParams) error {
	if p.BasePrice <= 0 || p.MainMult <= 0 {
		return fmt.Errorf("fair value params: base price and main multiplier must be positive: %w", ErrInvalidInput)
	}
	if p.UpperMult <= 0 || p.LowerMult <= 0 {
		return fmt.Errorf("fair value params: band multipliers must be positive: %w", ErrInvalidInput)
	}
	if p.Origin.IsZero() {
		return fmt.Errorf("fair value params: origin date required: %w", ErrInvalidInput)
	}
	return nil
}

// FairValue evaluates the log-regression fair-value curve at t:
//
//	fair(t) = MainMult * exp(ln(BasePrice) + BaseCoeff + GrowthCoeff*ln(years))
func FairValue(t time.Time, p models.FairValueParams) (float64, error) {
	if err := validateFairValueParams(p); err != nil {
		return 0, err
	}
	return fairValue(t, p), nil
}

func fairValue(t time.Time, p models.FairValueParams) float64 {
	lnFair := math.Log(p.BasePrice) + p.BaseCoeff + p.GrowthCoeff*math.Log(yearsSince(p.Origin, t))
	return p.MainMult * math.Exp(lnFair)
}

// residualSigma is the sample standard deviation of log residuals
// ln(price) - ln(fair) over observations up to the cutoff. Data after the
// cutoff never enters the estimate, so the bands carry no look-ahead bias.
func residualSigma(series []models.PricePoint, p models.FairValueParams, cutoff time.Time) (float64, error) {
	var (
		sum, sum2 float64
		n         int
	)
	end := day(cutoff).AddDate(0, 0, 1)
	for _, pt := range series {
		if !pt.Date.Before(end) {
			break
		}
		r := math.Log(pt.Close) - math.Log(fairValue(pt.Date, p))
		sum += r
		sum2 += r * r
		n++
	}
	if n < 2 {
		return 0, fmt.Errorf("residual sigma: %d points before cutoff: %w", n, ErrInsufficientData)
	}
	mean := sum / float64(n)
	variance := (sum2 - float64(n)*mean*mean) / float64(n-1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance), nil
}

// Bands computes the per-date envelope around the fair-value curve: the
// parametric multiplier bands plus the 1-sigma and 2-sigma statistical bands
// derived from log residuals up to the cutoff.
func Bands(series []models.PricePoint, p models.FairValueParams, cutoff time.Time) ([]models.FairValueBands, error) {
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
	e1 := math.Exp(sigma)
	e2 := math.Exp(2 * sigma)
	out := make([]models.FairValueBands, len(series))
	for i, pt := range series {
		fv := fairValue(pt.Date, p)
		out[i] = models.FairValueBands{
			Date:    pt.Date,
			Fair:    fv,
			Upper:   fv * p.UpperMult,
			Lower:   fv * p.LowerMult,
			Upper1s: fv * e1,
			Lower1s: fv / e1,
			Upper2s: fv * e2,
			Lower2s: fv / e2,
		}
	}
	return out, nil
}
