package models

import "time"

// FairValueParams are the fitted constants of the log-regression fair-value
// curve for one asset:
//
//	ln(fair(t)) = ln(BasePrice) + BaseCoeff + GrowthCoeff*ln(yearsSince(Origin, t))
//	fair(t)     = MainMult * exp(ln(fair(t)))
type FairValueParams struct {
	BasePrice   float64
	BaseCoeff   float64
	GrowthCoeff float64
	MainMult    float64
	UpperMult   float64
	LowerMult   float64
	Origin      time.Time
}

// FairValueBands is the per-date band envelope around the fair-value curve.
// Upper/Lower are the parametric multiplier bands; the sigma bands derive
// from the standard deviation of log residuals up to the fitting cutoff.
type FairValueBands struct {
	Date    time.Time `json:"date"`
	Fair    float64   `json:"fair"`
	Upper   float64   `json:"upper"`
	Lower   float64   `json:"lower"`
	Upper1s float64   `json:"upper1s"`
	Lower1s float64   `json:"lower1s"`
	Upper2s float64   `json:"upper2s"`
	Lower2s float64   `json:"lower2s"`
}
