package models

import "time"

// TrendParams configures extreme-point detection and trendline fitting on a
// ratio series.
type TrendParams struct {
	// Window is the neighborhood (in trading observations, each side) within
	// which a point must be a strict extremum to count as a peak or trough.
	Window int
	// MinGapFrac is the minimum separation between the upper and lower
	// trendlines, as a fraction of the ratio series' overall range.
	MinGapFrac float64
}

// RiskConfig bundles everything the composite risk computation needs.
type RiskConfig struct {
	FairValue  FairValueParams
	Cutoff     time.Time // residual/percentile fitting window ends here
	Trend      TrendParams
	SValWeight float64
	SRelWeight float64
	// Classification cut points on [0,1] scores.
	LowThreshold  float64
	HighThreshold float64
}

// RiskState is the snapshot of all scores at one date.
type RiskState struct {
	Date           time.Time `json:"date"`
	SVal           float64   `json:"sVal"`
	SRel           float64   `json:"sRel"`
	RiskEq         float64   `json:"riskEq"`
	Classification string    `json:"classification"`
}

// RiskMetrics carries the full per-date score series plus the current-state
// snapshot at the last date. All three score slices align with Dates.
type RiskMetrics struct {
	Dates   []time.Time `json:"dates"`
	SVal    []float64   `json:"sVal"`
	SRel    []float64   `json:"sRel"`
	RiskEq  []float64   `json:"riskEq"`
	Current RiskState   `json:"currentState"`
}
