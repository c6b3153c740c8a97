package models

import "time"

// MarketCycle is a trough-to-peak span of rising price. A cycle is detected
// once the market has drawn down past the configured threshold from its peak,
// and becomes persistable only after the confirmation window has elapsed
// (see CycleParams.ConfirmWindow). The trailing cycle of a series, whose peak
// is not yet confirmed, carries Current=true and is never persisted.
type MarketCycle struct {
	ID         int       `json:"cycleId"`
	Name       string    `json:"cycleName"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	StartPrice float64   `json:"startPrice"`
	EndPrice   float64   `json:"endPrice"`
	ROI        float64   `json:"roi"` // percent, (end-start)/start*100
	Duration   int       `json:"durationTradingDays"`
	Current    bool      `json:"current"`
}

// CycleParams configures cycle detection for one asset.
type CycleParams struct {
	// Drawdown is the fractional decline from a running peak that confirms
	// the peak as a cycle top, e.g. 0.30 for a 30% drop.
	Drawdown float64
	// Anchor is the historical date detection starts from when StartFrom is
	// unset (the earliest date the asset's trading history is meaningful).
	Anchor time.Time
	// StartFrom, when set, begins scanning at the first observation on or
	// after it. Used for incremental re-detection from the trough following
	// the last persisted cycle.
	StartFrom *time.Time
	// BaseID is the cycle ID assigned to the first emitted cycle; subsequent
	// cycles count up from it.
	BaseID int
	// ConfirmWindow is the number of trading observations that must exist
	// after a cycle's end before it is considered persistable. Zero means
	// the default of 252 (one trading year).
	ConfirmWindow int
}
