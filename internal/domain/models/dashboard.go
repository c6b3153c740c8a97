package models

import "time"

// DashboardSnapshot is the aggregate view for one asset: cycle history, the
// current risk state, and the latest price, assembled concurrently. Sections
// that failed are reported in Errors instead of failing the whole snapshot.
type DashboardSnapshot struct {
	Symbol    string            `json:"symbol"`
	Benchmark string            `json:"benchmark,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Cycles    []MarketCycle     `json:"cycles,omitempty"`
	Risk      *RiskState        `json:"risk,omitempty"`
	Latest    *LatestPrice      `json:"latestPrice,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}
