package analytics

import (
	"fmt"
	"time"

	"FinBoard/internal/domain/models"
)

// DefaultConfirmWindow is how many trading observations must pass after a
// cycle's end before the peak is trusted as a true cycle top: one trading
// year. Peaks younger than this can still be exceeded.
const DefaultConfirmWindow = 252

// CurrentCycleName labels the trailing cycle whose peak is unconfirmed.
const CurrentCycleName = "Current Cycle"

// DetectCycles partitions a normalized series into trough-to-peak bull
// cycles. Scanning walks forward tracking the running maximum; once price
// declines from it by the drawdown threshold the peak is confirmed as a cycle
// end, the lowest point before price recovers past that peak becomes the next
// cycle's start, and scanning resumes there. The tail after the last trough
// is reported as an ongoing cycle with Current=true.
//
// Insufficient data to identify any trough/peak pair yields an empty result,
// not an error; errors are reserved for malformed input.
func DetectCycles(series []models.PricePoint, p models.CycleParams) ([]models.MarketCycle, error) {
	if p.Drawdown <= 0 || p.Drawdown >= 1 {
		return nil, fmt.Errorf("drawdown %v out of (0,1): %w", p.Drawdown, ErrInvalidInput)
	}
	if err := validateSeries(series); err != nil {
		return nil, err
	}

	scanFrom := p.Anchor
	if p.StartFrom != nil {
		scanFrom = *p.StartFrom
	}
	start := searchDate(series, day(scanFrom))
	n := len(series)
	if n-start < 2 {
		return nil, nil
	}

	baseID := p.BaseID
	if baseID <= 0 {
		baseID = 1
	}

	var cycles []models.MarketCycle
	cycleStart := start
	peak := start
	i := start + 1
	for i < n {
		if series[i].Close > series[peak].Close {
			peak = i
			i++
			continue
		}
		if series[i].Close <= series[peak].Close*(1-p.Drawdown) {
			// Drawdown breached: the running maximum is confirmed as this
			// cycle's end.
			cycles = append(cycles, newCycle(series, cycleStart, peak, baseID+len(cycles), false))
			trough := troughAfter(series, peak)
			if trough >= n-1 {
				// The trough sits on the last observation; no tail remains to
				// open the next cycle yet.
				return cycles, nil
			}
			cycleStart = trough
			peak = trough
			i = trough + 1
			continue
		}
		i++
	}

	// Ongoing cycle: from the last trough (or scan start) to the last
	// observation, peak not yet confirmed. Never persisted.
	if cycleStart < n-1 {
		cycles = append(cycles, newCycle(series, cycleStart, n-1, baseID+len(cycles), true))
	}
	return cycles, nil
}

// NextTrough finds the start of the cycle following a confirmed peak: the
// lowest observation after the peak date before price recovers past the peak.
// Used by callers to restart incremental detection after the last persisted
// cycle. Returns false when the peak date is absent or nothing follows it.
func NextTrough(series []models.PricePoint, after time.Time) (time.Time, bool) {
	if validateSeries(series) != nil {
		return time.Time{}, false
	}
	idx := searchDate(series, day(after))
	if idx >= len(series)-1 {
		return time.Time{}, false
	}
	t := troughAfter(series, idx)
	return series[t].Date, true
}

// CycleConfirmed reports whether enough trading observations exist after the
// cycle's end for it to be persisted. Ongoing cycles are never confirmed.
func CycleConfirmed(series []models.PricePoint, c models.MarketCycle, confirmWindow int) bool {
	if c.Current {
		return false
	}
	if confirmWindow <= 0 {
		confirmWindow = DefaultConfirmWindow
	}
	idx := searchDate(series, day(c.EndDate).AddDate(0, 0, 1))
	return len(series)-idx > confirmWindow
}

// troughAfter returns the index of the lowest close in (peak, recovery),
// where recovery is the first observation exceeding the peak close (or the
// series end). An immediate recovery yields the first point after the peak.
func troughAfter(series []models.PricePoint, peak int) int {
	min := peak + 1
	for j := peak + 1; j < len(series) && series[j].Close <= series[peak].Close; j++ {
		if series[j].Close < series[min].Close {
			min = j
		}
	}
	return min
}

func newCycle(series []models.PricePoint, start, end, id int, current bool) models.MarketCycle {
	name := fmt.Sprintf("Cycle %d", id)
	if current {
		name = CurrentCycleName
	}
	sp := series[start].Close
	ep := series[end].Close
	return models.MarketCycle{
		ID:         id,
		Name:       name,
		StartDate:  series[start].Date,
		EndDate:    series[end].Date,
		StartPrice: sp,
		EndPrice:   ep,
		ROI:        (ep - sp) / sp * 100,
		Duration:   end - start,
		Current:    current,
	}
}
