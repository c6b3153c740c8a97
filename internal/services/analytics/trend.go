package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"FinBoard/internal/domain/models"
)

// Defaults for extreme detection and trendline separation.
const (
	DefaultTrendWindow = 30
	DefaultMinGapFrac  = 0.10
)

// Trendline is a linear fit of value against elapsed days since the first
// observation of the series it was fitted on.
type Trendline struct {
	Slope     float64 `json:"slope"`     // per day
	Intercept float64 `json:"intercept"` // value at day 0
}

// At evaluates the line x days after the series start.
func (l Trendline) At(x float64) float64 { return l.Intercept + l.Slope*x }

// TrendResult is the output of relative-trend scoring: one score per input
// date, the fitted trendlines, and the extreme dates they pass through.
type TrendResult struct {
	Dates       []time.Time `json:"dates"`
	Scores      []float64   `json:"scores"`
	Upper       Trendline   `json:"upperTrendline"`
	Lower       Trendline   `json:"lowerTrendline"`
	PeakDates   []time.Time `json:"peakDates"`
	TroughDates []time.Time `json:"troughDates"`
}

// TrendScores locates extremal peaks and troughs of a ratio series, fits
// linear trendlines through the most extreme of each, and scores every date
// by its position between the two lines, clamped to [0,1].
//
// Extremes are detected in log space (a point is a peak when it is a strict
// maximum within its neighborhood window); the regression and the scoring run
// in linear space. The upper line is pushed up wherever the gap between the
// lines falls below MinGapFrac of the series' overall range, which keeps the
// bands from crossing when extremes sit close together.
func TrendScores(ratio []models.PricePoint, p models.TrendParams) (TrendResult, error) {
	var res TrendResult
	if err := validateSeries(ratio); err != nil {
		return res, err
	}
	window := p.Window
	if window <= 0 {
		window = DefaultTrendWindow
	}
	gapFrac := p.MinGapFrac
	if gapFrac <= 0 {
		gapFrac = DefaultMinGapFrac
	}
	if len(ratio) < 3 {
		return res, fmt.Errorf("trend scores: %d points: %w", len(ratio), ErrInsufficientData)
	}

	logs := make([]float64, len(ratio))
	for i, pt := range ratio {
		logs[i] = math.Log(pt.Close)
	}
	peaks := localExtremes(logs, window, true)
	troughs := localExtremes(logs, window, false)
	if len(peaks) == 0 || len(troughs) == 0 {
		return res, fmt.Errorf("trend scores: no extremes in window %d: %w", window, ErrInsufficientData)
	}
	peaks = selectExtremes(logs, peaks, true)
	troughs = selectExtremes(logs, troughs, false)

	x := func(i int) float64 {
		return ratio[i].Date.Sub(ratio[0].Date).Hours() / 24
	}
	upper, err := fitLine(ratio, peaks, x)
	if err != nil {
		return res, err
	}
	lower, err := fitLine(ratio, troughs, x)
	if err != nil {
		return res, err
	}

	lo, hi := ratio[0].Close, ratio[0].Close
	for _, pt := range ratio {
		lo = math.Min(lo, pt.Close)
		hi = math.Max(hi, pt.Close)
	}
	minGap := gapFrac * (hi - lo)

	res.Upper = upper
	res.Lower = lower
	res.Dates = make([]time.Time, len(ratio))
	res.Scores = make([]float64, len(ratio))
	for i, pt := range ratio {
		xv := x(i)
		lb := lower.At(xv)
		ub := math.Max(upper.At(xv), lb+minGap)
		res.Dates[i] = pt.Date
		if ub <= lb {
			// Constant series: no range to position within.
			res.Scores[i] = 0.5
			continue
		}
		res.Scores[i] = clamp01((pt.Close - lb) / (ub - lb))
	}
	for _, i := range peaks {
		res.PeakDates = append(res.PeakDates, ratio[i].Date)
	}
	for _, i := range troughs {
		res.TroughDates = append(res.TroughDates, ratio[i].Date)
	}
	return res, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// localExtremes returns indices that are strict extrema within a neighborhood
// of `window` observations on each side, clamped at the series edges.
func localExtremes(vals []float64, window int, peaks bool) []int {
	var out []int
	for i := range vals {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi > len(vals)-1 {
			hi = len(vals) - 1
		}
		ok := true
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			if peaks && vals[j] >= vals[i] {
				ok = false
				break
			}
			if !peaks && vals[j] <= vals[i] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// selectExtremes keeps the top-N most extreme indices, N scaled to roughly a
// third of the detected count but held within [3,5] to avoid over-fitting to
// noise. The result is returned in chronological order.
func selectExtremes(vals []float64, idx []int, peaks bool) []int {
	n := len(idx) / 3
	if n < 3 {
		n = 3
	}
	if n > 5 {
		n = 5
	}
	if n >= len(idx) {
		return idx
	}
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.Slice(sorted, func(a, b int) bool {
		if peaks {
			return vals[sorted[a]] > vals[sorted[b]]
		}
		return vals[sorted[a]] < vals[sorted[b]]
	})
	sel := sorted[:n]
	sort.Ints(sel)
	return sel
}

// fitLine runs an ordinary least-squares regression of linear-space value
// against elapsed days through the given indices. A single point yields a
// constant line at its value; coincident x-values make the slope undefined.
func fitLine(series []models.PricePoint, idx []int, x func(int) float64) (Trendline, error) {
	if len(idx) == 0 {
		return Trendline{}, fmt.Errorf("fit line: no points: %w", ErrInsufficientData)
	}
	if len(idx) == 1 {
		return Trendline{Slope: 0, Intercept: series[idx[0]].Close}, nil
	}
	var sx, sy float64
	for _, i := range idx {
		sx += x(i)
		sy += series[i].Close
	}
	n := float64(len(idx))
	mx, my := sx/n, sy/n
	var sxx, sxy float64
	for _, i := range idx {
		dx := x(i) - mx
		sxx += dx * dx
		sxy += dx * (series[i].Close - my)
	}
	if sxx == 0 {
		return Trendline{}, fmt.Errorf("fit line: zero variance in time: %w", ErrDegenerateFit)
	}
	slope := sxy / sxx
	return Trendline{Slope: slope, Intercept: my - slope*mx}, nil
}
