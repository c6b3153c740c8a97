package analytics

import (
	"errors"
	"reflect"
	"testing"

	"FinBoard/internal/domain/models"
)

func cycleParams(drawdown float64) models.CycleParams {
	return models.CycleParams{Drawdown: drawdown, Anchor: dayAt(0)}
}

func TestDetectCyclesReferenceFixture(t *testing.T) {
	// Peak 120 confirmed once price falls to 80 (a >20% drop); the next cycle
	// starts at the 80 trough and stays open.
	series := mkSeries(100, 120, 80, 150)
	cycles, err := DetectCycles(series, cycleParams(0.20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(cycles))
	}
	first := cycles[0]
	if first.Current {
		t.Fatalf("first cycle should be confirmed")
	}
	if !first.StartDate.Equal(dayAt(0)) || !first.EndDate.Equal(dayAt(1)) {
		t.Fatalf("unexpected first cycle span: %v..%v", first.StartDate, first.EndDate)
	}
	if first.StartPrice != 100 || first.EndPrice != 120 {
		t.Fatalf("unexpected first cycle prices: %v..%v", first.StartPrice, first.EndPrice)
	}
	if first.ROI != 20 {
		t.Fatalf("expected ROI 20, got %v", first.ROI)
	}
	if first.Duration != 1 {
		t.Fatalf("expected duration 1, got %d", first.Duration)
	}
	cur := cycles[1]
	if !cur.Current {
		t.Fatalf("second cycle should be ongoing")
	}
	if !cur.StartDate.Equal(dayAt(2)) || cur.StartPrice != 80 {
		t.Fatalf("expected ongoing cycle to start at the 80 trough, got %v@%v", cur.StartPrice, cur.StartDate)
	}
	if cur.Name != CurrentCycleName {
		t.Fatalf("unexpected current cycle name %q", cur.Name)
	}
}

func TestDetectCyclesMonotoneRising(t *testing.T) {
	series := mkSeries(10, 11, 12, 13, 14, 15)
	cycles, err := DetectCycles(series, cycleParams(0.20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cycles) != 1 {
		t.Fatalf("expected exactly one cycle, got %d", len(cycles))
	}
	if !cycles[0].Current {
		t.Fatalf("rising series must yield only an open cycle")
	}
}

func TestDetectCyclesTooShort(t *testing.T) {
	cycles, err := DetectCycles(mkSeries(10), cycleParams(0.20))
	if err != nil || cycles != nil {
		t.Fatalf("expected empty result, got %v / %v", cycles, err)
	}
}

func TestDetectCyclesInvalidDrawdown(t *testing.T) {
	_, err := DetectCycles(mkSeries(10, 20), cycleParams(1.5))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// twoCycleSeries has two confirmable cycles and an open tail at 25% drawdown:
// [100,150] peak, trough 90, [90,200] peak, trough 120, tail 120..140.
func twoCycleSeries() []models.PricePoint {
	return mkSeries(100, 150, 90, 160, 200, 120, 130, 140)
}

func TestDetectCyclesTwoCyclesAndTail(t *testing.T) {
	cycles, err := DetectCycles(twoCycleSeries(), cycleParams(0.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cycles) != 3 {
		t.Fatalf("expected 3 cycles, got %d", len(cycles))
	}
	if cycles[0].EndPrice != 150 || cycles[1].EndPrice != 200 {
		t.Fatalf("unexpected peaks: %v %v", cycles[0].EndPrice, cycles[1].EndPrice)
	}
	if cycles[1].StartPrice != 90 {
		t.Fatalf("second cycle should start at the 90 trough, got %v", cycles[1].StartPrice)
	}
	if !cycles[2].Current || cycles[2].StartPrice != 120 {
		t.Fatalf("tail cycle should be open from the 120 trough")
	}
	if cycles[0].ID != 1 || cycles[1].ID != 2 || cycles[2].ID != 3 {
		t.Fatalf("cycle IDs not monotone: %d %d %d", cycles[0].ID, cycles[1].ID, cycles[2].ID)
	}
}

func TestDetectCyclesIdempotent(t *testing.T) {
	series := twoCycleSeries()
	a, err := DetectCycles(series, cycleParams(0.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := DetectCycles(series, cycleParams(0.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("detection not idempotent:\n%v\n%v", a, b)
	}
}

func TestDetectCyclesIncrementalEquivalence(t *testing.T) {
	series := twoCycleSeries()
	full, err := DetectCycles(series, cycleParams(0.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Restart from the trough following the first cycle's confirmed peak.
	trough, ok := NextTrough(series, full[0].EndDate)
	if !ok {
		t.Fatalf("expected a trough after %v", full[0].EndDate)
	}
	if !trough.Equal(dayAt(2)) {
		t.Fatalf("expected trough at %v, got %v", dayAt(2), trough)
	}
	p := cycleParams(0.25)
	p.StartFrom = &trough
	p.BaseID = full[0].ID + 1
	tail, err := DetectCycles(series, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(tail, full[1:]) {
		t.Fatalf("incremental tail differs from full detection:\n%v\n%v", tail, full[1:])
	}
}

func TestNextTroughNothingAfterPeak(t *testing.T) {
	series := mkSeries(100, 120)
	if _, ok := NextTrough(series, dayAt(1)); ok {
		t.Fatalf("expected no trough after the last observation")
	}
}

func TestCycleConfirmed(t *testing.T) {
	series := twoCycleSeries()
	cycles, err := DetectCycles(series, cycleParams(0.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 6 observations follow the first cycle's end at index 1.
	if !CycleConfirmed(series, cycles[0], 2) {
		t.Fatalf("first cycle should be confirmed with window 2")
	}
	if CycleConfirmed(series, cycles[0], 6) {
		t.Fatalf("first cycle should not be confirmed with window 6")
	}
	if CycleConfirmed(series, cycles[2], 1) {
		t.Fatalf("ongoing cycle must never be confirmed")
	}
}
