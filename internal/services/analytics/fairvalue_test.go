package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"FinBoard/internal/domain/models"
)

func fvParams() models.FairValueParams {
	return models.FairValueParams{
		BasePrice:   100,
		BaseCoeff:   0,
		GrowthCoeff: 2,
		MainMult:    1,
		UpperMult:   2,
		LowerMult:   0.5,
		Origin:      dayAt(0),
	}
}

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestFairValueOneYearOut(t *testing.T) {
	// yearsSince = 1 makes the growth term vanish: fair = MainMult*BasePrice.
	oneYear := dayAt(0).Add(time.Duration(hoursPerYear * float64(time.Hour)))
	fv, err := FairValue(oneYear, fvParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(fv, 100, 1e-9) {
		t.Fatalf("expected 100, got %v", fv)
	}

	p := fvParams()
	p.MainMult = 2
	fv, err = FairValue(oneYear, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(fv, 200, 1e-9) {
		t.Fatalf("expected 200, got %v", fv)
	}
}

func TestFairValueClampsBeforeOrigin(t *testing.T) {
	p := fvParams()
	atOrigin, err := FairValue(p.Origin, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, err := FairValue(p.Origin.AddDate(-1, 0, 0), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 100 * math.Exp(2*math.Log(minYears))
	if !approx(atOrigin, want, 1e-9) || !approx(before, want, 1e-9) {
		t.Fatalf("expected clamp to %v, got %v / %v", want, atOrigin, before)
	}
}

func TestFairValueRejectsBadParams(t *testing.T) {
	p := fvParams()
	p.BasePrice = 0
	if _, err := FairValue(dayAt(10), p); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBandsSigmaFromResiduals(t *testing.T) {
	p := fvParams()
	// Closes sit at fair*exp(-r), fair, fair*exp(+r): the residual sample has
	// mean 0 and standard deviation r.
	const r = 0.1
	series := make([]models.PricePoint, 3)
	offsets := []float64{-r, 0, r}
	for i, off := range offsets {
		d := dayAt(400 + i)
		fv, err := FairValue(d, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		series[i] = models.PricePoint{Date: d, Close: fv * math.Exp(off)}
	}
	bands, err := Bands(series, p, series[2].Date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bands) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(bands))
	}
	for i, b := range bands {
		fv, _ := FairValue(series[i].Date, p)
		if !approx(b.Fair, fv, 1e-9) {
			t.Fatalf("row %d: fair %v != %v", i, b.Fair, fv)
		}
		if !approx(b.Upper, fv*2, 1e-9) || !approx(b.Lower, fv*0.5, 1e-9) {
			t.Fatalf("row %d: parametric bands off", i)
		}
		if !approx(b.Upper2s, fv*math.Exp(2*r), 1e-6) {
			t.Fatalf("row %d: upper2s %v, want %v", i, b.Upper2s, fv*math.Exp(2*r))
		}
		if !approx(b.Lower2s, fv*math.Exp(-2*r), 1e-6) {
			t.Fatalf("row %d: lower2s %v, want %v", i, b.Lower2s, fv*math.Exp(-2*r))
		}
	}
}

func TestBandsCutoffExcludesFutureData(t *testing.T) {
	p := fvParams()
	series := make([]models.PricePoint, 4)
	for i := range series {
		d := dayAt(400 + i)
		fv, _ := FairValue(d, p)
		series[i] = models.PricePoint{Date: d, Close: fv * math.Exp(0.05*float64(i%2*2-1))}
	}
	// A wildly deviating point after the cutoff must not widen the bands.
	series[3].Close *= 100

	cut := series[2].Date
	narrow, err := Bands(series[:3], p, cut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	withFuture, err := Bands(series, p, cut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(narrow[0].Upper2s, withFuture[0].Upper2s, 1e-9) {
		t.Fatalf("future data leaked into sigma: %v vs %v", narrow[0].Upper2s, withFuture[0].Upper2s)
	}
}

func TestBandsInsufficientHistory(t *testing.T) {
	p := fvParams()
	series := mkSeries(100, 110, 120)
	// Cutoff before the series start leaves no residuals to fit on.
	_, err := Bands(series, p, dayAt(-10))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}
