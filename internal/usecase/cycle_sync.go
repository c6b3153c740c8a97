package usecase

import (
	"context"
	"fmt"
	"time"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	domsvc "FinBoard/internal/domain/service"
	"FinBoard/internal/services/analytics"
)

// DefaultDrawdown confirms a cycle peak after a 30% decline.
const DefaultDrawdown = 0.30

// CycleSyncUseCase runs incremental cycle detection over stored price history
// and persists cycles whose confirmation window has elapsed. Detection never
// rescans persisted cycles: it restarts from the trough following the last
// saved peak, so prior results are immutable.
type CycleSyncUseCase struct {
	bars     domrepo.BarStore
	cycles   domrepo.CycleStore
	analyzer domsvc.CycleAnalyzer
	metrics  domrepo.Metrics
}

func NewCycleSyncUseCase(bars domrepo.BarStore, cycles domrepo.CycleStore, analyzer domsvc.CycleAnalyzer, metrics domrepo.Metrics) *CycleSyncUseCase {
	return &CycleSyncUseCase{bars: bars, cycles: cycles, analyzer: analyzer, metrics: metrics}
}

type SyncCyclesParams struct {
	Asset         domrepo.AssetType
	Symbol        string
	Drawdown      float64
	Anchor        time.Time
	ConfirmWindow int
}

// SyncCycles returns the full cycle history for a symbol: previously saved
// cycles followed by freshly detected ones, persisting any fresh cycle that
// has aged past the confirmation window.
func (uc *CycleSyncUseCase) SyncCycles(ctx context.Context, p SyncCyclesParams) ([]models.MarketCycle, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required: %w", analytics.ErrInvalidInput)
	}
	if p.Drawdown == 0 {
		p.Drawdown = DefaultDrawdown
	}

	series, err := loadSeries(ctx, uc.bars, p.Asset, p.Symbol, p.Anchor)
	if err != nil {
		return nil, err
	}

	saved, err := uc.cycles.SavedCycles(ctx, p.Asset, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("load saved cycles: %w", err)
	}

	params := models.CycleParams{
		Drawdown:      p.Drawdown,
		Anchor:        p.Anchor,
		ConfirmWindow: p.ConfirmWindow,
	}
	if len(saved) > 0 {
		last := saved[len(saved)-1]
		trough, ok := uc.analyzer.NextTrough(series, last.EndDate)
		if !ok {
			// No observations beyond the last saved peak yet.
			return saved, nil
		}
		params.StartFrom = &trough
		params.BaseID = last.ID + 1
	}

	fresh, err := uc.analyzer.DetectCycles(series, params)
	if err != nil {
		return nil, fmt.Errorf("detect cycles: %w", err)
	}

	for _, c := range fresh {
		if !uc.analyzer.CycleConfirmed(series, c, p.ConfirmWindow) {
			continue
		}
		if err := uc.cycles.SaveCycle(ctx, p.Asset, p.Symbol, c); err != nil {
			uc.metrics.RecordError("cycle_save")
			return nil, fmt.Errorf("save cycle %d: %w", c.ID, err)
		}
	}

	return append(saved, fresh...), nil
}

// loadSeries fetches stored bars from the given date onward and normalizes
// them into a close-only series.
func loadSeries(ctx context.Context, store domrepo.BarStore, asset domrepo.AssetType, symbol string, from time.Time) ([]models.PricePoint, error) {
	bars, err := store.Bars(ctx, asset, symbol, from, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	points := make([]models.PricePoint, len(bars))
	for i, b := range bars {
		points[i] = b.Point()
	}
	series, err := analytics.Normalize(points)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", symbol, err)
	}
	return series, nil
}
