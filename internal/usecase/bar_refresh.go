package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "FinBoard/internal/domain/repository"
	"FinBoard/pkg/logger"
)

// BarRefreshUseCase pulls daily bars from the upstream market-data APIs into
// the store. Refreshes are incremental: only bars newer than the latest
// stored date are fetched.
type BarRefreshUseCase struct {
	bars    domrepo.BarStore
	sources map[domrepo.AssetType]domrepo.BarSource
	metrics domrepo.Metrics
	logger  *logger.Logger
}

func NewBarRefreshUseCase(bars domrepo.BarStore, sources map[domrepo.AssetType]domrepo.BarSource, metrics domrepo.Metrics, lgr *logger.Logger) *BarRefreshUseCase {
	return &BarRefreshUseCase{bars: bars, sources: sources, metrics: metrics, logger: lgr}
}

// RefreshTarget identifies one symbol to refresh.
type RefreshTarget struct {
	Asset  domrepo.AssetType `json:"asset"`
	Symbol string            `json:"symbol"`
}

// RefreshSymbol updates one symbol's stored history and returns the number of
// bars written. A symbol with no stored history is backfilled in full.
func (uc *BarRefreshUseCase) RefreshSymbol(ctx context.Context, t RefreshTarget) (int, error) {
	if t.Symbol == "" {
		return 0, fmt.Errorf("symbol required")
	}
	src, ok := uc.sources[t.Asset]
	if !ok {
		return 0, fmt.Errorf("no market data source for asset type %q", t.Asset)
	}

	var since time.Time
	latest, err := uc.bars.LatestBar(ctx, t.Asset, t.Symbol)
	if err != nil {
		return 0, fmt.Errorf("latest bar %s: %w", t.Symbol, err)
	}
	if latest != nil {
		since = latest.Date
	}

	start := time.Now()
	fresh, err := src.FetchDaily(ctx, t.Symbol, since)
	if err != nil {
		uc.metrics.RecordError("refresh_fetch")
		return 0, fmt.Errorf("fetch %s: %w", t.Symbol, err)
	}
	uc.metrics.RecordLatency("refresh_fetch", time.Since(start).Seconds())
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := uc.bars.StoreBars(ctx, t.Asset, t.Symbol, fresh); err != nil {
		uc.metrics.RecordError("refresh_store")
		return 0, fmt.Errorf("store %s: %w", t.Symbol, err)
	}
	uc.metrics.RecordMessageSent("clickhouse", t.Symbol)
	return len(fresh), nil
}

// RefreshAll updates every target, logging and skipping failures so one bad
// symbol never fails the batch. Returns the number of symbols updated.
func (uc *BarRefreshUseCase) RefreshAll(ctx context.Context, targets []RefreshTarget) int {
	updated := 0
	for _, t := range targets {
		select {
		case <-ctx.Done():
			return updated
		default:
		}
		n, err := uc.RefreshSymbol(ctx, t)
		if err != nil {
			uc.logger.Error("bar refresh failed",
				logger.String("asset", string(t.Asset)),
				logger.String("symbol", t.Symbol),
				logger.Error(err))
			continue
		}
		if n > 0 {
			uc.logger.Info("bars refreshed",
				logger.String("symbol", t.Symbol),
				logger.Int("bars", n))
			updated++
		}
	}
	return updated
}
