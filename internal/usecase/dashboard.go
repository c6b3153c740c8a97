package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinBoard/internal/domain/models"
)

// DashboardUseCase assembles the per-asset dashboard snapshot from the cycle,
// risk, and latest-price usecases.
type DashboardUseCase struct {
	cycles  *CycleSyncUseCase
	risk    *RiskMetricsUseCase
	latest  *LatestPriceUseCase
	timeout time.Duration
}

func NewDashboardUseCase(cycles *CycleSyncUseCase, risk *RiskMetricsUseCase, latest *LatestPriceUseCase) *DashboardUseCase {
	return &DashboardUseCase{cycles: cycles, risk: risk, latest: latest, timeout: 10 * time.Second}
}

type GetDashboardParams struct {
	Cycles SyncCyclesParams
	Risk   GetRiskParams
}

// GetDashboard fetches all sections concurrently. A failed section lands in
// the snapshot's Errors map rather than failing the call.
func (uc *DashboardUseCase) GetDashboard(ctx context.Context, p GetDashboardParams) (*models.DashboardSnapshot, error) {
	if p.Cycles.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.DashboardSnapshot{
		Symbol:    p.Cycles.Symbol,
		Benchmark: p.Risk.Benchmark,
		Timestamp: time.Now(),
		Errors:    map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.cycles.SyncCycles(ctx, p.Cycles)
		ch <- item{"cycles", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.risk.GetRiskMetrics(ctx, p.Risk)
		ch <- item{"risk", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.latest.GetLatestPrice(ctx, p.Cycles.Asset, p.Cycles.Symbol)
		ch <- item{"latestPrice", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "cycles":
			res.Cycles = it.val.([]models.MarketCycle)
		case "risk":
			r := it.val.(*GetRiskResult)
			risk := r.Metrics.Current
			res.Risk = &risk
		case "latestPrice":
			res.Latest = it.val.(*models.LatestPrice)
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
