package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	domsvc "FinBoard/internal/domain/service"
	"FinBoard/internal/services/analytics"
)

// RiskMetricsUseCase computes the composite risk view for one asset against
// its benchmark: percentile-normalized fair-value deviation, relative-trend
// position, their weighted composite, and optionally the fair-value band
// envelope.
type RiskMetricsUseCase struct {
	bars     domrepo.BarStore
	analyzer domsvc.RiskAnalyzer
	metrics  domrepo.Metrics
}

func NewRiskMetricsUseCase(bars domrepo.BarStore, analyzer domsvc.RiskAnalyzer, metrics domrepo.Metrics) *RiskMetricsUseCase {
	return &RiskMetricsUseCase{bars: bars, analyzer: analyzer, metrics: metrics}
}

type GetRiskParams struct {
	Asset          domrepo.AssetType
	Symbol         string
	BenchmarkAsset domrepo.AssetType
	Benchmark      string
	From           time.Time
	Cutoff         time.Time
	Config         models.RiskConfig
	IncludeBands   bool
}

type GetRiskResult struct {
	Symbol    string                  `json:"symbol"`
	Benchmark string                  `json:"benchmark"`
	Metrics   models.RiskMetrics      `json:"metrics"`
	Bands     []models.FairValueBands `json:"bands,omitempty"`
}

func (uc *RiskMetricsUseCase) GetRiskMetrics(ctx context.Context, p GetRiskParams) (*GetRiskResult, error) {
	if p.Symbol == "" || p.Benchmark == "" {
		return nil, fmt.Errorf("symbol and benchmark required: %w", analytics.ErrInvalidInput)
	}

	// Asset and benchmark history load independently.
	var (
		wg                  sync.WaitGroup
		series, bench       []models.PricePoint
		seriesErr, benchErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		series, seriesErr = loadSeries(ctx, uc.bars, p.Asset, p.Symbol, p.From)
	}()
	go func() {
		defer wg.Done()
		bench, benchErr = loadSeries(ctx, uc.bars, p.BenchmarkAsset, p.Benchmark, p.From)
	}()
	wg.Wait()
	if seriesErr != nil {
		return nil, seriesErr
	}
	if benchErr != nil {
		return nil, benchErr
	}

	ratio, err := analytics.RatioSeries(series, bench)
	if err != nil {
		return nil, fmt.Errorf("ratio %s/%s: %w", p.Symbol, p.Benchmark, err)
	}

	cfg := p.Config
	cfg.Cutoff = p.Cutoff
	if cfg.Cutoff.IsZero() {
		cfg.Cutoff = series[len(series)-1].Date
	}

	start := time.Now()
	rm, err := uc.analyzer.ComputeRiskMetrics(series, ratio, cfg)
	if err != nil {
		uc.metrics.RecordError("risk_compute")
		return nil, fmt.Errorf("risk metrics %s: %w", p.Symbol, err)
	}
	uc.metrics.RecordLatency("risk_compute", time.Since(start).Seconds())

	res := &GetRiskResult{Symbol: p.Symbol, Benchmark: p.Benchmark, Metrics: rm}
	if p.IncludeBands {
		bands, err := uc.analyzer.Bands(series, cfg.FairValue, cfg.Cutoff)
		if err != nil {
			return nil, fmt.Errorf("fair value bands %s: %w", p.Symbol, err)
		}
		res.Bands = bands
	}
	return res, nil
}
