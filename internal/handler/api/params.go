package api

import (
	"fmt"
	"strings"
	"time"

	models "FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/usecase"
	xhttp "FinBoard/pkg/http"
)

const dateLayout = "2006-01-02"

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// cycleParams resolves per-asset cycle detection parameters from config,
// falling back to defaults when the symbol is not configured.
func (h *DashboardHandler) cycleParams(req *models.CyclesRequest) usecase.SyncCyclesParams {
	asset := domrepo.NormalizeAssetType(req.AssetType)
	p := usecase.SyncCyclesParams{
		Asset:         asset,
		Symbol:        normalizeSymbol(req.Symbol),
		ConfirmWindow: h.cfg.Analytics.ConfirmWindow,
	}
	ac, ok := h.cfg.Asset(string(asset), p.Symbol)
	if !ok {
		return p
	}
	p.Drawdown = ac.Drawdown
	if ac.Anchor != "" {
		if t, err := time.Parse(dateLayout, ac.Anchor); err == nil {
			p.Anchor = t.UTC()
		}
	}
	return p
}

// riskParams resolves the full risk config for a symbol. The fair-value curve
// coefficients must be configured, so an unknown symbol is an error here.
func (h *DashboardHandler) riskParams(req *models.RiskRequest) (usecase.GetRiskParams, error) {
	asset := domrepo.NormalizeAssetType(req.AssetType)
	symbol := normalizeSymbol(req.Symbol)

	ac, ok := h.cfg.Asset(string(asset), symbol)
	if !ok {
		return usecase.GetRiskParams{}, fmt.Errorf("no analytics parameters configured for %s/%s", asset, symbol)
	}

	benchmark := normalizeSymbol(req.Benchmark)
	if benchmark == "" {
		benchmark = normalizeSymbol(ac.Benchmark)
	}
	if benchmark == "" {
		return usecase.GetRiskParams{}, fmt.Errorf("benchmark required for %s", symbol)
	}
	benchAsset := req.BenchmarkAsset
	if benchAsset == "" {
		benchAsset = ac.BenchmarkAsset
	}

	origin, err := time.Parse(dateLayout, ac.FairValue.Origin)
	if err != nil {
		return usecase.GetRiskParams{}, fmt.Errorf("bad fair_value.origin for %s: %w", symbol, err)
	}

	a := h.cfg.Analytics
	p := usecase.GetRiskParams{
		Asset:          asset,
		Symbol:         symbol,
		BenchmarkAsset: domrepo.NormalizeAssetType(benchAsset),
		Benchmark:      benchmark,
		IncludeBands:   req.Bands,
		Config: models.RiskConfig{
			FairValue: models.FairValueParams{
				BasePrice:   ac.FairValue.BasePrice,
				BaseCoeff:   ac.FairValue.BaseCoeff,
				GrowthCoeff: ac.FairValue.GrowthCoeff,
				MainMult:    ac.FairValue.MainMult,
				UpperMult:   ac.FairValue.UpperMult,
				LowerMult:   ac.FairValue.LowerMult,
				Origin:      origin.UTC(),
			},
			Trend: models.TrendParams{
				Window:     a.TrendWindow,
				MinGapFrac: a.MinGapFrac,
			},
			SValWeight:    a.SValWeight,
			SRelWeight:    a.SRelWeight,
			LowThreshold:  a.LowThreshold,
			HighThreshold: a.HighThreshold,
		},
	}
	if req.Cutoff != "" {
		t, err := time.Parse(dateLayout, req.Cutoff)
		if err != nil {
			// also accept RFC3339 and unix seconds
			var ok bool
			if t, ok = xhttp.ParseTime(req.Cutoff); !ok {
				return usecase.GetRiskParams{}, fmt.Errorf("bad cutoff %q: expected YYYY-MM-DD", req.Cutoff)
			}
		}
		p.Cutoff = t.UTC()
	}
	return p, nil
}
