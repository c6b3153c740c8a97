package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type CyclesRequest struct {
	AssetType string `query:"asset" json:"asset" default:"crypto" validate:"oneof=crypto equity metal index"`
	Symbol    string `query:"symbol" json:"symbol" validate:"required"`
}

type RiskRequest struct {
	AssetType      string `query:"asset" json:"asset" default:"crypto" validate:"oneof=crypto equity metal index"`
	Symbol         string `query:"symbol" json:"symbol" validate:"required"`
	Benchmark      string `query:"benchmark" json:"benchmark"`
	BenchmarkAsset string `query:"benchmarkAsset" json:"benchmarkAsset"`
	Cutoff         string `query:"cutoff" json:"cutoff"` // YYYY-MM-DD, optional
	Bands          bool   `query:"bands" json:"bands"`
}

type LatestPriceRequest struct {
	AssetType string `query:"asset" json:"asset" default:"crypto" validate:"oneof=crypto equity metal index"`
	Symbol    string `query:"symbol" json:"symbol" validate:"required"`
}

type DashboardRequest struct {
	AssetType      string `query:"asset" json:"asset" default:"crypto" validate:"oneof=crypto equity metal index"`
	Symbol         string `query:"symbol" json:"symbol" validate:"required"`
	Benchmark      string `query:"benchmark" json:"benchmark"`
	BenchmarkAsset string `query:"benchmarkAsset" json:"benchmarkAsset"`
}

type RefreshRequest struct {
	AssetType string `json:"asset" default:"crypto" validate:"oneof=crypto equity metal index"`
	Symbol    string `json:"symbol" validate:"required"`
	Force     bool   `json:"force"`
}
