package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	models "FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	icache "FinBoard/internal/service/cache"
	"FinBoard/internal/service/metrics"
	"FinBoard/internal/service/ratelimit"
	"FinBoard/internal/services/analytics"
	"FinBoard/internal/usecase"
	pkgcache "FinBoard/pkg/cache"
	"FinBoard/pkg/config"
	xhttp "FinBoard/pkg/http"
	xlogger "FinBoard/pkg/logger"
	"FinBoard/pkg/queue"

	"github.com/labstack/echo/v4"
)

// DashboardHandler exposes the analytics API: market cycles, risk metrics,
// latest prices and the combined dashboard snapshot.
type DashboardHandler struct {
	cfg     *config.Config
	cycles  *usecase.CycleSyncUseCase
	risk    *usecase.RiskMetricsUseCase
	latest  *usecase.LatestPriceUseCase
	board   *usecase.DashboardUseCase
	refresh *usecase.BarRefreshUseCase
	bars    domrepo.BarStore
	stream  domrepo.TickStream
	queue   queue.QueueService
	cache   icache.BytesCache
	rl      *ratelimit.Limiter
	logger  *xlogger.Logger
}

func NewDashboardHandler(
	cfg *config.Config,
	cycles *usecase.CycleSyncUseCase,
	risk *usecase.RiskMetricsUseCase,
	latest *usecase.LatestPriceUseCase,
	board *usecase.DashboardUseCase,
	refresh *usecase.BarRefreshUseCase,
	bars domrepo.BarStore,
) *DashboardHandler {
	metrics.Register()
	return &DashboardHandler{
		cfg:     cfg,
		cycles:  cycles,
		risk:    risk,
		latest:  latest,
		board:   board,
		refresh: refresh,
		bars:    bars,
		rl:      ratelimit.New(),
	}
}

func (h *DashboardHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *DashboardHandler) SetLogger(l *xlogger.Logger) { h.logger = l }

// SetQueue injects the async job queue used by POST /refresh.
func (h *DashboardHandler) SetQueue(q queue.QueueService) { h.queue = q }

// SetStream lets the health endpoint report live stream connectivity.
func (h *DashboardHandler) SetStream(s domrepo.TickStream) { h.stream = s }

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/cycles", h.Cycles)
	g.GET("/risk", h.Risk)
	g.GET("/prices/latest", h.LatestPrice)
	g.GET("/dashboard", h.Dashboard)
	g.POST("/refresh", h.Refresh)
	g.GET("/health", h.Health)
}

func (h *DashboardHandler) Cycles(c echo.Context) error {
	const endpoint = "cycles"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.CyclesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, 5, 2) {
		return h.rateLimited(c, endpoint)
	}

	p := h.cycleParams(req)
	key := pkgcache.GenerateKeyWithParams("cycles", p.Asset, p.Symbol)
	if b, ok := h.cacheGet(endpoint, key); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	res, err := h.cycles.SyncCycles(c.Request().Context(), p)
	if err != nil {
		return h.analyticsError(c, endpoint, err)
	}
	h.cacheSet(endpoint, key, res, h.ttl(h.cfg.Analytics.CacheTTL.Cycles, 5*time.Minute))
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Risk(c echo.Context) error {
	const endpoint = "risk"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, 5, 2) {
		return h.rateLimited(c, endpoint)
	}

	p, err := h.riskParams(req)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	key := pkgcache.GenerateKeyWithParams("risk", p.Asset, p.Symbol, p.Benchmark, req.Cutoff)
	if p.IncludeBands {
		key += ":bands"
	}
	if b, ok := h.cacheGet(endpoint, key); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	res, err := h.risk.GetRiskMetrics(c.Request().Context(), p)
	if err != nil {
		return h.analyticsError(c, endpoint, err)
	}
	h.cacheSet(endpoint, key, res, h.ttl(h.cfg.Analytics.CacheTTL.Risk, 5*time.Minute))
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) LatestPrice(c echo.Context) error {
	const endpoint = "latest"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.LatestPriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, 20, 10) {
		return h.rateLimited(c, endpoint)
	}

	asset := domrepo.NormalizeAssetType(req.AssetType)
	symbol := normalizeSymbol(req.Symbol)
	key := pkgcache.GenerateKeyWithParams("latest", asset, symbol)
	if b, ok := h.cacheGet(endpoint, key); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	res, err := h.latest.GetLatestPrice(c.Request().Context(), asset, symbol)
	if err != nil {
		return h.analyticsError(c, endpoint, err)
	}
	h.cacheSet(endpoint, key, res, h.ttl(h.cfg.Analytics.CacheTTL.Latest, 5*time.Second))
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Dashboard(c echo.Context) error {
	const endpoint = "dashboard"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, 3, 1) {
		return h.rateLimited(c, endpoint)
	}

	riskReq := &models.RiskRequest{
		AssetType:      req.AssetType,
		Symbol:         req.Symbol,
		Benchmark:      req.Benchmark,
		BenchmarkAsset: req.BenchmarkAsset,
	}
	rp, err := h.riskParams(riskReq)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	p := usecase.GetDashboardParams{
		Cycles: h.cycleParams(&models.CyclesRequest{AssetType: req.AssetType, Symbol: req.Symbol}),
		Risk:   rp,
	}
	key := pkgcache.GenerateKeyWithParams("dashboard", p.Cycles.Asset, p.Cycles.Symbol, p.Risk.Benchmark)
	if b, ok := h.cacheGet(endpoint, key); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	res, err := h.board.GetDashboard(c.Request().Context(), p)
	if err != nil {
		return h.analyticsError(c, endpoint, err)
	}
	h.cacheSet(endpoint, key, res, h.ttl(h.cfg.Analytics.CacheTTL.Risk, 5*time.Minute))
	return xhttp.SuccessResponse(c, res)
}

// Refresh queues a historical bar refresh for one symbol. Without a queue it
// runs the refresh inline.
func (h *DashboardHandler) Refresh(c echo.Context) error {
	const endpoint = "refresh"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, 2, 1) {
		return h.rateLimited(c, endpoint)
	}

	target := usecase.RefreshTarget{
		Asset:  domrepo.NormalizeAssetType(req.AssetType),
		Symbol: normalizeSymbol(req.Symbol),
	}
	if h.queue != nil && !req.Force {
		if err := h.queue.PublishMessage(c.Request().Context(), usecase.RefreshJobType, target); err != nil {
			metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
			if h.logger != nil {
				h.logger.Error("refresh enqueue error", xlogger.Error(err))
			}
			return xhttp.AppErrorResponse(c, xhttp.InternalError("enqueue failed").WithError(err))
		}
		return xhttp.DataResponse(c, http.StatusAccepted, map[string]interface{}{
			"queued": true,
			"symbol": target.Symbol,
		})
	}

	n, err := h.refresh.RefreshSymbol(c.Request().Context(), target)
	if err != nil {
		return h.analyticsError(c, endpoint, err)
	}
	if n > 0 {
		h.invalidateAnalytics(target.Symbol)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"queued": false,
		"symbol": target.Symbol,
		"stored": n,
	})
}

func (h *DashboardHandler) Health(c echo.Context) error {
	status := map[string]interface{}{"status": "ok"}
	if err := h.bars.Health(c.Request().Context()); err != nil {
		status["status"] = "degraded"
		status["clickhouse"] = err.Error()
	} else {
		status["clickhouse"] = "ok"
	}
	if h.stream != nil {
		status["stream_connected"] = h.stream.IsConnected()
	}
	if status["status"] != "ok" {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, status)
	}
	return xhttp.SuccessResponse(c, status)
}

// invalidateAnalytics drops cached responses after new bars land. Cached
// entries key on more than the symbol, so invalidation is by prefix.
func (h *DashboardHandler) invalidateAnalytics(symbol string) {
	if h.cache == nil {
		return
	}
	for _, prefix := range []string{"cycles", "risk", "latest", "dashboard"} {
		if err := h.cache.InvalidatePrefix(prefix); err != nil && h.logger != nil {
			h.logger.Warn("api cache_invalidate_error",
				xlogger.String("prefix", prefix),
				xlogger.String("symbol", symbol),
				xlogger.Error(err))
		}
	}
}

func (h *DashboardHandler) rateLimited(c echo.Context, endpoint string) error {
	if h.logger != nil {
		h.logger.Warn("api rate_limited",
			xlogger.String("endpoint", endpoint),
			xlogger.String("remote", c.RealIP()))
	}
	return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
}

// analyticsError maps the analytics error taxonomy onto HTTP statuses.
func (h *DashboardHandler) analyticsError(c echo.Context, endpoint string, err error) error {
	metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
	if h.logger != nil {
		h.logger.Error("api usecase error",
			xlogger.String("endpoint", endpoint),
			xlogger.Error(err))
	}
	switch {
	case errors.Is(err, analytics.ErrInvalidInput):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	case errors.Is(err, analytics.ErrInsufficientData), errors.Is(err, analytics.ErrDegenerateFit):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()).WithError(err))
	default:
		return xhttp.AppErrorResponse(c, xhttp.InternalError("analytics failure").WithError(err))
	}
}

func (h *DashboardHandler) cacheGet(endpoint, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("api cache_get_error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		}
		return nil, false
	}
	if ok && h.logger != nil {
		h.logger.Debug("api cache_hit", xlogger.String("key", key))
	}
	return b, ok
}

func (h *DashboardHandler) cacheSet(endpoint, key string, v interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil && h.logger != nil {
		h.logger.Warn("api cache_set_error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	}
}

func (h *DashboardHandler) ttl(configured, def time.Duration) time.Duration {
	if configured > 0 {
		return configured
	}
	return def
}
