package router

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/swap-router/internal/common"
	"github.com/hxuan190/swap-router/internal/config"
	"github.com/hxuan190/swap-router/internal/domain"
	"github.com/hxuan190/swap-router/internal/metrics"
)

const (
	ROUTER_SERVICE = "router.Router"
)

// ErrInvalidRequest is returned by Quote and ListRoutes for malformed requests.
var ErrInvalidRequest = errors.New("invalid request")

// quoteKey identifies a quote within one graph snapshot. The snapshot
// version makes entries from older pool states unreachable.
type quoteKey struct {
	version     uint64
	input       solana.PublicKey
	output      solana.PublicKey
	amount      string
	side        domain.SwapSide
	maxHops     int
	slippageBps uint16
	filter      solana.PublicKey
	hasFilter   bool
}

// Router answers quote requests against the latest graph snapshot.
type Router struct {
	container.BaseDIInstance

	graph  *Graph
	conf   *config.RouterConfig
	cache  *BoundedLRUCache[quoteKey, *domain.Quote]
	logger *common.ServiceLogger
}

// NewRouter builds a Router outside of the DI container.
func NewRouter(graph *Graph, conf *config.RouterConfig) *Router {
	r := &Router{graph: graph, conf: conf}
	r.init()
	return r
}

func (r *Router) ID() string {
	return ROUTER_SERVICE
}

func (r *Router) Configure(c container.IContainer) error {
	r.conf = c.GetConfig(config.ROUTER_CONFIG_KEY).(*config.RouterConfig)
	if r.conf == nil {
		return errors.New("invalid router config")
	}
	r.graph = c.Instance(ROUTER_GRAPH_SERVICE).(*Graph)
	r.init()
	return nil
}

func (r *Router) init() {
	r.cache = NewBoundedLRUCache[quoteKey, *domain.Quote](r.conf.QuoteCacheSize)
	r.logger = common.NewServiceLogger(r)
}

func (r *Router) Start() error {
	r.logger.Info().
		Int("default_max_hops", r.conf.DefaultMaxHops).
		Int("parallelism", r.conf.Parallelism).
		Int("cache_size", r.conf.QuoteCacheSize).
		Msg("router ready")
	return nil
}

func (r *Router) Stop() error {
	r.cache.Clear()
	return nil
}

// DefaultSlippageBps is applied by callers that omit slippage.
func (r *Router) DefaultSlippageBps() uint16 {
	return uint16(r.conf.DefaultSlippageBps)
}

func (r *Router) validate(req *domain.SwapRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if req.InputMint.IsZero() || req.OutputMint.IsZero() {
		return fmt.Errorf("%w: input and output mints are required", ErrInvalidRequest)
	}
	if req.InputMint.Equals(req.OutputMint) {
		return fmt.Errorf("%w: input and output mints must differ", ErrInvalidRequest)
	}
	if req.MaxHops > MaxHopsLimit {
		return fmt.Errorf("%w: maxHops must be at most %d", ErrInvalidRequest, MaxHopsLimit)
	}
	if req.SlippageBps >= bpsDenom {
		return fmt.Errorf("%w: slippageBps must be below %d", ErrInvalidRequest, bpsDenom)
	}
	return nil
}

// EffectiveMaxHops is the search depth used for req.
func (r *Router) EffectiveMaxHops(req *domain.SwapRequest) int {
	if req.MaxHops > 0 {
		return req.MaxHops
	}
	return r.conf.DefaultMaxHops
}

// enumerate lists candidate routes on snap, applying the pool filter.
func (r *Router) enumerate(snap *graphSnapshot, req *domain.SwapRequest) []domain.RouteTrace {
	routes := FindAllRoutes(nil, snap.graph, req.InputMint, req.OutputMint, r.EffectiveMaxHops(req))
	if req.PoolFilter != nil {
		routes = FilterSinglePool(routes, *req.PoolFilter)
	}
	return routes
}

// ListRoutes returns the candidate traces a quote for req would evaluate.
func (r *Router) ListRoutes(req *domain.SwapRequest) ([]domain.RouteTrace, uint64, error) {
	if req == nil {
		return nil, 0, fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	if req.InputMint.Equals(req.OutputMint) {
		return nil, 0, fmt.Errorf("%w: input and output mints must differ", ErrInvalidRequest)
	}
	if req.MaxHops > MaxHopsLimit {
		return nil, 0, fmt.Errorf("%w: maxHops must be at most %d", ErrInvalidRequest, MaxHopsLimit)
	}
	snap := r.graph.getSnapshot()
	return r.enumerate(snap, req), snap.version, nil
}

// Quote finds the best single route for req. It returns ErrNoViableRoute
// when no candidate survives simulation.
func (r *Router) Quote(ctx context.Context, req *domain.SwapRequest) (*domain.Quote, error) {
	start := time.Now()
	side := "unknown"
	if req != nil {
		side = req.Side.String()
	}

	quote, status, err := r.quote(ctx, req)

	metrics.QuoteRequests.WithLabelValues(side, status).Inc()
	metrics.QuoteDuration.WithLabelValues(side).Observe(time.Since(start).Seconds())
	if err != nil && status == "error" {
		r.logger.Warn().Err(err).Str("side", side).Msg("quote failed")
	}
	return quote, err
}

func (r *Router) quote(ctx context.Context, req *domain.SwapRequest) (*domain.Quote, string, error) {
	if err := r.validate(req); err != nil {
		return nil, "invalid", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "canceled", err
	}

	snap := r.graph.getSnapshot()
	key := quoteKey{
		version:     snap.version,
		input:       req.InputMint,
		output:      req.OutputMint,
		amount:      req.Amount.String(),
		side:        req.Side,
		maxHops:     r.EffectiveMaxHops(req),
		slippageBps: req.SlippageBps,
	}
	if req.PoolFilter != nil {
		key.filter = *req.PoolFilter
		key.hasFilter = true
	}

	if cached, ok := r.cache.Get(key); ok {
		metrics.QuoteCacheHits.Inc()
		if cached == nil {
			return nil, "no_route", ErrNoViableRoute
		}
		return cached, "ok", nil
	}
	metrics.QuoteCacheMisses.Inc()

	routes := r.enumerate(snap, req)
	metrics.RoutesEnumerated.Observe(float64(len(routes)))

	opts := []Option{WithParallelism(r.conf.Parallelism)}
	var info domain.RouteInfo
	switch req.Side {
	case domain.SideBid:
		info = FindBestRouteFromBid(snap.pools, snap.mints, routes, req.InputMint, req.OutputMint, req.Amount, opts...)
	case domain.SideAsk:
		info = FindBestRouteFromAsk(snap.pools, snap.mints, routes, req.InputMint, req.OutputMint, req.Amount, opts...)
	default:
		return nil, "invalid", fmt.Errorf("%w: unknown side %d", ErrInvalidRequest, req.Side)
	}

	if err := ctx.Err(); err != nil {
		return nil, "canceled", err
	}

	if info.IsEmpty() {
		r.cache.Set(key, nil)
		metrics.QuoteCacheSize.Set(float64(r.cache.Size()))
		return nil, "no_route", fmt.Errorf("%w: %d candidate routes from %s to %s",
			ErrNoViableRoute, len(routes), req.InputMint, req.OutputMint)
	}

	quote := buildQuote(req, info, len(routes), snap.version)
	r.cache.Set(key, quote)
	metrics.QuoteCacheSize.Set(float64(r.cache.Size()))

	severity := GetPriceImpactSeverity(quote.PriceImpactBps)
	metrics.PriceImpact.WithLabelValues(string(severity)).Observe(float64(quote.PriceImpactBps))

	return quote, "ok", nil
}

func buildQuote(req *domain.SwapRequest, info domain.RouteInfo, evaluated int, version uint64) *domain.Quote {
	q := &domain.Quote{
		Route:           info,
		Side:            req.Side,
		InputMint:       req.InputMint,
		OutputMint:      req.OutputMint,
		SlippageBps:     req.SlippageBps,
		RoutesEvaluated: evaluated,
		SnapshotVersion: version,
	}

	if req.Side == domain.SideBid {
		q.AmountIn = new(big.Int).Set(req.Amount)
		q.AmountOut = new(big.Int).Set(info.Amount)
		q.OtherAmountThreshold = MinAmountOut(q.AmountOut, req.SlippageBps)
	} else {
		q.AmountIn = new(big.Int).Set(info.Amount)
		q.AmountOut = new(big.Int).Set(req.Amount)
		q.OtherAmountThreshold = MaxAmountIn(q.AmountIn, req.SlippageBps)
	}
	q.PriceImpactBps = CalculateRoutePriceImpact(info, q.AmountIn, q.AmountOut)
	return q
}
