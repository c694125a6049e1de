package router

import (
	"context"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/swap-router/internal/config"
	"github.com/hxuan190/swap-router/internal/domain"
)

func newTestRouter(t *testing.T, pools ...*domain.Pool) (*Router, *Graph) {
	t.Helper()
	g := NewGraph()
	g.UpsertPools(pools...)
	g.UpsertMints(domain.MintInfo{Address: mintA, Decimals: 9}, domain.MintInfo{Address: mintB, Decimals: 6})
	r := NewRouter(g, &config.RouterConfig{
		DefaultMaxHops:     3,
		Parallelism:        2,
		QuoteCacheSize:     16,
		DefaultSlippageBps: 50,
	})
	return r, g
}

func bidRequest(in, out solana.PublicKey, amount int64) *domain.SwapRequest {
	return &domain.SwapRequest{
		InputMint:   in,
		OutputMint:  out,
		Amount:      big.NewInt(amount),
		Side:        domain.SideBid,
		SlippageBps: 50,
	}
}

func TestRouterQuoteBid(t *testing.T) {
	x := cpPool(testKey(1), mintA, mintB, 1_000_000, 1_000_000)
	r, _ := newTestRouter(t, x)

	q, err := r.Quote(context.Background(), bidRequest(mintA, mintB, 1000))
	require.NoError(t, err)

	assert.Equal(t, int64(1000), q.AmountIn.Int64())
	assert.Equal(t, int64(996), q.AmountOut.Int64())
	assert.Equal(t, int64(991), q.OtherAmountThreshold.Int64())
	assert.Equal(t, uint16(10), q.PriceImpactBps)
	assert.Equal(t, 1, q.RoutesEvaluated)
	assert.Equal(t, uint8(9), q.Route.Hops[0].SrcMint.Decimals)
}

func TestRouterQuoteAsk(t *testing.T) {
	x := cpPool(testKey(1), mintA, mintB, 1_000_000, 1_000_000)
	y := cpPool(testKey(2), mintB, mintC, 1_000_000, 1_000_000)
	r, _ := newTestRouter(t, x, y)

	req := &domain.SwapRequest{
		InputMint:   mintA,
		OutputMint:  mintC,
		Amount:      big.NewInt(5000),
		Side:        domain.SideAsk,
		SlippageBps: 100,
	}
	q, err := r.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(5000), q.AmountOut.Int64())
	assert.Equal(t, q.Route.Amount, q.AmountIn)
	assert.Equal(t, MaxAmountIn(q.AmountIn, 100), q.OtherAmountThreshold)
	assert.Greater(t, q.OtherAmountThreshold.Cmp(q.AmountIn), 0)
	assert.Len(t, q.Route.Hops, 2)
}

func TestRouterQuoteCache(t *testing.T) {
	x := cpPool(testKey(1), mintA, mintB, 1_000_000, 1_000_000)
	r, g := newTestRouter(t, x)
	ctx := context.Background()

	first, err := r.Quote(ctx, bidRequest(mintA, mintB, 1000))
	require.NoError(t, err)
	second, err := r.Quote(ctx, bidRequest(mintA, mintB, 1000))
	require.NoError(t, err)
	assert.Same(t, first, second)

	// a pool update publishes a new snapshot and bypasses old entries
	g.UpsertPools(cpPool(testKey(1), mintA, mintB, 2_000_000, 2_000_000))
	third, err := r.Quote(ctx, bidRequest(mintA, mintB, 1000))
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Greater(t, third.SnapshotVersion, first.SnapshotVersion)
	assert.Equal(t, int64(2_000_000), third.Route.Hops[0].Pool.ReserveA.Int64())
}

func TestRouterQuoteErrors(t *testing.T) {
	x := cpPool(testKey(1), mintA, mintB, 1_000_000, 1_000_000)
	dry := cpPool(testKey(2), mintB, mintC, 0, 0)
	r, _ := newTestRouter(t, x, dry)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *domain.SwapRequest
		want error
	}{
		{"nil request", nil, ErrInvalidRequest},
		{"zero amount", bidRequest(mintA, mintB, 0), ErrInvalidAmount},
		{"same mint", bidRequest(mintA, mintA, 10), ErrInvalidRequest},
		{"missing mint", bidRequest(solana.PublicKey{}, mintB, 10), ErrInvalidRequest},
		{"no pools for token", bidRequest(mintA, mintD, 10), ErrNoViableRoute},
		{"only illiquid route", bidRequest(mintA, mintC, 10), ErrNoViableRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Quote(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("too many hops", func(t *testing.T) {
		req := bidRequest(mintA, mintB, 10)
		req.MaxHops = MaxHopsLimit + 1
		_, err := r.Quote(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("slippage of 100%", func(t *testing.T) {
		req := bidRequest(mintA, mintB, 10)
		req.SlippageBps = 10_000
		_, err := r.Quote(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Quote(cctx, bidRequest(mintA, mintB, 1000))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("cached miss stays a miss", func(t *testing.T) {
		_, err := r.Quote(ctx, bidRequest(mintA, mintC, 10))
		assert.ErrorIs(t, err, ErrNoViableRoute)
	})
}

func TestRouterPoolFilter(t *testing.T) {
	shallow := cpPool(testKey(1), mintA, mintB, 1_000_000, 1_000_000)
	deep := cpPool(testKey(2), mintA, mintB, 5_000_000, 5_000_000)
	r, _ := newTestRouter(t, shallow, deep)
	ctx := context.Background()

	q, err := r.Quote(ctx, bidRequest(mintA, mintB, 10_000))
	require.NoError(t, err)
	assert.Equal(t, deep.Address, q.Route.Hops[0].Pool.Address)

	req := bidRequest(mintA, mintB, 10_000)
	pinned := shallow.Address
	req.PoolFilter = &pinned
	q, err = r.Quote(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, shallow.Address, q.Route.Hops[0].Pool.Address)
	assert.Equal(t, 1, q.RoutesEvaluated)

	unknown := testKey(9)
	req.PoolFilter = &unknown
	_, err = r.Quote(ctx, req)
	assert.ErrorIs(t, err, ErrNoViableRoute)
}

func TestRouterListRoutes(t *testing.T) {
	x := cpPool(testKey(1), mintA, mintB, 1_000_000, 1_000_000)
	y := cpPool(testKey(2), mintB, mintC, 1_000_000, 1_000_000)
	r, _ := newTestRouter(t, x, y)

	routes, version, err := r.ListRoutes(&domain.SwapRequest{InputMint: mintA, OutputMint: mintC})
	require.NoError(t, err)
	assert.NotZero(t, version)
	assert.Equal(t, []domain.RouteTrace{trace(x.Address, y.Address)}, routes)

	routes, _, err = r.ListRoutes(&domain.SwapRequest{InputMint: mintA, OutputMint: mintC, MaxHops: 1})
	require.NoError(t, err)
	assert.Empty(t, routes)

	_, _, err = r.ListRoutes(&domain.SwapRequest{InputMint: mintA, OutputMint: mintA})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func BenchmarkRouterQuoteUncached(b *testing.B) {
	g := NewGraph()
	g.UpsertPools(
		cpPool(testKey(1), mintA, mintB, 1_000_000_000, 1_000_000_000),
		cpPool(testKey(2), mintB, mintC, 1_000_000_000, 1_000_000_000),
		cpPool(testKey(3), mintA, mintC, 300_000_000, 300_000_000),
		cpPool(testKey(4), mintC, mintD, 1_000_000_000, 1_000_000_000),
	)
	r := NewRouter(g, &config.RouterConfig{DefaultMaxHops: 3, Parallelism: 1})
	ctx := context.Background()
	req := bidRequest(mintA, mintD, 1_000_000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = r.Quote(ctx, req)
	}
}
