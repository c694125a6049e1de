package router

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"

	"github.com/hxuan190/swap-router/internal/domain"
)

// sideStrategy pairs a simulation direction with the comparison that picks
// the winner. Both entry points share one driving loop through it.
type sideStrategy struct {
	dir    Direction
	better func(candidate, best *big.Int) bool
}

var (
	bidStrategy = sideStrategy{
		dir:    ExactIn,
		better: func(candidate, best *big.Int) bool { return candidate.Cmp(best) > 0 },
	}
	askStrategy = sideStrategy{
		dir:    ExactOut,
		better: func(candidate, best *big.Int) bool { return candidate.Cmp(best) < 0 },
	}
)

type optimizerOptions struct {
	parallelism int
}

type Option func(*optimizerOptions)

// WithParallelism simulates up to n candidate routes concurrently.
// Values below 2 keep evaluation sequential. The result is the same either way.
func WithParallelism(n int) Option {
	return func(o *optimizerOptions) {
		o.parallelism = n
	}
}

// FindBestRouteFromBid picks the route giving the largest output for a fixed
// amountIn of src. Amounts[i] is the output of hop i and Amount the final output.
// A route whose final output rounds down to zero is not viable and is never
// returned. An empty RouteInfo means no route survived simulation.
func FindBestRouteFromBid(
	pools domain.PoolRegistry,
	mints domain.MintRegistry,
	routes []domain.RouteTrace,
	src, dst solana.PublicKey,
	amountIn *big.Int,
	opts ...Option,
) domain.RouteInfo {
	return findBestRoute(pools, mints, routes, src, dst, amountIn, bidStrategy, opts)
}

// FindBestRouteFromAsk picks the route needing the smallest input of src to
// receive a fixed amountOut of dst. Amounts[i] is the input required by hop i
// and Amount the input of the first hop.
func FindBestRouteFromAsk(
	pools domain.PoolRegistry,
	mints domain.MintRegistry,
	routes []domain.RouteTrace,
	src, dst solana.PublicKey,
	amountOut *big.Int,
	opts ...Option,
) domain.RouteInfo {
	return findBestRoute(pools, mints, routes, src, dst, amountOut, askStrategy, opts)
}

// candidate is a fully simulated route.
type candidate struct {
	hops    []hopLeg
	amounts []*big.Int
	amount  *big.Int
	valid   bool
}

type hopLeg struct {
	pool     *domain.Pool
	src, dst solana.PublicKey
}

func findBestRoute(
	pools domain.PoolRegistry,
	mints domain.MintRegistry,
	routes []domain.RouteTrace,
	src, dst solana.PublicKey,
	amount *big.Int,
	side sideStrategy,
	opts []Option,
) domain.RouteInfo {
	if amount == nil || amount.Sign() <= 0 || len(routes) == 0 {
		return domain.EmptyRouteInfo()
	}

	var o optimizerOptions
	for _, opt := range opts {
		opt(&o)
	}

	results := make([]candidate, len(routes))
	if o.parallelism > 1 && len(routes) > 1 {
		var g errgroup.Group
		g.SetLimit(o.parallelism)
		for i := range routes {
			g.Go(func() error {
				results[i] = simulateRoute(pools, routes[i], src, dst, amount, side.dir)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range routes {
			results[i] = simulateRoute(pools, routes[i], src, dst, amount, side.dir)
		}
	}

	best := -1
	for i := range results {
		if !results[i].valid {
			continue
		}
		if best < 0 || side.better(results[i].amount, results[best].amount) {
			best = i
		}
	}
	if best < 0 {
		return domain.EmptyRouteInfo()
	}
	return results[best].toRouteInfo(mints)
}

// simulateRoute walks one trace. Any failing hop invalidates the route.
func simulateRoute(
	pools domain.PoolRegistry,
	trace domain.RouteTrace,
	src, dst solana.PublicKey,
	amount *big.Int,
	dir Direction,
) candidate {
	if len(trace.Pools) == 0 {
		return candidate{}
	}

	hops := make([]hopLeg, len(trace.Pools))
	token := src
	for i, addr := range trace.Pools {
		pool := pools[addr]
		if pool == nil {
			return candidate{}
		}
		next, ok := pool.OtherMint(token)
		if !ok {
			return candidate{}
		}
		hops[i] = hopLeg{pool: pool, src: token, dst: next}
		token = next
	}
	if !token.Equals(dst) {
		return candidate{}
	}

	amounts := make([]*big.Int, len(hops))
	current := amount
	if dir == ExactIn {
		for i, hop := range hops {
			out, err := SimulateExactIn(hop.pool, hop.src, hop.dst, current)
			if err != nil {
				return candidate{}
			}
			amounts[i] = out
			current = out
		}
		if current.Sign() <= 0 {
			return candidate{}
		}
	} else {
		for i := len(hops) - 1; i >= 0; i-- {
			in, err := SimulateExactOut(hops[i].pool, hops[i].src, hops[i].dst, current)
			if err != nil {
				return candidate{}
			}
			amounts[i] = in
			current = in
		}
	}

	return candidate{
		hops:    hops,
		amounts: amounts,
		amount:  current,
		valid:   true,
	}
}

// toRouteInfo copies the winner out of the snapshot.
func (c candidate) toRouteInfo(mints domain.MintRegistry) domain.RouteInfo {
	info := domain.RouteInfo{
		Hops:    make([]domain.HopData, len(c.hops)),
		Amounts: make([]*big.Int, len(c.amounts)),
		Amount:  new(big.Int).Set(c.amount),
	}
	for i, hop := range c.hops {
		info.Hops[i] = domain.HopData{
			Pool:    hop.pool.Clone(),
			SrcMint: mints.Lookup(hop.src),
			DstMint: mints.Lookup(hop.dst),
		}
		info.Amounts[i] = new(big.Int).Set(c.amounts[i])
	}
	return info
}
