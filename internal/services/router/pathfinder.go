package router

import (
	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/swap-router/internal/domain"
)

const (
	// DefaultMaxHops bounds the search when a request does not set one.
	DefaultMaxHops = 3
	// MaxHopsLimit is the largest depth a caller may ask for.
	MaxHopsLimit = 6
)

// routeWalker carries the state of one depth-first enumeration.
type routeWalker struct {
	graph   *PoolGraph
	dst     solana.PublicKey
	maxHops int

	trace   []solana.PublicKey
	visited map[solana.PublicKey]struct{}
	acc     []domain.RouteTrace
}

// FindAllRoutes appends to acc every simple route from src to dst of at most
// maxHops pools. A pool is never crossed twice within a route, in either
// direction. Routes come out in edge insertion order of the graph.
func FindAllRoutes(acc []domain.RouteTrace, graph *PoolGraph, src, dst solana.PublicKey, maxHops int) []domain.RouteTrace {
	if graph == nil || src.Equals(dst) || maxHops < 1 {
		return acc
	}
	if len(graph.Edges(src)) == 0 || len(graph.Edges(dst)) == 0 {
		return acc
	}
	if maxHops > MaxHopsLimit {
		maxHops = MaxHopsLimit
	}

	w := &routeWalker{
		graph:   graph,
		dst:     dst,
		maxHops: maxHops,
		trace:   make([]solana.PublicKey, 0, maxHops),
		visited: make(map[solana.PublicKey]struct{}, maxHops),
		acc:     acc,
	}
	w.walk(src)
	return w.acc
}

func (w *routeWalker) walk(token solana.PublicKey) {
	for _, edge := range w.graph.Edges(token) {
		if _, seen := w.visited[edge.Pool]; seen {
			continue
		}

		w.trace = append(w.trace, edge.Pool)
		if edge.Token.Equals(w.dst) {
			pools := make([]solana.PublicKey, len(w.trace))
			copy(pools, w.trace)
			w.acc = append(w.acc, domain.RouteTrace{Pools: pools})
		} else if len(w.trace) < w.maxHops {
			w.visited[edge.Pool] = struct{}{}
			w.walk(edge.Token)
			delete(w.visited, edge.Pool)
		}
		w.trace = w.trace[:len(w.trace)-1]
	}
}

// FilterSinglePool keeps only the one-hop route through pool, if present.
func FilterSinglePool(routes []domain.RouteTrace, pool solana.PublicKey) []domain.RouteTrace {
	out := routes[:0:0]
	for _, r := range routes {
		if len(r.Pools) == 1 && r.Pools[0].Equals(pool) {
			out = append(out, r)
		}
	}
	return out
}
