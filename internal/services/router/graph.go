package router

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/swap-router/internal/domain"
	"github.com/hxuan190/swap-router/internal/metrics"
)

const (
	ROUTER_GRAPH_SERVICE = "router.Graph"
)

// Edge is one directed crossing of a pool: from the owning token to Token via Pool.
type Edge struct {
	Pool  solana.PublicKey
	Token solana.PublicKey
}

// PoolGraph maps each token to its outgoing edges in insertion order.
// It is immutable once built.
type PoolGraph struct {
	adj map[solana.PublicKey][]Edge
}

// BuildPoolGraph turns a pool registry into a PoolGraph. Every pool yields
// an A->B and a B->A edge; reserves are not validated here. Pools are
// inserted in ascending address order so that enumeration is reproducible.
func BuildPoolGraph(pools domain.PoolRegistry) *PoolGraph {
	g := &PoolGraph{adj: make(map[solana.PublicKey][]Edge, len(pools))}
	for _, addr := range pools.SortedAddresses() {
		pool := pools[addr]
		if pool == nil {
			continue
		}
		g.adj[pool.TokenMintA] = append(g.adj[pool.TokenMintA], Edge{Pool: addr, Token: pool.TokenMintB})
		g.adj[pool.TokenMintB] = append(g.adj[pool.TokenMintB], Edge{Pool: addr, Token: pool.TokenMintA})
	}
	return g
}

// Edges returns the outgoing edges of token. The slice must not be modified.
func (g *PoolGraph) Edges(token solana.PublicKey) []Edge {
	if g == nil {
		return nil
	}
	return g.adj[token]
}

func (g *PoolGraph) TokenCount() int {
	if g == nil {
		return 0
	}
	return len(g.adj)
}

func (g *PoolGraph) EdgeCount() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, edges := range g.adj {
		n += len(edges)
	}
	return n
}

// graphSnapshot is an immutable view of the routable state.
type graphSnapshot struct {
	pools   domain.PoolRegistry
	mints   domain.MintRegistry
	graph   *PoolGraph
	version uint64
}

// Graph keeps the live pool set and publishes immutable snapshots for
// lock-free reads by the router.
type Graph struct {
	mu sync.Mutex // writers only

	snapshot atomic.Pointer[graphSnapshot]

	pools   domain.PoolRegistry
	mints   domain.MintRegistry
	version uint64
}

// NewGraph returns a ready Graph outside of the DI container.
func NewGraph() *Graph {
	g := &Graph{}
	g.init()
	return g
}

func (g *Graph) ID() string {
	return ROUTER_GRAPH_SERVICE
}

func (g *Graph) Configure(c container.IContainer) error {
	g.init()
	return nil
}

func (g *Graph) Start() error {
	return nil
}

func (g *Graph) Stop() error {
	return nil
}

func (g *Graph) init() {
	g.pools = make(domain.PoolRegistry)
	g.mints = make(domain.MintRegistry)
	g.rebuildSnapshot()
}

// getSnapshot returns the current immutable snapshot.
func (g *Graph) getSnapshot() *graphSnapshot {
	return g.snapshot.Load()
}

// UpsertPools inserts or replaces pools. Inactive pools are dropped from
// routing but kept in the registry.
func (g *Graph) UpsertPools(pools ...*domain.Pool) {
	if len(pools) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range pools {
		if p == nil {
			continue
		}
		g.pools[p.Address] = p.Clone()
	}
	metrics.PoolUpdates.Add(float64(len(pools)))
	g.rebuildSnapshot()
}

func (g *Graph) UpsertMints(mints ...domain.MintInfo) {
	if len(mints) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, m := range mints {
		g.mints[m.Address] = m
	}
	g.rebuildSnapshot()
}

// GetPool returns a copy of the pool at addr, or nil.
func (g *Graph) GetPool(addr solana.PublicKey) *domain.Pool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.pools[addr]; ok {
		return p.Clone()
	}
	return nil
}

// GetAllPools returns copies of every registered pool ordered by address.
func (g *Graph) GetAllPools() []*domain.Pool {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*domain.Pool, 0, len(g.pools))
	for _, addr := range g.pools.SortedAddresses() {
		out = append(out, g.pools[addr].Clone())
	}
	return out
}

// GetAllMints returns the registered mints ordered by address.
func (g *Graph) GetAllMints() []domain.MintInfo {
	snap := g.getSnapshot()
	out := make([]domain.MintInfo, 0, len(snap.mints))
	for _, m := range snap.mints {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.String() < out[j].Address.String()
	})
	return out
}

// Stats returns (registered pools, routable pools, tokens, snapshot version).
func (g *Graph) Stats() (int, int, int, uint64) {
	g.mu.Lock()
	total := len(g.pools)
	g.mu.Unlock()
	snap := g.getSnapshot()
	return total, len(snap.pools), snap.graph.TokenCount(), snap.version
}

// rebuildSnapshot publishes a new snapshot of active pools.
// Must be called with mu held.
func (g *Graph) rebuildSnapshot() {
	metrics.GraphSnapshotRebuilds.Inc()

	pools := make(domain.PoolRegistry, len(g.pools))
	for addr, p := range g.pools {
		if p.Active {
			pools[addr] = p
		}
	}
	mints := make(domain.MintRegistry, len(g.mints))
	for addr, m := range g.mints {
		mints[addr] = m
	}

	g.version++
	g.snapshot.Store(&graphSnapshot{
		pools:   pools,
		mints:   mints,
		graph:   BuildPoolGraph(pools),
		version: g.version,
	})

	metrics.PoolCount.Set(float64(len(g.pools)))
	metrics.ReadyPoolCount.Set(float64(len(pools)))
	metrics.MintCount.Set(float64(len(mints)))
}
