package market

import (
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/hxuan190/swap-router/internal/domain"
)

const numShards = 16

// ShardedPoolMap is a sharded map for pools to reduce lock contention
type ShardedPoolMap struct {
	shards [numShards]poolShard
}

type poolShard struct {
	mu    sync.RWMutex
	pools map[solana.PublicKey]*domain.Pool
}

// NewShardedPoolMap creates a new sharded pool map
func NewShardedPoolMap() *ShardedPoolMap {
	m := &ShardedPoolMap{}
	for i := 0; i < numShards; i++ {
		m.shards[i].pools = make(map[solana.PublicKey]*domain.Pool)
	}
	return m
}

// getShard returns the shard index for a given key
func (m *ShardedPoolMap) getShard(key solana.PublicKey) *poolShard {
	// Use first byte of public key for sharding (simple and fast)
	idx := key[0] % numShards
	return &m.shards[idx]
}

// Get retrieves a pool by address
func (m *ShardedPoolMap) Get(key solana.PublicKey) (*domain.Pool, bool) {
	shard := m.getShard(key)
	shard.mu.RLock()
	pool, ok := shard.pools[key]
	shard.mu.RUnlock()
	return pool, ok
}

// Set stores a pool
func (m *ShardedPoolMap) Set(key solana.PublicKey, pool *domain.Pool) {
	shard := m.getShard(key)
	shard.mu.Lock()
	shard.pools[key] = pool
	shard.mu.Unlock()
}

// Update applies fn to the pool stored at key under the shard lock.
// fn receives nil when the key is absent and returns the value to store;
// returning nil leaves the shard untouched.
func (m *ShardedPoolMap) Update(key solana.PublicKey, fn func(current *domain.Pool) *domain.Pool) *domain.Pool {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	next := fn(shard.pools[key])
	if next != nil {
		shard.pools[key] = next
	}
	return next
}

// Len returns total count across all shards
func (m *ShardedPoolMap) Len() int {
	total := 0
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		total += len(m.shards[i].pools)
		m.shards[i].mu.RUnlock()
	}
	return total
}

// GetAll returns all pools as a slice
func (m *ShardedPoolMap) GetAll() []*domain.Pool {
	// Estimate total size
	total := m.Len()
	result := make([]*domain.Pool, 0, total)

	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		for _, pool := range m.shards[i].pools {
			result = append(result, pool)
		}
		m.shards[i].mu.RUnlock()
	}
	return result
}
