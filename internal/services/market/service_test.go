package market

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/swap-router/internal/config"
	"github.com/hxuan190/swap-router/internal/domain"
	"github.com/hxuan190/swap-router/internal/services/router"
)

func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = b
	k[31] = 0xff
	return k
}

var (
	mintA = testKey(0xa1)
	mintB = testKey(0xa2)
	poolX = testKey(0x01)
	poolY = testKey(0x02)
)

func newPool(addr solana.PublicKey, reserve int64, slot uint64) *domain.Pool {
	return &domain.Pool{
		Address:         addr,
		TokenMintA:      mintA,
		TokenMintB:      mintB,
		ReserveA:        big.NewInt(reserve),
		ReserveB:        big.NewInt(reserve),
		FeeNumerator:    3,
		FeeDenominator:  1000,
		Active:          true,
		LastUpdatedSlot: slot,
	}
}

func newTestService() (*Service, *router.Graph) {
	graph := router.NewGraph()
	return NewService(graph, nil, &config.StorageConfig{}), graph
}

func TestIngest(t *testing.T) {
	svc, graph := newTestService()

	applied, err := svc.Ingest(newPool(poolX, 1_000, 10), newPool(poolY, 2_000, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	total, routable, tokens, _ := graph.Stats()
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, routable)
	assert.Equal(t, 2, tokens)

	count, updates, stale := svc.GetStats()
	assert.Equal(t, 2, count)
	assert.Equal(t, uint64(2), updates)
	assert.Zero(t, stale)
}

func TestIngestSkipsStaleSlots(t *testing.T) {
	svc, graph := newTestService()

	_, err := svc.Ingest(newPool(poolX, 1_000, 10))
	require.NoError(t, err)

	applied, err := svc.Ingest(newPool(poolX, 5_000, 9))
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Equal(t, int64(1_000), graph.GetPool(poolX).ReserveA.Int64())

	// same slot replaces
	applied, err = svc.Ingest(newPool(poolX, 7_000, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, int64(7_000), graph.GetPool(poolX).ReserveA.Int64())

	_, updates, stale := svc.GetStats()
	assert.Equal(t, uint64(2), updates)
	assert.Equal(t, uint64(1), stale)
}

func TestIngestIsAllOrNothing(t *testing.T) {
	svc, graph := newTestService()

	bad := newPool(poolY, 1_000, 1)
	bad.FeeDenominator = 0

	applied, err := svc.Ingest(newPool(poolX, 1_000, 1), bad)
	require.ErrorIs(t, err, ErrInvalidPool)
	assert.Zero(t, applied)

	total, _, _, _ := graph.Stats()
	assert.Zero(t, total)
}

func TestIngestCopiesInput(t *testing.T) {
	svc, _ := newTestService()

	pool := newPool(poolX, 1_000, 1)
	_, err := svc.Ingest(pool)
	require.NoError(t, err)

	pool.ReserveA.SetInt64(1)
	assert.Equal(t, int64(1_000), svc.GetPool(poolX).ReserveA.Int64())
}

func TestConcurrentIngestKeepsGraphInStep(t *testing.T) {
	svc, graph := newTestService()

	const writers = 32
	for round := 0; round < 20; round++ {
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(slot uint64) {
				defer wg.Done()
				_, err := svc.Ingest(newPool(poolX, int64(1_000+slot), slot))
				assert.NoError(t, err)
			}(uint64(round*writers + i))
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Deactivate(poolX)
		}()
		wg.Wait()

		stored := svc.GetPool(poolX)
		routed := graph.GetPool(poolX)
		require.NotNil(t, stored)
		require.NotNil(t, routed)
		assert.Equal(t, stored.LastUpdatedSlot, routed.LastUpdatedSlot)
		assert.Equal(t, stored.Active, routed.Active)
		assert.Equal(t, stored.ReserveA, routed.ReserveA)
	}
}

// flakyStore fails SavePoolBatch while failing is set and runs onSave first.
type flakyStore struct {
	mu      sync.Mutex
	failing bool
	onSave  func()
	saved   map[solana.PublicKey]*domain.Pool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{saved: make(map[solana.PublicKey]*domain.Pool)}
}

func (s *flakyStore) SavePoolBatch(pools []*domain.Pool) error {
	s.mu.Lock()
	hook := s.onSave
	s.onSave = nil
	failing := s.failing
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if failing {
		return errors.New("disk full")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pools {
		s.saved[p.Address] = p
	}
	return nil
}

func (s *flakyStore) LoadAllPools() ([]*domain.Pool, error) { return nil, nil }

func (s *flakyStore) SaveMintBatch([]domain.MintInfo) error { return nil }

func (s *flakyStore) LoadAllMints() ([]domain.MintInfo, error) { return nil, nil }

func (s *flakyStore) Close() error { return nil }

func TestFailedFlushDoesNotOverwriteNewerState(t *testing.T) {
	store := newFlakyStore()
	svc := NewService(router.NewGraph(), store, &config.StorageConfig{PersistenceEnabled: true, PersistInterval: 1})

	_, err := svc.Ingest(newPool(poolX, 1_000, 10))
	require.NoError(t, err)

	// slot 11 arrives while the slot 10 flush is failing
	store.failing = true
	store.onSave = func() {
		_, err := svc.Ingest(newPool(poolX, 2_000, 11))
		assert.NoError(t, err)
	}
	svc.persistPendingPools()
	assert.Empty(t, store.saved)

	store.failing = false
	svc.persistPendingPools()
	require.Contains(t, store.saved, poolX)
	assert.Equal(t, uint64(11), store.saved[poolX].LastUpdatedSlot)
	assert.Equal(t, int64(2_000), store.saved[poolX].ReserveA.Int64())
}

func TestFailedFlushIsRetried(t *testing.T) {
	store := newFlakyStore()
	svc := NewService(router.NewGraph(), store, &config.StorageConfig{PersistenceEnabled: true, PersistInterval: 1})

	_, err := svc.Ingest(newPool(poolX, 1_000, 10), newPool(poolY, 1_000, 10))
	require.NoError(t, err)

	store.failing = true
	svc.persistPendingPools()
	store.failing = false
	svc.persistPendingPools()

	assert.Len(t, store.saved, 2)
}

func TestPendingKeepsLatestStatePerPool(t *testing.T) {
	store := newFlakyStore()
	svc := NewService(router.NewGraph(), store, &config.StorageConfig{PersistenceEnabled: true, PersistInterval: 1})

	for slot := uint64(1); slot <= 5; slot++ {
		_, err := svc.Ingest(newPool(poolX, int64(slot), slot))
		require.NoError(t, err)
	}
	assert.True(t, svc.Deactivate(poolX))

	svc.persistPendingPools()
	require.Len(t, store.saved, 1)
	assert.Equal(t, uint64(5), store.saved[poolX].LastUpdatedSlot)
	assert.False(t, store.saved[poolX].Active)
}

func TestDeactivate(t *testing.T) {
	svc, graph := newTestService()

	_, err := svc.Ingest(newPool(poolX, 1_000, 1))
	require.NoError(t, err)

	assert.True(t, svc.Deactivate(poolX))
	assert.False(t, svc.Deactivate(poolY))

	total, routable, _, _ := graph.Stats()
	assert.Equal(t, 1, total)
	assert.Zero(t, routable)
	assert.False(t, svc.GetPool(poolX).Active)
}

func TestUpsertMints(t *testing.T) {
	svc, graph := newTestService()

	require.NoError(t, svc.UpsertMints(
		domain.MintInfo{Address: mintA, Decimals: 9},
		domain.MintInfo{Address: mintB, Decimals: 6},
	))
	assert.Len(t, graph.GetAllMints(), 2)

	assert.Error(t, svc.UpsertMints(domain.MintInfo{Decimals: 6}))
}

func TestStartStopWithoutStorage(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop())
}

func TestValidatePool(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *domain.Pool)
	}{
		{"missing address", func(p *domain.Pool) { p.Address = solana.PublicKey{} }},
		{"missing mint", func(p *domain.Pool) { p.TokenMintB = solana.PublicKey{} }},
		{"self pair", func(p *domain.Pool) { p.TokenMintB = p.TokenMintA }},
		{"zero fee denominator", func(p *domain.Pool) { p.FeeDenominator = 0 }},
		{"fee at 100%", func(p *domain.Pool) { p.FeeNumerator = p.FeeDenominator }},
		{"nil reserve", func(p *domain.Pool) { p.ReserveA = nil }},
		{"negative reserve", func(p *domain.Pool) { p.ReserveB = big.NewInt(-1) }},
	}

	assert.NoError(t, ValidatePool(newPool(poolX, 0, 0)), "empty reserves are accepted")
	assert.ErrorIs(t, ValidatePool(nil), ErrInvalidPool)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPool(poolX, 1_000, 0)
			tc.mutate(p)
			assert.ErrorIs(t, ValidatePool(p), ErrInvalidPool)
		})
	}
}

func TestShardedPoolMap(t *testing.T) {
	m := NewShardedPoolMap()
	m.Set(poolX, newPool(poolX, 1, 1))

	got, ok := m.Get(poolX)
	require.True(t, ok)
	assert.Equal(t, poolX, got.Address)

	kept := m.Update(poolY, func(current *domain.Pool) *domain.Pool {
		assert.Nil(t, current)
		return nil
	})
	assert.Nil(t, kept)
	_, ok = m.Get(poolY)
	assert.False(t, ok)

	m.Update(poolY, func(*domain.Pool) *domain.Pool { return newPool(poolY, 2, 1) })
	assert.Equal(t, 2, m.Len())
	assert.Len(t, m.GetAll(), 2)
}
