package market

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/swap-router/internal/adapters/persistence"
	"github.com/hxuan190/swap-router/internal/common"
	"github.com/hxuan190/swap-router/internal/config"
	"github.com/hxuan190/swap-router/internal/domain"
	"github.com/hxuan190/swap-router/internal/metrics"
	"github.com/hxuan190/swap-router/internal/services/router"
)

const (
	MARKET_SERVICE = "market.Service"

	statsInterval = 30 * time.Second
)

// PoolStore is the persistence the service writes through to.
type PoolStore interface {
	SavePoolBatch(pools []*domain.Pool) error
	LoadAllPools() ([]*domain.Pool, error)
	SaveMintBatch(mints []domain.MintInfo) error
	LoadAllMints() ([]domain.MintInfo, error)
	Close() error
}

// Service owns the pool set: it validates incoming pool states, publishes
// them to the routing graph and persists them in the background.
type Service struct {
	container.BaseDIInstance

	graph   *router.Graph
	storage PoolStore
	config  *config.StorageConfig
	logger  *common.ServiceLogger

	pools *ShardedPoolMap

	// writeMu orders pool writes so the map, the graph and the persistence
	// queue always see them in the same sequence.
	writeMu sync.Mutex

	// pendingPools holds the latest unsaved state per pool.
	pendingPools   map[solana.PublicKey]*domain.Pool
	pendingPoolsMu sync.Mutex

	updateCount  atomic.Uint64
	skippedStale atomic.Uint64

	done chan struct{}
	wg   sync.WaitGroup
}

// NewService builds a Service outside of the DI container. storage may be nil.
func NewService(graph *router.Graph, storage PoolStore, conf *config.StorageConfig) *Service {
	svc := &Service{graph: graph, storage: storage, config: conf}
	svc.init()
	return svc
}

func (svc *Service) ID() string {
	return MARKET_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.config = c.GetConfig(config.STORAGE_CONFIG_KEY).(*config.StorageConfig)
	if svc.config == nil {
		return errors.New("invalid storage config")
	}
	svc.graph = c.Instance(router.ROUTER_GRAPH_SERVICE).(*router.Graph)

	if svc.config.PersistenceEnabled {
		storage, err := persistence.NewStorage(svc.config.DBPath)
		if err != nil {
			return err
		}
		svc.storage = storage
	}
	svc.init()
	return nil
}

func (svc *Service) init() {
	svc.logger = common.NewServiceLogger(svc)
	svc.pools = NewShardedPoolMap()
	svc.pendingPools = make(map[solana.PublicKey]*domain.Pool)
	svc.done = make(chan struct{})
}

func (svc *Service) Start() error {
	if svc.storage != nil {
		if err := svc.loadFromStorage(); err != nil {
			return err
		}
		svc.wg.Add(1)
		go svc.processPersistence()
	}

	svc.wg.Add(1)
	go svc.logStats()
	return nil
}

// Stop flushes every known pool before closing the database.
func (svc *Service) Stop() error {
	close(svc.done)
	svc.wg.Wait()

	if svc.storage == nil {
		return nil
	}

	allPools := svc.pools.GetAll()
	if len(allPools) > 0 {
		svc.logger.Info().Int("count", len(allPools)).Msg("persisting all pools before shutdown")
		if err := svc.storage.SavePoolBatch(allPools); err != nil {
			svc.logger.Error().Err(err).Msg("failed to persist pools on shutdown")
		}
	}
	if err := svc.storage.Close(); err != nil {
		svc.logger.Error().Err(err).Msg("failed to close storage")
		return err
	}
	return nil
}

func (svc *Service) loadFromStorage() error {
	mints, err := svc.storage.LoadAllMints()
	if err != nil {
		return fmt.Errorf("load mints: %w", err)
	}
	svc.graph.UpsertMints(mints...)

	pools, err := svc.storage.LoadAllPools()
	if err != nil {
		return fmt.Errorf("load pools: %w", err)
	}

	valid := make([]*domain.Pool, 0, len(pools))
	for _, pool := range pools {
		if err := ValidatePool(pool); err != nil {
			svc.logger.Warn().Err(err).Msg("dropping stored pool")
			continue
		}
		svc.pools.Set(pool.Address, pool)
		valid = append(valid, pool)
	}
	svc.graph.UpsertPools(valid...)

	svc.logger.Info().Int("pools", len(valid)).Int("mints", len(mints)).Msg("loaded state from storage")
	return nil
}

// Ingest applies pool states. A state older than the stored one (by
// LastUpdatedSlot) is skipped. It returns the number of pools applied.
// Any invalid pool aborts the whole call before anything is applied.
func (svc *Service) Ingest(pools ...*domain.Pool) (int, error) {
	for _, pool := range pools {
		if err := ValidatePool(pool); err != nil {
			return 0, err
		}
	}

	svc.writeMu.Lock()
	defer svc.writeMu.Unlock()

	applied := make([]*domain.Pool, 0, len(pools))
	for _, pool := range pools {
		incoming := pool.Clone()
		stored := svc.pools.Update(incoming.Address, func(current *domain.Pool) *domain.Pool {
			if current != nil && current.LastUpdatedSlot > incoming.LastUpdatedSlot {
				return nil
			}
			return incoming
		})
		if stored == nil {
			svc.skippedStale.Add(1)
			continue
		}
		applied = append(applied, incoming)
	}
	if len(applied) == 0 {
		return 0, nil
	}

	svc.updateCount.Add(uint64(len(applied)))
	svc.graph.UpsertPools(applied...)
	svc.queuePoolsForPersistence(applied)
	return len(applied), nil
}

// Deactivate takes a pool out of routing while keeping its record.
func (svc *Service) Deactivate(addr solana.PublicKey) bool {
	svc.writeMu.Lock()
	defer svc.writeMu.Unlock()

	stored := svc.pools.Update(addr, func(current *domain.Pool) *domain.Pool {
		if current == nil {
			return nil
		}
		next := current.Clone()
		next.Active = false
		return next
	})
	if stored == nil {
		return false
	}
	svc.graph.UpsertPools(stored)
	svc.queuePoolsForPersistence([]*domain.Pool{stored})
	return true
}

// UpsertMints records token decimals and persists them synchronously.
func (svc *Service) UpsertMints(mints ...domain.MintInfo) error {
	for _, m := range mints {
		if m.Address.IsZero() {
			return errors.New("mint address is required")
		}
	}
	if svc.storage != nil {
		if err := svc.storage.SaveMintBatch(mints); err != nil {
			return fmt.Errorf("persist mints: %w", err)
		}
	}
	svc.graph.UpsertMints(mints...)
	return nil
}

func (svc *Service) GetPool(addr solana.PublicKey) *domain.Pool {
	if pool, ok := svc.pools.Get(addr); ok {
		return pool.Clone()
	}
	return nil
}

// GetStats returns (pool count, applied updates, skipped stale updates).
func (svc *Service) GetStats() (int, uint64, uint64) {
	return svc.pools.Len(), svc.updateCount.Load(), svc.skippedStale.Load()
}

func (svc *Service) queuePoolsForPersistence(pools []*domain.Pool) {
	if svc.storage == nil {
		return
	}
	svc.pendingPoolsMu.Lock()
	for _, pool := range pools {
		svc.pendingPools[pool.Address] = pool
	}
	svc.pendingPoolsMu.Unlock()
}

// requeue puts back states from a failed flush unless a newer state for the
// same pool was queued while the flush was running.
func (svc *Service) requeue(pools []*domain.Pool) {
	svc.pendingPoolsMu.Lock()
	for _, pool := range pools {
		if _, newer := svc.pendingPools[pool.Address]; !newer {
			svc.pendingPools[pool.Address] = pool
		}
	}
	svc.pendingPoolsMu.Unlock()
}

func (svc *Service) processPersistence() {
	defer svc.wg.Done()
	ticker := time.NewTicker(time.Duration(svc.config.PersistInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-svc.done:
			return
		case <-ticker.C:
			svc.persistPendingPools()
		}
	}
}

func (svc *Service) persistPendingPools() {
	svc.pendingPoolsMu.Lock()
	if len(svc.pendingPools) == 0 {
		svc.pendingPoolsMu.Unlock()
		return
	}
	pools := make([]*domain.Pool, 0, len(svc.pendingPools))
	for _, pool := range svc.pendingPools {
		pools = append(pools, pool)
	}
	svc.pendingPools = make(map[solana.PublicKey]*domain.Pool)
	svc.pendingPoolsMu.Unlock()

	if err := svc.storage.SavePoolBatch(pools); err != nil {
		metrics.PersistFailures.Inc()
		svc.logger.Error().Err(err).Int("count", len(pools)).Msg("failed to persist pools")
		svc.requeue(pools)
		return
	}

	metrics.PoolsPersisted.Add(float64(len(pools)))
	svc.logger.Debug().Int("count", len(pools)).Msg("persisted pools to storage")
}

func (svc *Service) logStats() {
	defer svc.wg.Done()
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-svc.done:
			return
		case <-ticker.C:
			poolCount, updates, stale := svc.GetStats()
			_, routable, tokens, version := svc.graph.Stats()
			svc.logger.Info().
				Int("pools", poolCount).
				Int("routable_pools", routable).
				Int("tokens", tokens).
				Uint64("pool_updates", updates).
				Uint64("stale_skipped", stale).
				Uint64("snapshot_version", version).
				Msg("stats")
		}
	}
}
