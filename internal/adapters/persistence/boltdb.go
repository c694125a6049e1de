package persistence

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/swap-router/internal/domain"
)

const (
	PoolsBucket = "pools"
	MintsBucket = "mints"

	DefaultDBPath = "./data/router.db"
)

type StoredPool struct {
	Address         string `json:"address"`
	TokenMintA      string `json:"tokenMintA"`
	TokenMintB      string `json:"tokenMintB"`
	ReserveA        string `json:"reserveA"`
	ReserveB        string `json:"reserveB"`
	FeeNumerator    uint64 `json:"feeNumerator"`
	FeeDenominator  uint64 `json:"feeDenominator"`
	Active          bool   `json:"active"`
	LastUpdatedSlot uint64 `json:"lastUpdatedSlot"`
}

type StoredMint struct {
	Decimals uint8 `json:"decimals"`
}

type Storage struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[routerStorage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) SavePool(pool *domain.Pool) error {
	data, err := sonic.Marshal(poolToStored(pool))
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}
	return s.db.Set(PoolsBucket, []byte(pool.Address.String()), data)
}

// SavePoolBatch writes all pools in a single transaction.
func (s *Storage) SavePoolBatch(pools []*domain.Pool) error {
	if len(pools) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, pool := range pools {
		data, err := sonic.Marshal(poolToStored(pool))
		if err != nil {
			return fmt.Errorf("failed to marshal pool %s: %w", pool.Address.String(), err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(PoolsBucket),
			Key:    []byte(pool.Address.String()),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add pool %s to batch: %w", pool.Address.String(), err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(pools)).Msg("[routerStorage] FAILED to execute batch")
		return err
	}

	log.Debug().Int("count", len(pools)).Msg("[routerStorage] saved pool batch")
	return nil
}

// LoadAllPools returns every stored pool. Corrupt records are logged and skipped.
func (s *Storage) LoadAllPools() ([]*domain.Pool, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	pools := make([]*domain.Pool, 0, len(data))
	failed := 0
	for address, value := range data {
		var stored StoredPool
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Error().Str("address", address).Err(err).Msg("[routerStorage] failed to unmarshal pool, skipping")
			failed++
			continue
		}

		pool, err := storedToPool(&stored)
		if err != nil {
			log.Error().Str("address", address).Err(err).Msg("[routerStorage] failed to convert stored pool, skipping")
			failed++
			continue
		}
		pools = append(pools, pool)
	}

	ev := log.Info()
	if failed > 0 {
		ev = log.Error().Int("failed", failed)
	}
	ev.Int("total_in_db", len(data)).Int("loaded", len(pools)).Msg("[routerStorage] pool loading completed")

	return pools, nil
}

func (s *Storage) SaveMintBatch(mints []domain.MintInfo) error {
	if len(mints) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, mint := range mints {
		data, err := sonic.Marshal(StoredMint{Decimals: mint.Decimals})
		if err != nil {
			return fmt.Errorf("failed to marshal mint %s: %w", mint.Address.String(), err)
		}
		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(MintsBucket),
			Key:    []byte(mint.Address.String()),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add mint %s to batch: %w", mint.Address.String(), err)
		}
	}
	return batch.Execute()
}

func (s *Storage) LoadAllMints() ([]domain.MintInfo, error) {
	data, err := s.db.List(MintsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list mints: %w", err)
	}

	mints := make([]domain.MintInfo, 0, len(data))
	for address, value := range data {
		var stored StoredMint
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Warn().Str("address", address).Err(err).Msg("[routerStorage] failed to unmarshal mint, skipping")
			continue
		}
		mint, err := solana.PublicKeyFromBase58(address)
		if err != nil {
			log.Warn().Str("address", address).Err(err).Msg("[routerStorage] invalid mint address, skipping")
			continue
		}
		mints = append(mints, domain.MintInfo{Address: mint, Decimals: stored.Decimals})
	}
	return mints, nil
}

func poolToStored(pool *domain.Pool) *StoredPool {
	reserveA := "0"
	reserveB := "0"
	if pool.ReserveA != nil {
		reserveA = pool.ReserveA.String()
	}
	if pool.ReserveB != nil {
		reserveB = pool.ReserveB.String()
	}

	return &StoredPool{
		Address:         pool.Address.String(),
		TokenMintA:      pool.TokenMintA.String(),
		TokenMintB:      pool.TokenMintB.String(),
		ReserveA:        reserveA,
		ReserveB:        reserveB,
		FeeNumerator:    pool.FeeNumerator,
		FeeDenominator:  pool.FeeDenominator,
		Active:          pool.Active,
		LastUpdatedSlot: pool.LastUpdatedSlot,
	}
}

func storedToPool(stored *StoredPool) (*domain.Pool, error) {
	address, err := solana.PublicKeyFromBase58(stored.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	tokenMintA, err := solana.PublicKeyFromBase58(stored.TokenMintA)
	if err != nil {
		return nil, fmt.Errorf("invalid tokenMintA: %w", err)
	}

	tokenMintB, err := solana.PublicKeyFromBase58(stored.TokenMintB)
	if err != nil {
		return nil, fmt.Errorf("invalid tokenMintB: %w", err)
	}

	reserveA, ok := new(big.Int).SetString(stored.ReserveA, 10)
	if !ok {
		return nil, fmt.Errorf("invalid reserveA %q", stored.ReserveA)
	}
	reserveB, ok := new(big.Int).SetString(stored.ReserveB, 10)
	if !ok {
		return nil, fmt.Errorf("invalid reserveB %q", stored.ReserveB)
	}

	return &domain.Pool{
		Address:         address,
		TokenMintA:      tokenMintA,
		TokenMintB:      tokenMintB,
		ReserveA:        reserveA,
		ReserveB:        reserveB,
		FeeNumerator:    stored.FeeNumerator,
		FeeDenominator:  stored.FeeDenominator,
		Active:          stored.Active,
		LastUpdatedSlot: stored.LastUpdatedSlot,
	}, nil
}
