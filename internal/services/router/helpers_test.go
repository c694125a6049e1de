package router

import (
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/swap-router/internal/domain"
)

// testKey returns a deterministic key whose byte order follows b.
func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = b
	k[31] = 0xff
	return k
}

var (
	mintA = testKey(0xa1)
	mintB = testKey(0xa2)
	mintC = testKey(0xa3)
	mintD = testKey(0xa4)
)

func cpPool(addr solana.PublicKey, a, b solana.PublicKey, reserveA, reserveB int64) *domain.Pool {
	return &domain.Pool{
		Address:        addr,
		TokenMintA:     a,
		TokenMintB:     b,
		ReserveA:       big.NewInt(reserveA),
		ReserveB:       big.NewInt(reserveB),
		FeeNumerator:   3,
		FeeDenominator: 1000,
		Active:         true,
	}
}

func registry(pools ...*domain.Pool) domain.PoolRegistry {
	reg := make(domain.PoolRegistry, len(pools))
	for _, p := range pools {
		reg[p.Address] = p
	}
	return reg
}

func mints() domain.MintRegistry {
	return domain.MintRegistry{
		mintA: {Address: mintA, Decimals: 9},
		mintB: {Address: mintB, Decimals: 6},
		mintC: {Address: mintC, Decimals: 6},
	}
}

func trace(pools ...solana.PublicKey) domain.RouteTrace {
	return domain.RouteTrace{Pools: pools}
}
