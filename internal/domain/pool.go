package domain

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/gagliardetto/solana-go"
)

type PoolRegistry map[solana.PublicKey]*Pool
type MintRegistry map[solana.PublicKey]MintInfo

// MintInfo is the token metadata the router carries through to each hop.
type MintInfo struct {
	Address  solana.PublicKey `json:"address"`
	Decimals uint8            `json:"decimals"`
}

// Pool is a constant-product liquidity pair. The fee is the fraction
// FeeNumerator/FeeDenominator taken from the input side of a swap.
type Pool struct {
	Address         solana.PublicKey `json:"address"`
	TokenMintA      solana.PublicKey `json:"tokenMintA"`
	TokenMintB      solana.PublicKey `json:"tokenMintB"`
	ReserveA        *big.Int         `json:"reserveA"`
	ReserveB        *big.Int         `json:"reserveB"`
	FeeNumerator    uint64           `json:"feeNumerator"`
	FeeDenominator  uint64           `json:"feeDenominator"`
	Active          bool             `json:"active"`
	LastUpdatedSlot uint64           `json:"lastUpdatedSlot"`
}

// Contains reports whether the pool joins the given token.
func (p *Pool) Contains(mint solana.PublicKey) bool {
	return p.TokenMintA.Equals(mint) || p.TokenMintB.Equals(mint)
}

// OtherMint returns the token reached by crossing the pool from mint.
func (p *Pool) OtherMint(mint solana.PublicKey) (solana.PublicKey, bool) {
	switch {
	case p.TokenMintA.Equals(mint):
		return p.TokenMintB, true
	case p.TokenMintB.Equals(mint):
		return p.TokenMintA, true
	default:
		return solana.PublicKey{}, false
	}
}

// Reserves returns (reserveIn, reserveOut) for a swap from src to dst.
// ok is false when the pool does not join exactly that pair.
func (p *Pool) Reserves(src, dst solana.PublicKey) (reserveIn, reserveOut *big.Int, ok bool) {
	if p.TokenMintA.Equals(src) && p.TokenMintB.Equals(dst) {
		return p.ReserveA, p.ReserveB, true
	}
	if p.TokenMintB.Equals(src) && p.TokenMintA.Equals(dst) {
		return p.ReserveB, p.ReserveA, true
	}
	return nil, nil, false
}

// IsLiquid reports whether both reserves are strictly positive.
func (p *Pool) IsLiquid() bool {
	return p.ReserveA != nil && p.ReserveB != nil && p.ReserveA.Sign() > 0 && p.ReserveB.Sign() > 0
}

// Clone returns a deep copy so snapshots never share reserve values with writers.
func (p *Pool) Clone() *Pool {
	cp := *p
	if p.ReserveA != nil {
		cp.ReserveA = new(big.Int).Set(p.ReserveA)
	}
	if p.ReserveB != nil {
		cp.ReserveB = new(big.Int).Set(p.ReserveB)
	}
	return &cp
}

// SortedAddresses returns the registry keys in ascending byte order.
func (r PoolRegistry) SortedAddresses() []solana.PublicKey {
	addrs := make([]solana.PublicKey, 0, len(r))
	for addr := range r {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	return addrs
}

// Lookup returns the mint info, defaulting to zero decimals for unknown mints.
func (r MintRegistry) Lookup(mint solana.PublicKey) MintInfo {
	if info, ok := r[mint]; ok {
		return info
	}
	return MintInfo{Address: mint}
}
