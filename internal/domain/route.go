package domain

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// RouteTrace is one candidate path, as the ordered pools crossed from the
// source token to the destination token.
type RouteTrace struct {
	Pools []solana.PublicKey `json:"pools"`
}

func (t RouteTrace) Len() int {
	return len(t.Pools)
}

// HopData is one executed leg of a chosen route.
type HopData struct {
	Pool    *Pool    `json:"pool"`
	SrcMint MintInfo `json:"srcMint"`
	DstMint MintInfo `json:"dstMint"`
}

// RouteInfo is the optimizer result. Amounts[i] belongs to Hops[i]; Amount
// is the output for bid-fixed swaps and the required input for ask-fixed ones.
type RouteInfo struct {
	Hops    []HopData  `json:"hops"`
	Amounts []*big.Int `json:"amounts"`
	Amount  *big.Int   `json:"amount"`
}

// EmptyRouteInfo is the "no viable route" result.
func EmptyRouteInfo() RouteInfo {
	return RouteInfo{
		Hops:    []HopData{},
		Amounts: []*big.Int{},
		Amount:  new(big.Int),
	}
}

func (r RouteInfo) IsEmpty() bool {
	return len(r.Hops) == 0
}

// Path returns the token path [src, ..., dst] walked by the hops.
func (r RouteInfo) Path() []solana.PublicKey {
	if len(r.Hops) == 0 {
		return nil
	}
	path := make([]solana.PublicKey, 0, len(r.Hops)+1)
	path = append(path, r.Hops[0].SrcMint.Address)
	for _, hop := range r.Hops {
		path = append(path, hop.DstMint.Address)
	}
	return path
}
