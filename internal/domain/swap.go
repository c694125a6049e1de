package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// SwapSide names the side of the swap whose amount the user fixed.
type SwapSide uint8

const (
	// SideBid: the user fixed what they put in.
	SideBid SwapSide = iota
	// SideAsk: the user fixed what they want out.
	SideAsk
)

func (s SwapSide) String() string {
	switch s {
	case SideBid:
		return "bid"
	case SideAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// ParseSwapSide accepts "bid"/"ask" and the ExactIn/ExactOut aliases.
func ParseSwapSide(s string) (SwapSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid", "exactin":
		return SideBid, nil
	case "ask", "exactout":
		return SideAsk, nil
	default:
		return 0, fmt.Errorf("unknown swap side %q", s)
	}
}

type SwapRequest struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey

	// Amount is in smallest units of InputMint (bid) or OutputMint (ask).
	Amount *big.Int
	Side   SwapSide

	// MaxHops <= 0 selects the configured default.
	MaxHops int

	SlippageBps uint16

	// PoolFilter restricts routing to the single-hop route through this pool.
	PoolFilter *solana.PublicKey
}
