package domain

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// Quote is a RouteInfo decorated for the caller: both sides of the trade,
// the slippage-adjusted threshold and the price impact of the route.
type Quote struct {
	Route RouteInfo
	Side  SwapSide

	InputMint  solana.PublicKey
	OutputMint solana.PublicKey

	AmountIn  *big.Int
	AmountOut *big.Int

	// OtherAmountThreshold is the minimum output (bid) or maximum input (ask).
	OtherAmountThreshold *big.Int
	SlippageBps          uint16

	PriceImpactBps uint16

	RoutesEvaluated int
	SnapshotVersion uint64
}
