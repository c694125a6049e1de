package router

import (
	"math/big"

	"github.com/holiman/uint256"
)

const bpsDenom = 10000

var bigBpsDenom = big.NewInt(bpsDenom)

// MulDivU256 returns floor(a * b / c), or ceil when roundUp is set. Operands
// that do not fit 256 bits, or a product that overflows, fall back to big.Int.
// c must be positive.
func MulDivU256(a, b, c *big.Int, roundUp bool) *big.Int {
	var x, y, z uint256.Int
	overflowA := x.SetFromBig(a)
	overflowB := y.SetFromBig(b)
	overflowC := z.SetFromBig(c)
	if overflowA || overflowB || overflowC || a.Sign() < 0 || b.Sign() < 0 {
		return mulDivBig(a, b, c, roundUp)
	}

	var prod uint256.Int
	if _, overflow := prod.MulOverflow(&x, &y); overflow {
		return mulDivBig(a, b, c, roundUp)
	}

	var q, r uint256.Int
	q.DivMod(&prod, &z, &r)
	if roundUp && !r.IsZero() {
		q.AddUint64(&q, 1)
	}
	return q.ToBig()
}

func mulDivBig(a, b, c *big.Int, roundUp bool) *big.Int {
	num := new(big.Int).Mul(a, b)
	if roundUp {
		return ceilQuo(new(big.Int), num, c)
	}
	return num.Quo(num, c)
}

// MinAmountOut returns amountOut * (10000 - slippageBps) / 10000, rounded down.
func MinAmountOut(amountOut *big.Int, slippageBps uint16) *big.Int {
	if slippageBps >= bpsDenom {
		return new(big.Int)
	}
	keep := big.NewInt(int64(bpsDenom - slippageBps))
	return MulDivU256(amountOut, keep, bigBpsDenom, false)
}

// MaxAmountIn returns amountIn * 10000 / (10000 - slippageBps), rounded up.
// Slippage of 100% or more degenerates to amountIn.
func MaxAmountIn(amountIn *big.Int, slippageBps uint16) *big.Int {
	if slippageBps >= bpsDenom {
		return new(big.Int).Set(amountIn)
	}
	keep := big.NewInt(int64(bpsDenom - slippageBps))
	return MulDivU256(amountIn, bigBpsDenom, keep, true)
}
