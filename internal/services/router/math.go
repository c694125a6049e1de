package router

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/swap-router/internal/domain"
)

var (
	// ErrIlliquidPool is returned when a reserve on the swap path is nil or non-positive.
	ErrIlliquidPool = errors.New("illiquid pool")
	// ErrInsufficientLiquidity is returned when an exact-out swap would drain the output reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrInvalidFee is returned when the fee fraction is not in [0, 1).
	ErrInvalidFee = errors.New("invalid fee")
	// ErrInvalidAmount is returned for nil or negative amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrTokenMismatch is returned when the pool does not join the requested pair.
	ErrTokenMismatch = errors.New("token mismatch")
	// ErrNoViableRoute is the aggregate outcome when every candidate route failed.
	ErrNoViableRoute = errors.New("no viable route")
)

// Direction selects which side of a hop is known.
type Direction uint8

const (
	// ExactIn: amount in is known, simulate the output (floor).
	ExactIn Direction = iota
	// ExactOut: amount out is wanted, simulate the required input (ceil).
	ExactOut
)

var one = big.NewInt(1)

// calculator holds scratch values so a simulation allocates only its result.
// Instances are not safe for concurrent use; they live in calculatorPool.
type calculator struct {
	feeKeep  *big.Int
	feeDen   *big.Int
	afterFee *big.Int
	num      *big.Int
	den      *big.Int
}

var calculatorPool = sync.Pool{
	New: func() any {
		return &calculator{
			feeKeep:  new(big.Int),
			feeDen:   new(big.Int),
			afterFee: new(big.Int),
			num:      new(big.Int),
			den:      new(big.Int),
		}
	},
}

// Simulate runs one hop of a swap through pool from src to dst.
func Simulate(pool *domain.Pool, src, dst solana.PublicKey, amount *big.Int, dir Direction) (*big.Int, error) {
	if dir == ExactOut {
		return SimulateExactOut(pool, src, dst, amount)
	}
	return SimulateExactIn(pool, src, dst, amount)
}

// SimulateExactIn returns the output of swapping amountIn of src for dst:
//
//	inAfterFee = floor(amountIn * (den - num) / den)
//	out        = floor(inAfterFee * reserveOut / (reserveIn + inAfterFee))
//
// which equals reserveOut - ceil(reserveIn*reserveOut / (reserveIn + inAfterFee)),
// so the constant product never decreases.
func SimulateExactIn(pool *domain.Pool, src, dst solana.PublicKey, amountIn *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	reserveIn, reserveOut, err := hopReserves(pool, src, dst)
	if err != nil {
		return nil, err
	}

	calc := calculatorPool.Get().(*calculator)
	defer calculatorPool.Put(calc)

	calc.setFee(pool)
	calc.afterFee.Mul(amountIn, calc.feeKeep)
	calc.afterFee.Quo(calc.afterFee, calc.feeDen)

	calc.num.Mul(calc.afterFee, reserveOut)
	calc.den.Add(reserveIn, calc.afterFee)

	return new(big.Int).Quo(calc.num, calc.den), nil
}

// SimulateExactOut returns the input of src needed to receive amountOut of dst:
//
//	inAfterFee = ceil(reserveIn * amountOut / (reserveOut - amountOut))
//	amountIn   = ceil(inAfterFee * den / (den - num))
func SimulateExactOut(pool *domain.Pool, src, dst solana.PublicKey, amountOut *big.Int) (*big.Int, error) {
	if amountOut == nil || amountOut.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	reserveIn, reserveOut, err := hopReserves(pool, src, dst)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: amountOut %s >= reserveOut %s in pool %s",
			ErrInsufficientLiquidity, amountOut, reserveOut, pool.Address)
	}

	calc := calculatorPool.Get().(*calculator)
	defer calculatorPool.Put(calc)

	calc.setFee(pool)

	calc.num.Mul(reserveIn, amountOut)
	calc.den.Sub(reserveOut, amountOut)
	ceilQuo(calc.afterFee, calc.num, calc.den)

	calc.num.Mul(calc.afterFee, calc.feeDen)
	return ceilQuo(new(big.Int), calc.num, calc.feeKeep), nil
}

func (c *calculator) setFee(pool *domain.Pool) {
	c.feeDen.SetUint64(pool.FeeDenominator)
	c.feeKeep.SetUint64(pool.FeeDenominator - pool.FeeNumerator)
}

// hopReserves validates the pool for a src->dst hop and returns its reserves.
func hopReserves(pool *domain.Pool, src, dst solana.PublicKey) (reserveIn, reserveOut *big.Int, err error) {
	if pool == nil {
		return nil, nil, ErrIlliquidPool
	}
	if pool.FeeDenominator == 0 || pool.FeeNumerator >= pool.FeeDenominator {
		return nil, nil, fmt.Errorf("%w: %d/%d in pool %s", ErrInvalidFee, pool.FeeNumerator, pool.FeeDenominator, pool.Address)
	}
	reserveIn, reserveOut, ok := pool.Reserves(src, dst)
	if !ok {
		return nil, nil, fmt.Errorf("%w: pool %s does not join %s -> %s", ErrTokenMismatch, pool.Address, src, dst)
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrIlliquidPool, pool.Address)
	}
	return reserveIn, reserveOut, nil
}

// ceilQuo sets z = ceil(x / y) for x >= 0, y > 0 and returns z.
func ceilQuo(z, x, y *big.Int) *big.Int {
	r := new(big.Int)
	z.QuoRem(x, y, r)
	if r.Sign() > 0 {
		z.Add(z, one)
	}
	return z
}
