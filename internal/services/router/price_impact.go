package router

import (
	"math/big"

	"github.com/hxuan190/swap-router/internal/domain"
)

// Price impact thresholds in basis points (bps)
const (
	PriceImpactLow      uint16 = 100  // 1% - Low impact
	PriceImpactModerate uint16 = 300  // 3% - Moderate impact
	PriceImpactHigh     uint16 = 500  // 5% - High impact
	PriceImpactExtreme  uint16 = 1000 // 10% - Extreme impact
)

// PriceImpactSeverity represents the severity level of price impact
type PriceImpactSeverity string

const (
	SeverityNone     PriceImpactSeverity = "none"     // < 1%
	SeverityLow      PriceImpactSeverity = "low"      // 1-3%
	SeverityModerate PriceImpactSeverity = "moderate" // 3-5%
	SeverityHigh     PriceImpactSeverity = "high"     // 5-10%
	SeverityExtreme  PriceImpactSeverity = "extreme"  // > 10%
)

// GetPriceImpactSeverity returns the severity level based on price impact bps
func GetPriceImpactSeverity(priceImpactBps uint16) PriceImpactSeverity {
	switch {
	case priceImpactBps < PriceImpactLow:
		return SeverityNone
	case priceImpactBps < PriceImpactModerate:
		return SeverityLow
	case priceImpactBps < PriceImpactHigh:
		return SeverityModerate
	case priceImpactBps < PriceImpactExtreme:
		return SeverityHigh
	default:
		return SeverityExtreme
	}
}

// CalculateRoutePriceImpact compares the execution rate of a route with its
// fee-adjusted spot rate:
//
//	spot   = prod(reserveOut_i * (den_i - num_i)) / prod(reserveIn_i * den_i)
//	impact = (spot - amountOut/amountIn) / spot * 10000
//
// Fees are priced into spot so the result is pure curve slippage.
func CalculateRoutePriceImpact(route domain.RouteInfo, amountIn, amountOut *big.Int) uint16 {
	if route.IsEmpty() || amountIn == nil || amountOut == nil {
		return 0
	}
	if amountIn.Sign() <= 0 || amountOut.Sign() <= 0 {
		return 0
	}

	spotNum := big.NewInt(1)
	spotDen := big.NewInt(1)
	tmp := new(big.Int)
	for _, hop := range route.Hops {
		if hop.Pool == nil || hop.Pool.FeeDenominator == 0 || hop.Pool.FeeNumerator >= hop.Pool.FeeDenominator {
			return 0
		}
		reserveIn, reserveOut, ok := hop.Pool.Reserves(hop.SrcMint.Address, hop.DstMint.Address)
		if !ok || reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
			return 0
		}
		spotNum.Mul(spotNum, reserveOut)
		spotNum.Mul(spotNum, tmp.SetUint64(hop.Pool.FeeDenominator-hop.Pool.FeeNumerator))
		spotDen.Mul(spotDen, reserveIn)
		spotDen.Mul(spotDen, tmp.SetUint64(hop.Pool.FeeDenominator))
	}

	// spot vs effective, both over the common denominator amountIn * spotDen
	spot := new(big.Int).Mul(amountIn, spotNum)
	effective := new(big.Int).Mul(amountOut, spotDen)
	if effective.Cmp(spot) >= 0 {
		return 0
	}

	impact := new(big.Int).Sub(spot, effective)
	impact.Mul(impact, bigBpsDenom)
	impact.Quo(impact, spot)

	// Cap at max uint16
	if !impact.IsUint64() || impact.Uint64() > 65535 {
		return 65535
	}
	return uint16(impact.Uint64())
}

// GetPriceImpactWarning returns a user-friendly warning message based on impact
func GetPriceImpactWarning(priceImpactBps uint16) string {
	severity := GetPriceImpactSeverity(priceImpactBps)

	switch severity {
	case SeverityNone:
		return ""
	case SeverityLow:
		return "Low price impact"
	case SeverityModerate:
		return "Moderate price impact - consider reducing trade size"
	case SeverityHigh:
		return "High price impact - you may receive significantly less tokens"
	case SeverityExtreme:
		return "EXTREME price impact - this trade will severely impact the market price"
	default:
		return ""
	}
}
