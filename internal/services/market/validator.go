package market

import (
	"errors"
	"fmt"

	"github.com/hxuan190/swap-router/internal/domain"
)

var ErrInvalidPool = errors.New("invalid pool")

// ValidatePool checks the static shape of a constant-product pool. Zero
// reserves are accepted: such a pool stays in the graph and the simulator
// rejects it per request.
func ValidatePool(pool *domain.Pool) error {
	if pool == nil {
		return fmt.Errorf("%w: nil pool", ErrInvalidPool)
	}
	if pool.Address.IsZero() {
		return fmt.Errorf("%w: missing address", ErrInvalidPool)
	}
	if pool.TokenMintA.IsZero() || pool.TokenMintB.IsZero() {
		return fmt.Errorf("%w: %s missing token mint", ErrInvalidPool, pool.Address)
	}
	if pool.TokenMintA.Equals(pool.TokenMintB) {
		return fmt.Errorf("%w: %s joins %s to itself", ErrInvalidPool, pool.Address, pool.TokenMintA)
	}
	if pool.FeeDenominator == 0 || pool.FeeNumerator >= pool.FeeDenominator {
		return fmt.Errorf("%w: %s fee %d/%d", ErrInvalidPool, pool.Address, pool.FeeNumerator, pool.FeeDenominator)
	}
	if pool.ReserveA == nil || pool.ReserveB == nil {
		return fmt.Errorf("%w: %s missing reserves", ErrInvalidPool, pool.Address)
	}
	if pool.ReserveA.Sign() < 0 || pool.ReserveB.Sign() < 0 {
		return fmt.Errorf("%w: %s negative reserve", ErrInvalidPool, pool.Address)
	}
	return nil
}
