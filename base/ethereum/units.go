package ethereum

import (
	"math/big"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/nftmarket/domain"
)

// ToBaseUnits converts a display amount into the integer amount of a token
// with the given decimals, 1.5 eth becomes 1500000000000000000 wei.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, xerrors.Errorf("negative amount %s: %w", amount, domain.ErrInvalidPrice)
	}
	shifted := amount.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, xerrors.Errorf("amount %s exceeds %d decimals: %w", amount, decimals, domain.ErrInvalidPrice)
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits is the inverse of ToBaseUnits
func FromBaseUnits(value *big.Int, decimals int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -decimals)
}
