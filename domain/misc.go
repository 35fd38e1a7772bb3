package domain

import (
	"math/big"
	"strings"

	"golang.org/x/xerrors"
)

type Address string

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

// TokenId is the decimal string form of an uint256 token id
type TokenId string

func (i TokenId) String() string {
	return string(i)
}

func (i TokenId) BigInt() (*big.Int, error) {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok || id.Sign() < 0 {
		return nil, xerrors.Errorf("invalid id %s: %w", i, ErrInvalidNumberFormat)
	}
	return id, nil
}

type TxHash string

type BlockNumber uint64
