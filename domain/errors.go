package domain

import "errors"

var (
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput       = errors.New("Given Param is not valid")
	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInvalidPrice        = errors.New("invalid price")

	// request error
	ErrInvalidAddress = errors.New("Invalid address")

	// ErrDataUnavailable is returned when no listing snapshot could be fetched nor restored
	ErrDataUnavailable = errors.New("listing data unavailable")
	// ErrTxInFlight is returned when a transaction for the same token is still pending
	ErrTxInFlight = errors.New("a transaction for this token is already pending")
	// ErrSignerUnavailable is returned when no signing key is configured
	ErrSignerUnavailable = errors.New("signer unavailable")
	// ErrNotForSale is returned when buying a token which is not listed in the requested currency
	ErrNotForSale = errors.New("token is not for sale")
	// ErrPriceMismatch is returned when the offered price differs from the listed price
	ErrPriceMismatch = errors.New("price does not match listing")
)
