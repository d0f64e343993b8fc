package credits

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUnknownTier         = errors.New("unknown tier")
	ErrInvalidCost         = errors.New("cost must be positive")
	ErrInvalidCatalog      = errors.New("invalid tier catalog")
	ErrCustomerRefBound    = errors.New("billing customer reference already bound")
)
