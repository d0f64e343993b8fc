package billing

import "errors"

var (
	ErrEventVerificationFailed = errors.New("event signature verification failed")
	ErrUnknownPriceRef         = errors.New("unknown price reference")
	ErrUnknownEventKind        = errors.New("unknown billing event kind")
	ErrCustomerNotFound        = errors.New("billing customer not found")
	ErrNoCheckoutURL           = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL             = errors.New("no portal URL returned from provider")
	ErrInvalidPriceTable       = errors.New("invalid price table")

	// Provider configuration errors.
	ErrMissingAPIKey        = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret = errors.New("billing provider webhook secret is required")
	ErrInvalidEnvironment   = errors.New("invalid billing provider environment")
)
