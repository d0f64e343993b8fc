package billing

import (
	"context"
	"time"
)

// BillingProvider is the minimal payment processor abstraction. The processor
// handles all payment complexity through hosted checkouts and customer
// portals; this core only ever sees customer references, price references and
// signed events.
//
// Implementations must verify event authenticity inside ParseWebhook before
// returning anything: an unverifiable payload yields
// ErrEventVerificationFailed and nothing else.
type BillingProvider interface {
	// CreateCustomer registers the email with the processor and returns the
	// processor's customer reference.
	CreateCustomer(ctx context.Context, email string) (string, error)

	// CreateCheckoutSession creates a hosted checkout session.
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// RetrieveSession resolves a completed checkout session to the customer
	// and price it was for. Used by the synchronous return-redirect path.
	RetrieveSession(ctx context.Context, sessionID string) (*SessionDetails, error)

	// CreateBillingPortalSession returns a pre-authenticated customer portal
	// link where users manage payment methods and cancellation.
	CreateBillingPortalSession(ctx context.Context, customerRef, returnURL string) (*PortalSession, error)

	// ParseWebhook validates the signature and normalizes the event.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	CustomerRef  string // processor's customer reference
	PriceRef     string // processor's price identifier
	SuccessURL   string // redirect after successful payment
	CancelURL    string // redirect if the customer backs out
	DiscountCode string // optional promotion applied at checkout
}

// CheckoutSession represents a hosted checkout session.
type CheckoutSession struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// SessionDetails is what the sync confirmation path needs from a completed
// checkout session.
type SessionDetails struct {
	CustomerRef string
	PriceRef    string
}

// PortalSession represents a customer portal session.
type PortalSession struct {
	URL       string
	ExpiresAt time.Time
}

// EventKind is the normalized billing event type. Provider implementations
// map their specific event names onto these.
type EventKind string

const (
	EventCheckoutCompleted   EventKind = "checkout_completed"
	EventSubscriptionUpdated EventKind = "subscription_updated"
	EventSubscriptionDeleted EventKind = "subscription_deleted"
)

// Event is a normalized, signature-verified webhook event.
type Event struct {
	Kind          EventKind
	ProviderEvent string // original provider event name
	CustomerRef   string
	PriceRef      string
	Status        string // provider's subscription status, lower case
	Raw           map[string]any
}

// SubscriptionActive reports whether the event's status keeps the
// subscription entitled. Trialing counts as active.
func (e *Event) SubscriptionActive() bool {
	switch e.Status {
	case "active", "trialing":
		return true
	default:
		return false
	}
}
