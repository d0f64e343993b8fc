package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements BillingProvider on the official Paddle SDK.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle-backed billing provider.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironment, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}, nil
}

// CreateCustomer registers the email with Paddle and returns the ctm_ id.
func (p *PaddleProvider) CreateCustomer(ctx context.Context, email string) (string, error) {
	customer, err := p.client.CustomersClient.CreateCustomer(ctx, &paddle.CreateCustomerRequest{
		Email: email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create paddle customer: %w", err)
	}
	return customer.ID, nil
}

// CreateCheckoutSession creates a Paddle transaction with a hosted checkout.
func (p *PaddleProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceRef,
		Quantity: 1,
	})

	txnReq := &paddle.CreateTransactionRequest{
		Items:      []paddle.CreateTransactionItems{*item},
		CustomerID: paddle.PtrTo(req.CustomerRef),
	}
	if req.SuccessURL != "" {
		txnReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}
	if req.DiscountCode != "" {
		txnReq.DiscountID = paddle.PtrTo(req.DiscountCode)
	}

	txn, err := p.client.TransactionsClient.CreateTransaction(ctx, txnReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}

	if txn.Checkout == nil || txn.Checkout.URL == nil || *txn.Checkout.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutSession{
		URL:       *txn.Checkout.URL,
		SessionID: txn.ID,
		// Paddle checkout links typically expire in 24 hours.
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// RetrieveSession resolves a transaction back to its customer and price.
func (p *PaddleProvider) RetrieveSession(ctx context.Context, sessionID string) (*SessionDetails, error) {
	txn, err := p.client.TransactionsClient.GetTransaction(ctx, &paddle.GetTransactionRequest{
		TransactionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve paddle transaction: %w", err)
	}

	return sessionDetailsFromTransaction(txn), nil
}

// sessionDetailsFromTransaction pulls the customer and first-item price out
// of a transaction. Price is a struct value in the SDK, so absence reads as a
// zero value, not nil.
func sessionDetailsFromTransaction(txn *paddle.Transaction) *SessionDetails {
	details := &SessionDetails{}
	if txn.CustomerID != nil {
		details.CustomerRef = *txn.CustomerID
	}
	if len(txn.Items) > 0 && txn.Items[0].Price.ID != "" {
		details.PriceRef = txn.Items[0].Price.ID
	}
	return details
}

// CreateBillingPortalSession returns a pre-authenticated portal link.
func (p *PaddleProvider) CreateBillingPortalSession(ctx context.Context, customerRef, _ string) (*PortalSession, error) {
	session, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, &paddle.CreateCustomerPortalSessionRequest{
		CustomerID: customerRef,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle portal session: %w", err)
	}
	if session.URLs.General.Overview == "" {
		return nil, ErrNoPortalURL
	}
	return &PortalSession{
		URL: session.URLs.General.Overview,
		// Portal links typically expire in 24 hours.
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// ParseWebhook verifies the Paddle-Signature header and normalizes the event.
// Verification failure yields ErrEventVerificationFailed and no event.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventVerificationFailed, err)
	}
	if !valid {
		return nil, ErrEventVerificationFailed
	}

	var raw struct {
		EventType string         `json:"event_type"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	event := &Event{
		Kind:          mapPaddleEventKind(raw.EventType),
		ProviderEvent: raw.EventType,
		Raw:           raw.Data,
	}
	if ref, ok := raw.Data["customer_id"].(string); ok {
		event.CustomerRef = ref
	}
	if status, ok := raw.Data["status"].(string); ok {
		event.Status = strings.ToLower(status)
	}
	event.PriceRef = extractPaddlePriceRef(raw.Data)

	return event, nil
}

// extractPaddlePriceRef digs the first item's price id out of the event data.
// Subscription events nest it under items[0].price.id, transaction events
// expose items[0].price_id directly.
func extractPaddlePriceRef(data map[string]any) string {
	items, ok := data["items"].([]any)
	if !ok || len(items) == 0 {
		return ""
	}
	item, ok := items[0].(map[string]any)
	if !ok {
		return ""
	}
	if priceID, ok := item["price_id"].(string); ok {
		return priceID
	}
	if price, ok := item["price"].(map[string]any); ok {
		if priceID, ok := price["id"].(string); ok {
			return priceID
		}
	}
	return ""
}

func mapPaddleEventKind(providerEvent string) EventKind {
	switch providerEvent {
	case "transaction.completed":
		return EventCheckoutCompleted
	case "subscription.created", "subscription.activated", "subscription.updated", "subscription.resumed":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionDeleted
	default:
		// Unmapped events pass through under their provider name; the
		// reconciler ignores kinds it does not handle.
		return EventKind(providerEvent)
	}
}
