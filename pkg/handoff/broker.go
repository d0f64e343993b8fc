package handoff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studiosix/photostudio/pkg/qrcode"
)

// DefaultQRSize is the rendered QR code edge length in pixels.
const DefaultQRSize = 256

// Broker issues, resolves and invalidates upload tokens.
type Broker struct {
	store   TokenStore
	baseURL string
	qrSize  int
	logger  *slog.Logger
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithQRSize sets the rendered QR code size in pixels.
func WithQRSize(size int) BrokerOption {
	return func(b *Broker) {
		if size > 0 {
			b.qrSize = size
		}
	}
}

// WithBrokerLogger sets a custom logger.
func WithBrokerLogger(logger *slog.Logger) BrokerOption {
	return func(b *Broker) {
		b.logger = logger
	}
}

// NewBroker creates a Broker. baseURL is the externally reachable prefix the
// upload URL is built from (e.g. "https://studio.example.com"). Panics on a
// nil store to fail fast during initialization.
func NewBroker(store TokenStore, baseURL string, opts ...BrokerOption) *Broker {
	if store == nil {
		panic("handoff: TokenStore is required")
	}
	b := &Broker{
		store:   store,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		qrSize:  DefaultQRSize,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Create issues a fresh token, optionally bound to the requesting account.
func (b *Broker) Create(ctx context.Context, ownerID *uuid.UUID) (*Token, error) {
	token := &Token{
		ID:        newTokenID(),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.store.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to create upload token: %w", err)
	}
	return token, nil
}

// UploadURL returns the externally-shareable URL device B opens to deposit an
// image into the token.
func (b *Broker) UploadURL(tokenID string) string {
	return fmt.Sprintf("%s/mobile/upload/%s", b.baseURL, tokenID)
}

// QRCode renders the upload URL as a PNG. The encoding is a pure function of
// the URL string; it carries no state beyond the token embedded in it.
func (b *Broker) QRCode(tokenID string) ([]byte, error) {
	return qrcode.Generate(b.UploadURL(tokenID), b.qrSize)
}

// QRDataURI renders the upload URL as a base64 PNG data URI for direct
// embedding.
func (b *Broker) QRDataURI(tokenID string) (string, error) {
	return qrcode.GenerateDataURI(b.UploadURL(tokenID), b.qrSize)
}

// Deposit sets the token's artifact exactly once. A retried deposit after
// success is rejected with ErrTokenAlreadyUsed, not overwritten; unknown or
// expired tokens yield ErrTokenNotFound. The user restarts the handoff in
// either case.
func (b *Broker) Deposit(ctx context.Context, tokenID, artifactRef string) error {
	if artifactRef == "" {
		return ErrEmptyArtifact
	}
	if err := b.store.ConsumeToken(ctx, tokenID, artifactRef); err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "upload token consumed",
		slog.String("token", tokenID),
	)
	return nil
}

// Poll reports the token's state without side effects. Unknown tokens are a
// state, not an error, so device A's polling loop stays uniform.
func (b *Broker) Poll(ctx context.Context, tokenID string) (PollResult, error) {
	token, err := b.store.GetToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return PollResult{State: StateUnknown}, nil
		}
		return PollResult{}, err
	}
	if token.Used && token.ArtifactRef != "" {
		return PollResult{State: StateReady, ArtifactRef: token.ArtifactRef}, nil
	}
	return PollResult{State: StatePending}, nil
}
