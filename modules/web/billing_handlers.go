package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/studiosix/photostudio/pkg/billing"
	"github.com/studiosix/photostudio/pkg/credits"
)

// webhookSignatureHeader carries the processor's HMAC over the raw payload.
const webhookSignatureHeader = "Paddle-Signature"

const maxWebhookBytes = 1 << 20

type upgradeRequest struct {
	Tier     string `json:"tier"`
	Interval string `json:"interval"`
}

type checkoutResponse struct {
	CheckoutURL string    `json:"checkout_url"`
	SessionID   string    `json:"session_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// handleUpgrade starts a hosted checkout for a paid tier.
func (m *Module) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	accountID, _ := accountIDFromContext(r.Context())

	var req upgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.respondError(w, r, fmt.Errorf("%w: invalid JSON body", errBadRequest))
		return
	}

	tier := credits.Tier(req.Tier)
	if tier == "" || tier == credits.TierFree {
		m.respondError(w, r, fmt.Errorf("%w: tier must name a paid plan", errBadRequest))
		return
	}
	interval := billing.BillingInterval(req.Interval)
	if interval == "" {
		interval = billing.IntervalMonthly
	}

	session, err := m.reconciler.StartCheckout(r.Context(), accountID, tier, interval,
		m.cfg.BaseURL+m.cfg.CheckoutSuccessPath,
		m.cfg.BaseURL+m.cfg.CheckoutCancelPath,
	)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusOK, checkoutResponse{
		CheckoutURL: session.URL,
		SessionID:   session.SessionID,
		ExpiresAt:   session.ExpiresAt,
	})
}

// handlePostCheckout is the synchronous return path after checkout. It
// confirms the session with the processor and applies the entitlement without
// waiting for the webhook; the later webhook replay is idempotent.
func (m *Module) handlePostCheckout(w http.ResponseWriter, r *http.Request) {
	accountID, _ := accountIDFromContext(r.Context())

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		m.respondError(w, r, fmt.Errorf("%w: session_id is required", errBadRequest))
		return
	}

	if err := m.reconciler.ConfirmCheckout(r.Context(), accountID, sessionID); err != nil {
		m.respondError(w, r, err)
		return
	}

	acc, err := m.accounts.Get(r.Context(), accountID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusOK, toAccountResponse(acc))
}

type portalResponse struct {
	PortalURL string `json:"portal_url"`
}

func (m *Module) handleBillingPortal(w http.ResponseWriter, r *http.Request) {
	accountID, _ := accountIDFromContext(r.Context())

	session, err := m.reconciler.PortalSession(r.Context(), accountID, m.cfg.BaseURL)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusOK, portalResponse{PortalURL: session.URL})
}

// handleWebhook applies a processor event. The raw body must reach the
// reconciler untouched: the signature covers the exact bytes on the wire.
func (m *Module) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		m.respondError(w, r, fmt.Errorf("%w: unreadable payload", errBadRequest))
		return
	}

	err = m.reconciler.ApplyEvent(r.Context(), payload, r.Header.Get(webhookSignatureHeader))
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}
