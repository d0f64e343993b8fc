package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/studiosix/photostudio/pkg/credits"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Tier             string    `json:"tier"`
	Subscribed       bool      `json:"subscribed"`
	CreditsRemaining int64     `json:"credits_remaining"`
	CreditsCap       int64     `json:"credits_cap"`
	GenerationCount  int64     `json:"generation_count"`
	CreatedAt        time.Time `json:"created_at"`
}

func toAccountResponse(acc *credits.Account) accountResponse {
	return accountResponse{
		ID:               acc.ID.String(),
		Email:            acc.Email,
		Tier:             string(acc.Tier),
		Subscribed:       acc.Subscribed,
		CreditsRemaining: acc.CreditsRemaining,
		CreditsCap:       acc.CreditsCap,
		GenerationCount:  acc.GenerationCount,
		CreatedAt:        acc.CreatedAt,
	}
}

func (m *Module) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.respondError(w, r, fmt.Errorf("%w: invalid JSON body", errBadRequest))
		return
	}

	acc, err := m.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	if err := m.issueSession(w, acc.ID); err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusCreated, toAccountResponse(acc))
}

func (m *Module) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.respondError(w, r, fmt.Errorf("%w: invalid JSON body", errBadRequest))
		return
	}

	acc, err := m.accounts.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	if err := m.issueSession(w, acc.ID); err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusOK, toAccountResponse(acc))
}

func (m *Module) handleLogout(w http.ResponseWriter, r *http.Request) {
	m.clearSession(w)
	m.respond(w, http.StatusNoContent, nil)
}

type meResponse struct {
	accountResponse
	GenerationCost int64 `json:"generation_cost"`
}

// handleMe returns the current account with its live credit balance and the
// per-generation cost, which the client uses to render the
// remaining-generations counter.
func (m *Module) handleMe(w http.ResponseWriter, r *http.Request) {
	accountID, _ := accountIDFromContext(r.Context())

	acc, err := m.accounts.Get(r.Context(), accountID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusOK, meResponse{
		accountResponse: toAccountResponse(acc),
		GenerationCost:  m.ledger.Cost(),
	})
}
