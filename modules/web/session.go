package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studiosix/photostudio/pkg/jwt"
)

const sessionCookieName = "studio_session"

type contextKey struct{ name string }

var accountIDKey = contextKey{"account_id"}

// accountIDFromContext returns the authenticated account ID, if any.
func accountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDKey).(uuid.UUID)
	return id, ok
}

func (m *Module) issueSession(w http.ResponseWriter, accountID uuid.UUID) error {
	now := time.Now()
	token, err := m.sessions.Generate(jwt.StandardClaims{
		Subject:   accountID.String(),
		Issuer:    "photostudio",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.cfg.SessionTTL).Unix(),
	})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   strings.HasPrefix(m.cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Module) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionAccountID parses the session cookie and returns the account ID.
func (m *Module) sessionAccountID(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, false
	}
	var claims jwt.StandardClaims
	if err := m.sessions.Parse(cookie.Value, &claims); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// requireAuth rejects requests without a valid session.
func (m *Module) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.sessionAccountID(r)
		if !ok {
			m.respondError(w, r, errUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountIDKey, id)))
	})
}

// optionalAuth attaches the account ID when a valid session is present and
// passes the request through otherwise.
func (m *Module) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := m.sessionAccountID(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), accountIDKey, id))
		}
		next.ServeHTTP(w, r)
	})
}
