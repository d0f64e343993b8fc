package web

import (
	"log/slog"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/studiosix/photostudio/pkg/account"
	"github.com/studiosix/photostudio/pkg/billing"
	"github.com/studiosix/photostudio/pkg/credits"
	"github.com/studiosix/photostudio/pkg/file"
	"github.com/studiosix/photostudio/pkg/handoff"
	"github.com/studiosix/photostudio/pkg/jwt"
	"github.com/studiosix/photostudio/pkg/studio"
)

// Module wires the core services into an HTTP router.
type Module struct {
	cfg        Config
	accounts   *account.Service
	ledger     *credits.Ledger
	reconciler *billing.Reconciler
	broker     *handoff.Broker
	orch       *studio.Orchestrator
	artifacts  file.Storage
	sessions   *jwt.Service
	logger     *slog.Logger
}

// Option configures the module.
type Option func(*Module)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Module) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewModule creates the HTTP module. All dependencies are required.
func NewModule(
	cfg Config,
	accounts *account.Service,
	ledger *credits.Ledger,
	reconciler *billing.Reconciler,
	broker *handoff.Broker,
	orch *studio.Orchestrator,
	artifacts file.Storage,
	opts ...Option,
) (*Module, error) {
	if accounts == nil {
		panic("web: account service is required")
	}
	if ledger == nil {
		panic("web: credit ledger is required")
	}
	if reconciler == nil {
		panic("web: billing reconciler is required")
	}
	if broker == nil {
		panic("web: handoff broker is required")
	}
	if orch == nil {
		panic("web: studio orchestrator is required")
	}
	if artifacts == nil {
		panic("web: artifact storage is required")
	}

	sessions, err := jwt.New([]byte(cfg.SessionSecret))
	if err != nil {
		return nil, err
	}

	m := &Module{
		cfg:        cfg,
		accounts:   accounts,
		ledger:     ledger,
		reconciler: reconciler,
		broker:     broker,
		orch:       orch,
		artifacts:  artifacts,
		sessions:   sessions,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cfg.BaseURL = strings.TrimRight(m.cfg.BaseURL, "/")
	return m, nil
}

// Router builds the full route tree.
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Post("/signup", m.handleSignup)
	r.Post("/login", m.handleLogin)
	r.Post("/logout", m.handleLogout)

	// Webhook endpoint authenticates via signature, not session.
	r.Post("/billing/webhook", m.handleWebhook)

	// Phone-side handoff endpoints carry no session; the token itself is
	// the capability.
	r.Post("/mobile/upload/{token}", m.handleMobileUpload)
	r.Get("/mobile/status/{token}", m.handleMobileStatus)
	r.Get("/mobile/qrcode/{token}", m.handleMobileQRCode)

	// Starting a handoff works anonymously but binds the token to the
	// account when a session is present.
	r.With(m.optionalAuth).Post("/mobile/start", m.handleMobileStart)

	r.Group(func(r chi.Router) {
		r.Use(m.requireAuth)

		r.Get("/me", m.handleMe)
		r.Post("/transform", m.handleTransform)
		r.Get("/generations", m.handleGenerations)

		r.Post("/upgrade", m.handleUpgrade)
		r.Get("/post-checkout", m.handlePostCheckout)
		r.Get("/billing-portal", m.handleBillingPortal)
	})

	return r
}
