package studio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/studiosix/photostudio/pkg/credits"
)

// DefaultCallTimeout bounds the external model call.
const DefaultCallTimeout = 60 * time.Second

// Generator is the external image-generation collaborator. Implementations
// wrap a concrete model API; the orchestrator only cares that bytes go in and
// an image comes out or an error does.
type Generator interface {
	Generate(ctx context.Context, image []byte, instruction string) ([]byte, error)
}

// ArtifactStore persists image artifacts and returns an opaque reference.
type ArtifactStore interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) (string, error)
}

// Orchestrator runs the full generation pipeline: authorize, normalize,
// generate, store, record, debit. It holds no per-account locks across the
// model call; the trailing debit re-validates the balance on its own.
type Orchestrator struct {
	ledger    *credits.Ledger
	generator Generator
	artifacts ArtifactStore
	store     GenerationStore
	flows     FlowCatalog
	timeout   time.Duration
	logger    *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithCallTimeout bounds the external model call. A timeout counts as a
// generation failure.
func WithCallTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.timeout = timeout
	}
}

// WithFlowCatalog replaces the built-in instruction set.
func WithFlowCatalog(flows FlowCatalog) OrchestratorOption {
	return func(o *Orchestrator) {
		o.flows = flows
	}
}

// WithOrchestratorLogger sets a custom logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator. Panics if a required dependency is
// nil to fail fast during initialization.
func NewOrchestrator(ledger *credits.Ledger, generator Generator, artifacts ArtifactStore, store GenerationStore, opts ...OrchestratorOption) *Orchestrator {
	if ledger == nil {
		panic("studio: credits.Ledger is required")
	}
	if generator == nil {
		panic("studio: Generator is required")
	}
	if artifacts == nil {
		panic("studio: ArtifactStore is required")
	}
	if store == nil {
		panic("studio: GenerationStore is required")
	}

	o := &Orchestrator{
		ledger:    ledger,
		generator: generator,
		artifacts: artifacts,
		store:     store,
		flows:     DefaultFlowCatalog(),
		timeout:   DefaultCallTimeout,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs one transformation for the account. The balance is checked
// up front so an exhausted account never reaches the model, but the check is
// advisory: the debit at the end is the authoritative one. A failed or empty
// model response leaves no artifact record and costs nothing.
func (o *Orchestrator) Generate(ctx context.Context, accountID uuid.UUID, input io.Reader, flow Flow) (*Generation, error) {
	instruction, err := o.flows.Instruction(flow)
	if err != nil {
		return nil, err
	}

	cost := o.ledger.Cost()
	ok, err := o.ledger.Authorize(ctx, accountID, cost)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, credits.ErrInsufficientCredits
	}

	normalized, err := Normalize(input)
	if err != nil {
		return nil, err
	}

	genID := uuid.New()
	inputRef, err := o.artifacts.Put(ctx, artifactPath("inputs", genID, "jpg"), bytes.NewReader(normalized), "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("failed to store input artifact: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	started := time.Now()
	output, err := o.generator.Generate(callCtx, normalized, instruction)
	if err != nil {
		o.logger.ErrorContext(ctx, "model call failed",
			slog.String("account_id", accountID.String()),
			slog.String("flow", string(flow)),
			slog.Duration("elapsed", time.Since(started)),
			slog.Any("error", err),
		)
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	if len(output) == 0 {
		return nil, ErrGenerationFailed
	}

	outputRef, err := o.artifacts.Put(ctx, artifactPath("outputs", genID, "png"), bytes.NewReader(output), "image/png")
	if err != nil {
		return nil, fmt.Errorf("failed to store output artifact: %w", err)
	}

	gen := &Generation{
		ID:        genID,
		AccountID: accountID,
		Flow:      flow,
		InputRef:  inputRef,
		OutputRef: outputRef,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.store.CreateGeneration(ctx, gen); err != nil {
		return nil, fmt.Errorf("failed to record generation: %w", err)
	}

	result, err := o.ledger.Debit(ctx, accountID, cost)
	if err != nil {
		// The artifact exists and the record stands; the balance drained
		// between authorize and here. Surface the error so the caller does
		// not treat the account as still funded.
		return nil, err
	}

	o.logger.InfoContext(ctx, "generation completed",
		slog.String("account_id", accountID.String()),
		slog.String("generation_id", genID.String()),
		slog.String("flow", string(flow)),
		slog.Int64("credits_remaining", result.Remaining),
		slog.Duration("elapsed", time.Since(started)),
	)
	return gen, nil
}

// ListGenerations returns the account's generations newest first.
func (o *Orchestrator) ListGenerations(ctx context.Context, accountID uuid.UUID) ([]Generation, error) {
	return o.store.ListGenerations(ctx, accountID)
}

func artifactPath(prefix string, id uuid.UUID, ext string) string {
	return prefix + "/" + id.String() + "." + ext
}
