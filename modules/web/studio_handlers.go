package web

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/studiosix/photostudio/pkg/handoff"
	"github.com/studiosix/photostudio/pkg/studio"
)

type generationResponse struct {
	ID        string    `json:"id"`
	Flow      string    `json:"flow"`
	InputURL  string    `json:"input_url"`
	OutputURL string    `json:"output_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Module) toGenerationResponse(gen *studio.Generation) generationResponse {
	return generationResponse{
		ID:        gen.ID.String(),
		Flow:      string(gen.Flow),
		InputURL:  m.artifacts.URL(gen.InputRef),
		OutputURL: m.artifacts.URL(gen.OutputRef),
		CreatedAt: gen.CreatedAt,
	}
}

// handleTransform runs one credit-gated generation. The input comes either
// from a direct multipart upload ("image" part) or from a completed mobile
// handoff ("token" form value).
func (m *Module) handleTransform(w http.ResponseWriter, r *http.Request) {
	accountID, _ := accountIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, m.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(m.cfg.MaxUploadBytes); err != nil {
		m.respondError(w, r, fmt.Errorf("%w: invalid multipart form", errBadRequest))
		return
	}

	flow := studio.Flow(r.FormValue("flow"))
	if flow == "" {
		flow = studio.FlowStaging
	}

	input, err := m.transformInput(r)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	defer input.Close()

	gen, err := m.orch.Generate(r.Context(), accountID, input, flow)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusCreated, m.toGenerationResponse(gen))
}

// transformInput resolves the image source for a transform request.
func (m *Module) transformInput(r *http.Request) (io.ReadCloser, error) {
	if f, _, err := r.FormFile("image"); err == nil {
		return f, nil
	}

	tokenID := r.FormValue("token")
	if tokenID == "" {
		return nil, fmt.Errorf("%w: provide an image part or a handoff token", errBadRequest)
	}
	res, err := m.broker.Poll(r.Context(), tokenID)
	if err != nil {
		return nil, err
	}
	switch res.State {
	case handoff.StateReady:
	case handoff.StatePending:
		return nil, fmt.Errorf("%w: handoff upload not completed yet", errBadRequest)
	default:
		return nil, handoff.ErrTokenNotFound
	}

	rc, _, err := m.artifacts.Get(r.Context(), res.ArtifactRef)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func (m *Module) handleGenerations(w http.ResponseWriter, r *http.Request) {
	accountID, _ := accountIDFromContext(r.Context())

	gens, err := m.orch.ListGenerations(r.Context(), accountID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}

	out := make([]generationResponse, 0, len(gens))
	for i := range gens {
		out = append(out, m.toGenerationResponse(&gens[i]))
	}
	m.respond(w, http.StatusOK, out)
}
