package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studiosix/photostudio/pkg/file"
	"github.com/studiosix/photostudio/pkg/handoff"
	"github.com/studiosix/photostudio/pkg/studio"
)

type mobileStartResponse struct {
	Token     string `json:"token"`
	UploadURL string `json:"upload_url"`
	QRCodeURL string `json:"qrcode_url"`
	StatusURL string `json:"status_url"`
}

// handleMobileStart mints an upload token for the desktop session. The phone
// never authenticates; scanning the QR code is what transfers authority.
func (m *Module) handleMobileStart(w http.ResponseWriter, r *http.Request) {
	var ownerID *uuid.UUID
	if id, ok := accountIDFromContext(r.Context()); ok {
		ownerID = &id
	}

	token, err := m.broker.Create(r.Context(), ownerID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusCreated, mobileStartResponse{
		Token:     token.ID,
		UploadURL: m.broker.UploadURL(token.ID),
		QRCodeURL: fmt.Sprintf("%s/mobile/qrcode/%s", m.cfg.BaseURL, token.ID),
		StatusURL: fmt.Sprintf("%s/mobile/status/%s", m.cfg.BaseURL, token.ID),
	})
}

func (m *Module) handleMobileQRCode(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "token")

	// Refuse to render codes for tokens that were never minted or have
	// already expired.
	res, err := m.broker.Poll(r.Context(), tokenID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	if res.State == handoff.StateUnknown {
		m.respondError(w, r, handoff.ErrTokenNotFound)
		return
	}

	png, err := m.broker.QRCode(tokenID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// handleMobileUpload receives the phone's photo and deposits it against the
// token. The deposit is first-writer-wins; a second upload gets 409. Each
// upload is stored under its own path so a losing deposit can never replace
// the bytes the accepted ref points to, it is merely orphaned.
func (m *Module) handleMobileUpload(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "token")

	// Fast-fail before accepting bytes; the deposit CAS below remains the
	// authoritative check.
	res, err := m.broker.Poll(r.Context(), tokenID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	switch res.State {
	case handoff.StateUnknown:
		m.respondError(w, r, handoff.ErrTokenNotFound)
		return
	case handoff.StateReady:
		m.respondError(w, r, handoff.ErrTokenAlreadyUsed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, m.cfg.MaxUploadBytes)
	f, _, err := r.FormFile("image")
	if err != nil {
		m.respondError(w, r, fmt.Errorf("%w: image part is required", errBadRequest))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		m.respondError(w, r, fmt.Errorf("%w: unreadable image part", errBadRequest))
		return
	}
	contentType, ok := file.SniffImage(data)
	if !ok {
		m.respondError(w, r, studio.ErrUnsupportedImage)
		return
	}

	path := fmt.Sprintf("mobile/%s/%s%s", tokenID, uuid.NewString(), extensionFor(contentType))
	ref, err := m.artifacts.Put(r.Context(), path, bytes.NewReader(data), contentType)
	if err != nil {
		m.respondError(w, r, err)
		return
	}

	if err := m.broker.Deposit(r.Context(), tokenID, ref); err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

type mobileStatusResponse struct {
	Status      string `json:"status"`
	ArtifactURL string `json:"artifact_url,omitempty"`
}

func (m *Module) handleMobileStatus(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "token")

	res, err := m.broker.Poll(r.Context(), tokenID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}

	out := mobileStatusResponse{Status: string(res.State)}
	if res.State == handoff.StateReady {
		out.ArtifactURL = m.artifacts.URL(res.ArtifactRef)
	}
	m.respond(w, http.StatusOK, out)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
