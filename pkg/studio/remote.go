package studio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteConfig configures the HTTP image-model client.
type RemoteConfig struct {
	Endpoint string        `env:"MODEL_API_URL,required"`
	APIKey   string        `env:"MODEL_API_KEY,required"`
	Timeout  time.Duration `env:"MODEL_HTTP_TIMEOUT" envDefault:"90s"`
}

// RemoteGenerator implements Generator against an HTTP image-editing model
// endpoint. The wire contract is a single JSON POST: base64 input image plus
// the instruction text in, base64 output image back.
type RemoteGenerator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// RemoteOption configures a RemoteGenerator.
type RemoteOption func(*RemoteGenerator)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(g *RemoteGenerator) {
		if client != nil {
			g.client = client
		}
	}
}

// NewRemoteGenerator creates an HTTP-backed generator.
func NewRemoteGenerator(cfg RemoteConfig, opts ...RemoteOption) (*RemoteGenerator, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrGenerationFailed)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	g := &RemoteGenerator{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type remoteRequest struct {
	Instruction string `json:"instruction"`
	Image       string `json:"image"`
}

type remoteResponse struct {
	Image string `json:"image"`
	Error string `json:"error,omitempty"`
}

// Generate sends the image and instruction to the model endpoint. The
// orchestrator owns the deadline; this call honors ctx cancellation.
func (g *RemoteGenerator) Generate(ctx context.Context, image []byte, instruction string) ([]byte, error) {
	body, err := json.Marshal(remoteRequest{
		Instruction: instruction,
		Image:       base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model returned status %d: %s", resp.StatusCode, truncate(payload, 256))
	}

	var out remoteResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("model error: %s", out.Error)
	}
	if out.Image == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(out.Image)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
