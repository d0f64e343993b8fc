package studio_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiosix/photostudio/pkg/studio"
)

func TestRemoteGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var req struct {
				Instruction string `json:"instruction"`
				Image       string `json:"image"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "make it a bedroom", req.Instruction)

			input, err := base64.StdEncoding.DecodeString(req.Image)
			require.NoError(t, err)
			assert.Equal(t, []byte("input-bytes"), input)

			_ = json.NewEncoder(w).Encode(map[string]string{
				"image": base64.StdEncoding.EncodeToString([]byte("output-bytes")),
			})
		}))
		defer server.Close()

		gen, err := studio.NewRemoteGenerator(studio.RemoteConfig{
			Endpoint: server.URL,
			APIKey:   "sk-test",
		})
		require.NoError(t, err)

		out, err := gen.Generate(context.Background(), []byte("input-bytes"), "make it a bedroom")
		require.NoError(t, err)
		assert.Equal(t, []byte("output-bytes"), out)
	})

	t.Run("non-200 status", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		gen, err := studio.NewRemoteGenerator(studio.RemoteConfig{Endpoint: server.URL})
		require.NoError(t, err)

		_, err = gen.Generate(context.Background(), []byte("x"), "i")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("model-level error", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "content policy"})
		}))
		defer server.Close()

		gen, err := studio.NewRemoteGenerator(studio.RemoteConfig{Endpoint: server.URL})
		require.NoError(t, err)

		_, err = gen.Generate(context.Background(), []byte("x"), "i")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "content policy")
	})

	t.Run("empty image means no result", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer server.Close()

		gen, err := studio.NewRemoteGenerator(studio.RemoteConfig{Endpoint: server.URL})
		require.NoError(t, err)

		out, err := gen.Generate(context.Background(), []byte("x"), "i")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		t.Parallel()
		_, err := studio.NewRemoteGenerator(studio.RemoteConfig{})
		require.Error(t, err)
	})
}
