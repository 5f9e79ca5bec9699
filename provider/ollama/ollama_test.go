package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/provider"
)

var _ provider.Provider = (*Provider)(nil)

func newFakeOllama(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(func(o *Options) { o.Endpoint = ts.URL })
}

func TestGenerate(t *testing.T) {
	t.Run("ReturnsResponseField", func(t *testing.T) {
		var got generateRequest
		p := newFakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/generate", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(generateResponse{Response: "three days in Lisbon"})
		})

		out, err := p.Generate(context.Background(), provider.Request{
			Prompt:       "plan a trip",
			SystemPrompt: "you are a planner",
			MaxTokens:    800,
			Temperature:  0.7,
		})
		require.NoError(t, err)
		assert.Equal(t, "three days in Lisbon", out)

		assert.Equal(t, "llama3.2", got.Model)
		assert.Equal(t, "you are a planner", got.System)
		assert.False(t, got.Stream)
	})

	t.Run("EmptyResponseIsMalformed", func(t *testing.T) {
		p := newFakeOllama(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(generateResponse{})
		})

		_, err := p.Generate(context.Background(), provider.Request{Prompt: "x"})
		require.Error(t, err)
		assert.Equal(t, provider.KindMalformed, provider.Classify(err))
	})

	t.Run("ServerErrorIsTransport", func(t *testing.T) {
		p := newFakeOllama(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		})

		_, err := p.Generate(context.Background(), provider.Request{Prompt: "x"})
		require.Error(t, err)
		assert.Equal(t, provider.KindTransport, provider.Classify(err))

		var perr *provider.Error
		require.True(t, errors.As(err, &perr))
		assert.Contains(t, perr.Message, "500")
	})

	t.Run("UnreachableServerIsTransport", func(t *testing.T) {
		p := New(func(o *Options) { o.Endpoint = "http://127.0.0.1:1" })

		_, err := p.Generate(context.Background(), provider.Request{Prompt: "x"})
		require.Error(t, err)
		assert.Equal(t, provider.KindTransport, provider.Classify(err))
	})
}

func TestHealth(t *testing.T) {
	p := newFakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, p.Health(context.Background()))

	down := New(func(o *Options) { o.Endpoint = "http://127.0.0.1:1" })
	assert.Error(t, down.Health(context.Background()))
}

func TestInfo(t *testing.T) {
	info := New().Info()
	assert.Equal(t, "ollama", info.Name)
	assert.True(t, info.ProbeBeforeCall)
}
