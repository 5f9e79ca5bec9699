// Package ollama provides a provider.Provider backed by a local Ollama
// server. There is no official Go SDK; the adapter speaks the small JSON API
// directly over net/http.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tripmesh/tripmesh/provider"
)

// Options configure the Ollama adapter. Local generation is slow, so the
// default timeout profile is long.
type Options struct {
	Endpoint string // e.g. http://localhost:11434
	Model    string
	Timeout  time.Duration
}

// Provider implements provider.Provider for Ollama's /api/generate endpoint.
type Provider struct {
	opts   Options
	client *http.Client
}

// New creates an Ollama provider.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Endpoint: "http://localhost:11434",
		Model:    "llama3.2",
		Timeout:  120 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{
		opts: opts,
		// Per-call deadlines come from the caller's context; the client
		// timeout is only a safety net.
		client: &http.Client{Timeout: opts.Timeout + 10*time.Second},
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  p.opts.Model,
		Prompt: req.Prompt,
		System: req.SystemPrompt,
		Stream: false,
		Options: map[string]any{
			"num_predict": req.MaxTokens,
			"temperature": req.Temperature,
		},
	})
	if err != nil {
		return "", provider.WrapError(provider.KindMalformed, "marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.Endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", provider.WrapError(provider.KindTransport, "create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", provider.WrapError(provider.KindTimeout, "generate timed out", err)
		}
		return "", provider.WrapError(provider.KindTransport, "cannot reach ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", provider.NewError(provider.KindTransport,
			fmt.Sprintf("ollama returned %d: %s", resp.StatusCode, string(data)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", provider.WrapError(provider.KindMalformed, "decode response", err)
	}
	if out.Response == "" {
		return "", provider.NewError(provider.KindMalformed, "empty response field")
	}
	return out.Response, nil
}

// Health implements provider.Provider by checking the tags endpoint, the
// cheapest call the server answers when it is up.
func (p *Provider) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.Endpoint+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama tags returned %d", resp.StatusCode)
	}
	return nil
}

// Info implements provider.Provider. The pre-call probe avoids burning the
// long local timeout when the server is simply not running.
func (p *Provider) Info() provider.Info {
	return provider.Info{Name: "ollama", Timeout: p.opts.Timeout, ProbeBeforeCall: true}
}
