// Package anthropic provides a provider.Provider backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tripmesh/tripmesh/provider"
)

// Options configure the Anthropic adapter (model id, API key, timeout
// profile). Extend via functional options to preserve stability.
type Options struct {
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Provider wraps the Anthropic Messages API behind the provider.Provider interface.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

// New creates an Anthropic-backed provider using the official client.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model:   string(anthropic.ModelClaude3_5Sonnet20241022),
		Timeout: 45 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Provider{client: &client, opts: opts}
}

// Generate implements provider.Provider. A max_tokens truncated message is
// still returned as a usable success.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.opts.Model),
		MaxTokens:   req.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}

	if string(resp.StopReason) == "refusal" {
		return "", provider.NewError(provider.KindBlocked, "message refused by model")
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", provider.NewError(provider.KindMalformed, "no text blocks in response")
	}
	return b.String(), nil
}

// Health implements provider.Provider. The Messages API has no cheap probe
// endpoint, so listing models stands in for one.
func (p *Provider) Health(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return classify(err)
	}
	return nil
}

// Info implements provider.Provider.
func (p *Provider) Info() provider.Info {
	return provider.Info{Name: "anthropic", Timeout: p.opts.Timeout}
}

func classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			return provider.WrapError(provider.KindRateLimited, "api rate limit", err)
		case apierr.StatusCode >= http.StatusInternalServerError:
			return provider.WrapError(provider.KindTransport, "api server error", err)
		default:
			return provider.WrapError(provider.KindMalformed, "api request rejected", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return provider.WrapError(provider.KindTimeout, "request deadline exceeded", err)
	}
	return provider.WrapError(provider.KindTransport, "api call failed", err)
}
