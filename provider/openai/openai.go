// Package openai provides a provider.Provider backed by the OpenAI Chat
// Completions API. Because Groq exposes the same wire format, the adapter
// also serves as the Groq backend via a custom base URL (NewGroq).
package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tripmesh/tripmesh/provider"
)

// GroqBaseURL is the OpenAI-compatible endpoint of the Groq API.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Options configure the adapter. Fields mirror a subset of Chat Completion
// parameters intentionally kept minimal; extend via functional options
// without breaking callers.
type Options struct {
	// Name is the provider identity reported to the fallback manager.
	Name    string
	Model   string
	APIKey  string
	BaseURL string
	// Timeout is the hard per-call deadline enforced by the manager.
	Timeout time.Duration
}

// Provider wraps the Chat Completions API behind the provider.Provider interface.
type Provider struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI-backed provider using the official client.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Name:    "openai",
		Model:   string(openai.ChatModelGPT4oMini),
		Timeout: 30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &Provider{client: &client, opts: opts}
}

// NewGroq creates a Groq-backed provider. Groq is fast, so it carries a short
// timeout profile by default.
func NewGroq(apiKey, model string, optFns ...func(o *Options)) *Provider {
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	fns := append([]func(o *Options){func(o *Options) {
		o.Name = "groq"
		o.APIKey = apiKey
		o.Model = model
		o.BaseURL = GroqBaseURL
		o.Timeout = 30 * time.Second
	}}, optFns...)
	return New(fns...)
}

// Generate implements provider.Provider. A length-truncated completion is
// still returned as a usable success.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(p.opts.Model),
		Messages:            messages,
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(req.MaxTokens),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", provider.NewError(provider.KindMalformed, "no choices in response")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", provider.NewError(provider.KindBlocked, "completion blocked by content filter")
	}
	if choice.Message.Content == "" {
		return "", provider.NewError(provider.KindMalformed, "empty completion content")
	}
	return choice.Message.Content, nil
}

// Health implements provider.Provider by listing available models.
func (p *Provider) Health(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Info implements provider.Provider.
func (p *Provider) Info() provider.Info {
	return provider.Info{Name: p.opts.Name, Timeout: p.opts.Timeout}
}

// classify maps SDK errors onto the shared failure taxonomy.
func classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			return provider.WrapError(provider.KindRateLimited, "api rate limit", err)
		case apierr.StatusCode == http.StatusRequestTimeout || apierr.StatusCode == http.StatusGatewayTimeout:
			return provider.WrapError(provider.KindTimeout, "api timeout", err)
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
