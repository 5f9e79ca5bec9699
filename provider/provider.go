package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Request captures the normalized generation input produced by workers.
// It is an immutable value; the manager never mutates it across attempts.
type Request struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	MaxTokens    int64   `json:"max_tokens"`
	Temperature  float64 `json:"temperature"`
}

// Result is the outcome of one Generate call. Success is true iff Content is
// non-empty and came from exactly one provider. Once returned, a Result is
// never retried internally.
type Result struct {
	Content  string    `json:"content"`
	Provider string    `json:"provider,omitempty"`
	Success  bool      `json:"success"`
	Failures []Failure `json:"failures,omitempty"`
}

// FailureKind classifies a provider call outcome.
type FailureKind int

const (
	// KindRateLimited means the provider rejected the call due to quota.
	KindRateLimited FailureKind = iota
	// KindTimeout means the call exceeded its hard deadline.
	KindTimeout
	// KindMalformed means the provider answered with an unusable payload.
	KindMalformed
	// KindBlocked means the provider refused the content (safety filter).
	KindBlocked
	// KindTransport covers connection and protocol level errors.
	KindTransport
)

// String returns the string representation of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed_response"
	case KindBlocked:
		return "blocked_content"
	case KindTransport:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Transient reports whether the kind warrants an in-place retry on the same
// provider. Rate-limited and blocked outcomes are not transient: they mark
// the provider unavailable for the remainder of the call chain.
func (k FailureKind) Transient() bool {
	return k == KindTimeout || k == KindTransport
}

// MarshalJSON renders the kind as its string form.
func (k FailureKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Failure records one failed provider attempt in attempt order.
type Failure struct {
	Provider string      `json:"provider"`
	Kind     FailureKind `json:"kind"`
	Message  string      `json:"message"`
}

// Error is a classified provider failure. Adapters wrap vendor SDK errors
// into this type so the manager can branch on Kind without per-vendor logic.
type Error struct {
	Kind    FailureKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped vendor error.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a classified provider error without a cause.
func NewError(kind FailureKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError wraps a vendor error with a classification.
func WrapError(kind FailureKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Classify maps an arbitrary error onto a FailureKind. Unclassified errors
// default to transport since that is the safest retry policy.
func Classify(err error) FailureKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindTransport
}

// Info contains metadata about a provider implementation. Timeout profiles
// are provider specific: fast hosted APIs get short deadlines, slow local
// backends get long ones.
type Info struct {
	// Name identifies the provider in results, logs and sticky ordering.
	Name string
	// Timeout is the hard per-call deadline for Generate.
	Timeout time.Duration
	// ProbeBeforeCall requests a health probe before the first Generate in a
	// call chain. Used by local backends that may simply not be running.
	ProbeBeforeCall bool
}

// Provider is the minimal interface an interchangeable generation backend
// must implement. Generate returns raw text or a classified error; it must
// honor context cancellation since the manager applies hard timeouts.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Health(ctx context.Context) error
	Info() Info
}
