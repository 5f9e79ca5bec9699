// Package provider defines the provider-agnostic abstractions for remote text
// generation and the fallback manager that hides provider failure behind a
// single call contract.
//
// Core goals:
//   - Unify interchangeable generation backends behind a single interface
//   - Normalize failure classification (rate-limited, timeout, malformed,
//     blocked, transport) across vendors
//   - Absorb every provider failure into a Result value; Generate never
//     returns an error to the caller
//   - Facilitate lightweight mocking for tests (MockProvider)
//
// Backends (e.g. Groq, Anthropic, Ollama) implement the Provider interface
// from this package so higher layers (workers, orchestrator) remain decoupled
// from vendor SDKs.
package provider
