// tripmeshd serves the trip planner: REST endpoints for plan creation and
// session health, plus the per-trip WebSocket update channel.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tripmesh/tripmesh"
	"github.com/tripmesh/tripmesh/config"
	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/provider"
	"github.com/tripmesh/tripmesh/provider/anthropic"
	"github.com/tripmesh/tripmesh/provider/ollama"
	"github.com/tripmesh/tripmesh/provider/openai"
	"github.com/tripmesh/tripmesh/realtime"
	"github.com/tripmesh/tripmesh/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.LevelError, "text").Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)

	providers := buildProviders(cfg, logger)
	if len(providers) == 0 {
		logger.Error("no providers enabled; set TRIPMESH_PROVIDERS_*_ENABLED")
		os.Exit(1)
	}

	manager := provider.NewManager(providers, func(o *provider.Options) {
		o.RetryBudget = cfg.Providers.RetryBudget
		o.InitialBackoff = cfg.Providers.InitialBackoff
		o.RatePerSecond = cfg.Providers.RatePerSecond
		o.Logger = logger
	})

	hub := realtime.NewHub(func(o *realtime.HubOptions) {
		o.MaxConnections = cfg.Realtime.MaxConnections
		o.BufferSize = cfg.Realtime.BufferSize
		o.Logger = logger
	})

	mesh := tripmesh.New(manager, func(o *tripmesh.Options) {
		o.Hub = hub
		o.Logger = logger
		o.MonitorOptions = []func(*realtime.MonitorOptions){func(o *realtime.MonitorOptions) {
			o.Interval = cfg.Realtime.MonitorInterval
			o.Logger = logger
		}}
	})
	defer mesh.Monitor().Shutdown()

	srv := server.New(mesh, mesh.Sessions(), hub, mesh.Monitor(), manager, func(o *server.Options) {
		o.Logger = logger
	})

	httpServer := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     srv,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("tripmeshd listening", "addr", cfg.Server.Addr, "providers", len(providers))
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// buildProviders assembles the fallback chain in fixed priority order:
// groq, openai, anthropic, ollama.
func buildProviders(cfg *config.Config, logger logging.Logger) []provider.Provider {
	var providers []provider.Provider

	if c := cfg.Providers.Groq; c.Enabled && c.APIKey != "" {
		p := openai.NewGroq(c.APIKey, c.Model, func(o *openai.Options) { o.Timeout = c.Timeout })
		providers = append(providers, p)
		logger.Info("provider enabled", "provider", "groq", "model", c.Model)
	}
	if c := cfg.Providers.OpenAI; c.Enabled && c.APIKey != "" {
		p := openai.New(func(o *openai.Options) {
			o.APIKey = c.APIKey
			o.Model = c.Model
			o.Timeout = c.Timeout
		})
		providers = append(providers, p)
		logger.Info("provider enabled", "provider", "openai", "model", c.Model)
	}
	if c := cfg.Providers.Anthropic; c.Enabled && c.APIKey != "" {
		p := anthropic.New(func(o *anthropic.Options) {
			o.APIKey = c.APIKey
			o.Model = c.Model
			o.Timeout = c.Timeout
		})
		providers = append(providers, p)
		logger.Info("provider enabled", "provider", "anthropic", "model", c.Model)
	}
	if c := cfg.Providers.Ollama; c.Enabled {
		p := ollama.New(func(o *ollama.Options) {
			o.Endpoint = c.Endpoint
			o.Model = c.Model
			o.Timeout = c.Timeout
		})
		providers = append(providers, p)
		logger.Info("provider enabled", "provider", "ollama", "endpoint", c.Endpoint)
	}
	return providers
}
