package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/memorial"
	"github.com/fwojciec/memorial/anthropic"
	"github.com/fwojciec/memorial/gemini"
	"github.com/fwojciec/memorial/openai"
)

// apiKeys holds the per-provider keys found in the environment.
type apiKeys struct {
	gemini    string
	anthropic string
	openai    string
}

// keysFromEnv reads provider keys. API_KEY is accepted for gemini.
func keysFromEnv(getenv func(string) string) apiKeys {
	gk := getenv("GEMINI_API_KEY")
	if gk == "" {
		gk = getenv("API_KEY")
	}
	return apiKeys{
		gemini:    gk,
		anthropic: getenv("ANTHROPIC_API_KEY"),
		openai:    getenv("OPENAI_API_KEY"),
	}
}

// backend is a constructed provider. titler is nil when titles should be
// generated by streaming through provider.
type backend struct {
	name     string
	provider memorial.Provider
	titler   memorial.Titler
}

// resolveProvider selects and constructs the provider. All env var values are
// passed in through keys; env is only read in main.
func resolveProvider(ctx context.Context, cfg config, keys apiKeys) (backend, error) {
	name := cfg.Provider

	// Auto-detect from env vars if not configured.
	if name == "" {
		var found []string
		if keys.gemini != "" {
			found = append(found, "gemini")
		}
		if keys.anthropic != "" {
			found = append(found, "anthropic")
		}
		if keys.openai != "" {
			found = append(found, "openai")
		}
		switch len(found) {
		case 0:
			return backend{}, fmt.Errorf("no API key found: set GEMINI_API_KEY, ANTHROPIC_API_KEY or OPENAI_API_KEY (or use --provider and --api-key)")
		case 1:
			name = found[0]
		default:
			return backend{}, fmt.Errorf("multiple API keys found (%s): use --provider to select", strings.Join(found, ", "))
		}
	}

	// Explicit key overrides env var.
	key := cfg.APIKey
	switch name {
	case "gemini":
		if key == "" {
			key = keys.gemini
		}
		if key == "" {
			return backend{}, fmt.Errorf("GEMINI_API_KEY not set (use --api-key or the environment)")
		}
		client, err := gemini.New(ctx, key)
		if err != nil {
			return backend{}, fmt.Errorf("gemini: %w", err)
		}
		return backend{name: name, provider: client, titler: client}, nil
	case "anthropic":
		if key == "" {
			key = keys.anthropic
		}
		if key == "" {
			return backend{}, fmt.Errorf("ANTHROPIC_API_KEY not set (use --api-key or the environment)")
		}
		return backend{name: name, provider: anthropic.New(key, anthropic.WithBaseURL(cfg.BaseURL))}, nil
	case "openai":
		if key == "" {
			key = keys.openai
		}
		if key == "" {
			return backend{}, fmt.Errorf("OPENAI_API_KEY not set (use --api-key or the environment)")
		}
		return backend{name: name, provider: openai.New(key, openai.WithBaseURL(cfg.BaseURL))}, nil
	default:
		return backend{}, fmt.Errorf("unknown provider %q: must be \"gemini\", \"anthropic\" or \"openai\"", name)
	}
}
