// Command genbridge is an interactive chat client for Gemini models.
//
// Configuration comes from the environment (see Config). Lines are sent as chat messages and the
// reply is streamed. Commands: /image <path|https-url> attaches an image to the next message, /tokens counts
// the transcript, /history prints it, /reset starts a new conversation, /quit exits.
package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/skosovsky/genbridge"
	"github.com/skosovsky/genbridge/adapter/gemini"
	"github.com/skosovsky/genbridge/embedregistry"
	"github.com/skosovsky/genbridge/ext/otelgenbridge"
	"github.com/skosovsky/genbridge/fileregistry"
	"github.com/skosovsky/genbridge/remoteregistry"

	"google.golang.org/genai"
)

//go:embed profiles/*.yaml
var builtinProfiles embed.FS

func main() {
	cfg, err := loadConfig(nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, closeRegistry, err := newRegistry(cfg, logger)
	if err != nil {
		logger.Error("failed to build profile registry", "err", err)
		os.Exit(1)
	}
	defer closeRegistry()

	modelCfg, err := resolveModelConfig(ctx, cfg, registry)
	if err != nil {
		logger.Error("failed to resolve model profile", "profile", cfg.Profile, "env", cfg.Env, "err", err)
		os.Exit(1)
	}

	var opts []gemini.Option
	if cfg.Vertex {
		opts = append(opts, gemini.WithBackend(genai.BackendVertexAI))
	}
	var provider genbridge.Provider = gemini.New(opts...)
	if cfg.Trace {
		provider = otelgenbridge.Wrap(provider)
	}

	if err := run(ctx, provider, modelCfg, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("chat ended", "err", err)
		os.Exit(1)
	}
}

// newRegistry picks the profile source: remote URL, local directory, or the profiles built into the binary.
func newRegistry(cfg Config, logger *slog.Logger) (genbridge.ProfileRegistry, func(), error) {
	switch {
	case cfg.ProfileURL != "":
		f, err := remoteregistry.NewHTTPFetcher(cfg.ProfileURL,
			remoteregistry.WithAuthToken(cfg.ProfileToken),
			remoteregistry.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, err
		}
		r := remoteregistry.New(f, remoteregistry.WithTTL(cfg.ProfileTTL))
		return r, func() { _ = r.Close() }, nil
	case cfg.ProfileDir != "":
		return fileregistry.New(cfg.ProfileDir), func() {}, nil
	default:
		r, err := embedregistry.New(builtinProfiles, "profiles")
		if err != nil {
			return nil, nil, err
		}
		return r, func() {}, nil
	}
}

// resolveModelConfig loads the profile and applies the API key and an optional model override.
func resolveModelConfig(ctx context.Context, cfg Config, registry genbridge.ProfileRegistry) (genbridge.ModelConfig, error) {
	profile, err := registry.GetProfile(ctx, cfg.Profile, cfg.Env)
	if err != nil {
		return genbridge.ModelConfig{}, err
	}
	out := *profile
	out.APIKey = cfg.APIKey
	if cfg.Model != "" {
		out.ModelName = cfg.Model
	}
	return out, nil
}

func logAttrs(cfg genbridge.ModelConfig) []any {
	return []any{
		slog.String("model", cfg.ModelName),
		slog.Int("safety_settings", len(cfg.SafetySettings)),
	}
}
