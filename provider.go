package genbridge

import (
	"context"
	"iter"
)

// Provider builds model handles for a vendor SDK. adapter/gemini is the genai implementation.
type Provider interface {
	// NewModel constructs a model handle for cfg. Malformed configuration fails with the vendor's error.
	NewModel(ctx context.Context, cfg ModelConfig) (Model, error)
}

// Model is a configured connection to one generative model.
type Model interface {
	// Name returns the model name the handle was built for.
	Name() string
	// Generate sends one user turn made of parts and returns the full response text.
	Generate(ctx context.Context, parts []Part) (string, error)
	// GenerateStream sends one user turn and yields response text chunks in arrival order.
	GenerateStream(ctx context.Context, parts []Part) iter.Seq2[string, error]
	// CountTokens returns the vendor-reported total token count for contents.
	CountTokens(ctx context.Context, contents []Content) (int, error)
	// StartChat opens a conversation seeded with history.
	StartChat(ctx context.Context, history []Content) (Conversation, error)
}

// Conversation is a stateful multi-turn exchange bound to a Model.
// Send and SendStream append the user message and the model reply to the transcript.
type Conversation interface {
	Send(ctx context.Context, parts []Part) (string, error)
	SendStream(ctx context.Context, parts []Part) iter.Seq2[string, error]
	// History returns the full transcript in stored order.
	History() []Content
}

// ProfileRegistry resolves named model profiles (ModelConfig without an API key).
type ProfileRegistry interface {
	GetProfile(ctx context.Context, name, env string) (*ModelConfig, error)
}
