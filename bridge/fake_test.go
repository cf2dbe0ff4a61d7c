package bridge

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/skosovsky/genbridge"
)

var errVendor = errors.New("vendor: API key not valid")

type fakeProvider struct {
	mu      sync.Mutex
	configs []genbridge.ModelConfig
	// entered, when set, receives a value each time a call reaches the "block" wait.
	entered chan struct{}
}

func (p *fakeProvider) NewModel(_ context.Context, cfg genbridge.ModelConfig) (genbridge.Model, error) {
	if cfg.APIKey == "bad" {
		return nil, errVendor
	}
	p.mu.Lock()
	p.configs = append(p.configs, cfg)
	p.mu.Unlock()
	return &fakeModel{name: cfg.ModelName, entered: p.entered}, nil
}

func (p *fakeProvider) lastConfig() genbridge.ModelConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.configs[len(p.configs)-1]
}

// fakeModel echoes the text part. The text "block" waits for cancellation.
type fakeModel struct {
	name    string
	entered chan struct{}
}

func (m *fakeModel) Name() string { return m.name }

func reply(ctx context.Context, parts []genbridge.Part, entered chan<- struct{}) (string, error) {
	text := parts[0].(genbridge.TextPart).Text
	if text == "block" {
		if entered != nil {
			select {
			case entered <- struct{}{}:
			default:
			}
		}
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "echo: " + text, nil
}

func (m *fakeModel) Generate(ctx context.Context, parts []genbridge.Part) (string, error) {
	return reply(ctx, parts, m.entered)
}

func (m *fakeModel) GenerateStream(ctx context.Context, parts []genbridge.Part) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		r, err := reply(ctx, parts, m.entered)
		if err != nil {
			yield("", err)
			return
		}
		for len(r) > 0 {
			n := min(4, len(r))
			if !yield(r[:n], nil) {
				return
			}
			r = r[n:]
		}
	}
}

func (m *fakeModel) CountTokens(_ context.Context, contents []genbridge.Content) (int, error) {
	n := 0
	for _, c := range contents {
		n += len(c.Parts)
	}
	return n, nil
}

func (m *fakeModel) StartChat(_ context.Context, history []genbridge.Content) (genbridge.Conversation, error) {
	return &fakeConversation{history: history, entered: m.entered}, nil
}

type fakeConversation struct {
	mu      sync.Mutex
	history []genbridge.Content
	entered chan struct{}
}

func (c *fakeConversation) Send(ctx context.Context, parts []genbridge.Part) (string, error) {
	r, err := reply(ctx, parts, c.entered)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.history = append(c.history,
		genbridge.Content{Role: genbridge.RoleUser, Parts: parts},
		genbridge.Content{Role: genbridge.RoleModel, Parts: []genbridge.Part{genbridge.TextPart{Text: r}}})
	c.mu.Unlock()
	return r, nil
}

func (c *fakeConversation) SendStream(ctx context.Context, parts []genbridge.Part) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		r, err := c.Send(ctx, parts)
		yield(r, err)
	}
}

func (c *fakeConversation) History() []genbridge.Content {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history
}

type chunkRecorder struct {
	mu     sync.Mutex
	chunks []string
}

func (r *chunkRecorder) OnChunk(chunk string) {
	r.mu.Lock()
	r.chunks = append(r.chunks, chunk)
	r.mu.Unlock()
}
