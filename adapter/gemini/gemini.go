package gemini

import (
	"context"
	"iter"
	"net/http"
	"sync"

	"github.com/skosovsky/genbridge"

	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"
)

// Provider implements genbridge.Provider for the Gemini API and Vertex AI backends.
type Provider struct {
	backend     genai.Backend
	httpOptions genai.HTTPOptions
	httpClient  *http.Client

	mu      sync.RWMutex
	clients map[string]*genai.Client
	sf      singleflight.Group
}

// Ensures Provider implements genbridge.Provider.
var _ genbridge.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithBackend selects the SDK backend. Default is genai.BackendGeminiAPI.
func WithBackend(b genai.Backend) Option {
	return func(p *Provider) { p.backend = b }
}

// WithHTTPOptions sets SDK HTTP options such as BaseURL, APIVersion or extra headers.
func WithHTTPOptions(o genai.HTTPOptions) Option {
	return func(p *Provider) { p.httpOptions = o }
}

// WithHTTPClient sets the HTTP client used by every SDK client. If c is nil the SDK default is used.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// New returns a Provider with an empty client cache.
func New(opts ...Option) *Provider {
	p := &Provider{
		backend: genai.BackendGeminiAPI,
		clients: make(map[string]*genai.Client),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewModel returns a model handle for cfg. The SDK client for cfg.APIKey is built on first use and
// shared afterwards; client construction errors are returned as the SDK reports them.
func (p *Provider) NewModel(ctx context.Context, cfg genbridge.ModelConfig) (genbridge.Model, error) {
	client, err := p.client(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	return &model{
		client: client,
		name:   cfg.ModelName,
		config: GenerateConfig(cfg),
	}, nil
}

// Reset drops every cached client; later NewModel calls build fresh ones.
func (p *Provider) Reset() {
	p.mu.Lock()
	p.clients = make(map[string]*genai.Client)
	p.mu.Unlock()
}

func (p *Provider) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	p.mu.RLock()
	c, ok := p.clients[apiKey]
	p.mu.RUnlock()
	if ok {
		return c, nil
	}
	// The build is shared by every caller waiting on apiKey; it must outlive any one of them.
	buildCtx := context.WithoutCancel(ctx)
	v, err, _ := p.sf.Do(apiKey, func() (any, error) {
		c, err := genai.NewClient(buildCtx, &genai.ClientConfig{
			APIKey:      apiKey,
			Backend:     p.backend,
			HTTPClient:  p.httpClient,
			HTTPOptions: p.httpOptions,
		})
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.clients[apiKey] = c
		p.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*genai.Client), nil
}

type model struct {
	client *genai.Client
	name   string
	config *genai.GenerateContentConfig
}

var _ genbridge.Model = (*model)(nil)

func (m *model) Name() string { return m.name }

func (m *model) Generate(ctx context.Context, parts []genbridge.Part) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.name, userTurn(parts), m.config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (m *model) GenerateStream(ctx context.Context, parts []genbridge.Part) iter.Seq2[string, error] {
	return textChunks(m.client.Models.GenerateContentStream(ctx, m.name, userTurn(parts), m.config))
}

func (m *model) CountTokens(ctx context.Context, contents []genbridge.Content) (int, error) {
	resp, err := m.client.Models.CountTokens(ctx, m.name, ToGenaiContents(contents), nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

func (m *model) StartChat(ctx context.Context, history []genbridge.Content) (genbridge.Conversation, error) {
	chat, err := m.client.Chats.Create(ctx, m.name, m.config, ToGenaiContents(history))
	if err != nil {
		return nil, err
	}
	return &conversation{chat: chat}, nil
}

type conversation struct {
	chat *genai.Chat
}

var _ genbridge.Conversation = (*conversation)(nil)

func (c *conversation) Send(ctx context.Context, parts []genbridge.Part) (string, error) {
	resp, err := c.chat.SendMessage(ctx, partValues(parts)...)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *conversation) SendStream(ctx context.Context, parts []genbridge.Part) iter.Seq2[string, error] {
	return textChunks(c.chat.SendMessageStream(ctx, partValues(parts)...))
}

// History returns the comprehensive transcript, including turns the SDK would curate away.
// A streamed reply is reported as one model turn, the same as a single-shot reply.
func (c *conversation) History() []genbridge.Content {
	return MergeReplyChunks(FromGenaiContents(c.chat.History(false)))
}

func userTurn(parts []genbridge.Part) []*genai.Content {
	return []*genai.Content{genai.NewContentFromParts(ToGenaiParts(parts), genai.RoleUser)}
}

// textChunks yields the text of each streamed response. The first error ends the sequence.
func textChunks(seq iter.Seq2[*genai.GenerateContentResponse, error]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range seq {
			if err != nil {
				yield("", err)
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}
