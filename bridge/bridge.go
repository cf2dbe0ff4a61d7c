package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/skosovsky/genbridge"
)

// ChunkHandler receives streamed text chunks in arrival order. A nil handler keeps the
// single-shot request form.
type ChunkHandler interface {
	OnChunk(chunk string)
}

type entry struct {
	session *genbridge.Session
	ctx     context.Context
	cancel  context.CancelFunc
}

// Bridge owns the sessions created for a host, each addressed by an opaque handle.
// Safe for concurrent use.
type Bridge struct {
	provider    genbridge.Provider
	logger      *slog.Logger
	sessionOpts []genbridge.Option

	mu       sync.RWMutex
	root     context.Context
	stop     context.CancelFunc
	sessions map[string]*entry
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the structured logger for the bridge and its sessions. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSessionOptions appends options applied to every session the bridge creates.
func WithSessionOptions(opts ...genbridge.Option) Option {
	return func(b *Bridge) {
		b.sessionOpts = append(b.sessionOpts, opts...)
	}
}

// New returns a Bridge whose sessions build models with p. Panics if p is nil.
func New(p genbridge.Provider, opts ...Option) *Bridge {
	if p == nil {
		panic("bridge: Provider must not be nil")
	}
	root, stop := context.WithCancel(context.Background())
	b := &Bridge{
		provider: p,
		logger:   slog.New(slog.DiscardHandler),
		root:     root,
		stop:     stop,
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) lookup(handle string) (*entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.sessions == nil {
		return nil, ErrClosed
	}
	e, ok := b.sessions[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
	}
	return e, nil
}

// InitModel creates a session, initializes its model from configJSON and returns its handle.
// No handle is allocated when initialization fails.
func (b *Bridge) InitModel(configJSON string) (string, error) {
	cfg, err := decodeConfig(configJSON)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithCancel(b.root)
	opts := append([]genbridge.Option{genbridge.WithLogger(b.logger)}, b.sessionOpts...)
	s := genbridge.New(b.provider, opts...)
	if err := s.InitModel(ctx, cfg); err != nil {
		cancel()
		return "", err
	}
	handle := uuid.NewString()
	b.mu.Lock()
	if b.sessions == nil {
		b.mu.Unlock()
		cancel()
		return "", ErrClosed
	}
	b.sessions[handle] = &entry{session: s, ctx: ctx, cancel: cancel}
	b.mu.Unlock()
	b.logger.Info("bridge: session created", "handle", handle, "model", cfg.ModelName)
	return handle, nil
}

// ReinitModel replaces the model of an existing session. Any chat is dropped.
func (b *Bridge) ReinitModel(handle, configJSON string) error {
	e, err := b.lookup(handle)
	if err != nil {
		return err
	}
	cfg, err := decodeConfig(configJSON)
	if err != nil {
		return err
	}
	return e.session.InitModel(e.ctx, cfg)
}

// InitChat opens a conversation seeded with historyJSON ("" for none).
func (b *Bridge) InitChat(handle, historyJSON string) error {
	e, err := b.lookup(handle)
	if err != nil {
		return err
	}
	history, err := decodeHistory(historyJSON)
	if err != nil {
		return err
	}
	return e.session.InitChat(e.ctx, history)
}

// SendMessage sends a one-shot message. With a non-nil handler the reply is streamed through it.
func (b *Bridge) SendMessage(handle, text, imagesJSON string, h ChunkHandler) (string, error) {
	e, opts, err := b.prepare(handle, imagesJSON, h)
	if err != nil {
		return "", err
	}
	return e.session.SendMessage(e.ctx, text, opts...)
}

// SendChatMessage sends a message within the session's conversation.
func (b *Bridge) SendChatMessage(handle, text, imagesJSON string, h ChunkHandler) (string, error) {
	e, opts, err := b.prepare(handle, imagesJSON, h)
	if err != nil {
		return "", err
	}
	return e.session.SendChatMessage(e.ctx, text, opts...)
}

// CountTokens counts one message without history.
func (b *Bridge) CountTokens(handle, text, imagesJSON string) (int, error) {
	e, opts, err := b.prepare(handle, imagesJSON, nil)
	if err != nil {
		return 0, err
	}
	return e.session.CountTokens(e.ctx, text, opts...)
}

// CountChatTokens counts the transcript plus an optional prospective turn.
func (b *Bridge) CountChatTokens(handle, inputText, imagesJSON string) (int, error) {
	e, opts, err := b.prepare(handle, imagesJSON, nil)
	if err != nil {
		return 0, err
	}
	return e.session.CountChatTokens(e.ctx, append(opts, genbridge.WithInputText(inputText))...)
}

// GetChatHistory returns the transcript as a JSON array of turns.
func (b *Bridge) GetChatHistory(handle string) (string, error) {
	e, err := b.lookup(handle)
	if err != nil {
		return "", err
	}
	turns, err := e.session.ChatHistory(e.ctx)
	if err != nil {
		return "", err
	}
	return encodeTurns(turns)
}

// Release cancels in-flight calls of the session and forgets the handle. Unknown handles are ignored.
func (b *Bridge) Release(handle string) {
	b.mu.Lock()
	e, ok := b.sessions[handle]
	delete(b.sessions, handle)
	b.mu.Unlock()
	if ok {
		e.cancel()
		b.logger.Info("bridge: session released", "handle", handle)
	}
}

// Close releases every session. Later calls return ErrClosed.
func (b *Bridge) Close() {
	b.mu.Lock()
	n := len(b.sessions)
	b.sessions = nil
	b.mu.Unlock()
	b.stop()
	b.logger.Info("bridge: closed", "sessions", n)
}

func (b *Bridge) prepare(handle, imagesJSON string, h ChunkHandler) (*entry, []genbridge.CallOption, error) {
	e, err := b.lookup(handle)
	if err != nil {
		return nil, nil, err
	}
	images, err := decodeImages(imagesJSON)
	if err != nil {
		return nil, nil, err
	}
	var opts []genbridge.CallOption
	if len(images) > 0 {
		opts = append(opts, genbridge.WithImages(images...))
	}
	if h != nil {
		opts = append(opts, genbridge.WithChunkHandler(h.OnChunk))
	}
	return e, opts, nil
}
