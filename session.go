package genbridge

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Session owns one client/model/conversation lifecycle. Create it with New, then call InitModel.
//
// A Session is safe for concurrent use in the memory-safety sense only: every call captures the
// handles current at its start, so InitModel or InitChat racing with in-flight calls is
// last-writer-wins and in-flight calls finish against the handles they captured.
type Session struct {
	provider      Provider
	logger        *slog.Logger
	maxImageBytes int

	mu    sync.RWMutex
	model Model
	chat  Conversation
}

// New returns an uninitialized Session that builds model handles with p.
// Panics if p is nil.
func New(p Provider, opts ...Option) *Session {
	if p == nil {
		panic("genbridge: Provider must not be nil")
	}
	s := &Session{
		provider: p,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.chat != nil:
		return StateChatReady
	case s.model != nil:
		return StateModelReady
	default:
		return StateUninitialized
	}
}

// handles returns the handles an operation needs, or a *StateError when the session is not far enough along.
func (s *Session) handles(op string, required State) (Model, Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.stateLocked()
	if err := requirementError(st, required); err != nil {
		return nil, nil, &StateError{Op: op, State: st, Err: err}
	}
	return s.model, s.chat, nil
}

// InitModel builds a model handle for cfg and makes it current. Any conversation bound to the
// previous model is dropped, so the session returns to StateModelReady.
// Provider errors are returned unmodified and leave the session as it was.
func (s *Session) InitModel(ctx context.Context, cfg ModelConfig) error {
	m, err := s.provider.NewModel(ctx, cfg.Clone())
	if err != nil {
		return err
	}
	s.mu.Lock()
	hadChat := s.chat != nil
	s.model = m
	s.chat = nil
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "genbridge: model initialized",
		"model", cfg.ModelName,
		"safety_settings", len(cfg.SafetySettings),
		"dropped_chat", hadChat)
	return nil
}

// SendMessage sends a one-shot message (text, then images) and returns the response text.
// With WithChunkHandler the streaming form is used and the handler sees every chunk; the
// returned text is the concatenation of all chunks. On a mid-stream error the text received
// so far is returned with the error.
func (s *Session) SendMessage(ctx context.Context, text string, opts ...CallOption) (string, error) {
	m, _, err := s.handles("SendMessage", StateModelReady)
	if err != nil {
		return "", err
	}
	o := newCallOptions(opts)
	parts, err := MessageParts(text, o.images, s.maxImageBytes)
	if err != nil {
		return "", err
	}
	s.logger.DebugContext(ctx, "genbridge: send message", "model", m.Name(), "parts", len(parts), "stream", o.onChunk != nil)
	if o.onChunk == nil {
		return m.Generate(ctx, parts)
	}
	return collect(m.GenerateStream(ctx, parts), o.onChunk)
}

// SendMessageStream is the lazy form of SendMessage: it yields response chunks in arrival order.
// The sequence can be ranged over once; WithChunkHandler is ignored.
func (s *Session) SendMessageStream(ctx context.Context, text string, opts ...CallOption) iter.Seq2[string, error] {
	m, _, err := s.handles("SendMessageStream", StateModelReady)
	if err != nil {
		return errSeq(err)
	}
	parts, err := MessageParts(text, newCallOptions(opts).images, s.maxImageBytes)
	if err != nil {
		return errSeq(err)
	}
	return once(m.GenerateStream(ctx, parts))
}

// CountTokens returns the token count of one message (text, then images) without any history.
func (s *Session) CountTokens(ctx context.Context, text string, opts ...CallOption) (int, error) {
	m, _, err := s.handles("CountTokens", StateModelReady)
	if err != nil {
		return 0, err
	}
	parts, err := MessageParts(text, newCallOptions(opts).images, s.maxImageBytes)
	if err != nil {
		return 0, err
	}
	return m.CountTokens(ctx, []Content{{Role: RoleUser, Parts: parts}})
}

// InitChat opens a conversation on the current model seeded with history, replacing any previous one.
// If InitModel replaced the model while the conversation was being opened, the new conversation
// is discarded and ErrModelReplaced is returned.
func (s *Session) InitChat(ctx context.Context, history []ChatHistoryItem) error {
	m, _, err := s.handles("InitChat", StateModelReady)
	if err != nil {
		return err
	}
	contents, err := HistoryContents(history, s.maxImageBytes)
	if err != nil {
		return err
	}
	conv, err := m.StartChat(ctx, contents)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.model != m {
		st := s.stateLocked()
		s.mu.Unlock()
		return &StateError{Op: "InitChat", State: st, Err: ErrModelReplaced}
	}
	s.chat = conv
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "genbridge: chat initialized", "model", m.Name(), "history_turns", len(contents))
	return nil
}

// SendChatMessage sends a message on the conversation, which records both the message and the reply.
// Streaming follows the same rules as SendMessage.
func (s *Session) SendChatMessage(ctx context.Context, text string, opts ...CallOption) (string, error) {
	_, conv, err := s.handles("SendChatMessage", StateChatReady)
	if err != nil {
		return "", err
	}
	o := newCallOptions(opts)
	parts, err := MessageParts(text, o.images, s.maxImageBytes)
	if err != nil {
		return "", err
	}
	s.logger.DebugContext(ctx, "genbridge: send chat message", "parts", len(parts), "stream", o.onChunk != nil)
	if o.onChunk == nil {
		return conv.Send(ctx, parts)
	}
	return collect(conv.SendStream(ctx, parts), o.onChunk)
}

// SendChatMessageStream is the lazy form of SendChatMessage.
func (s *Session) SendChatMessageStream(ctx context.Context, text string, opts ...CallOption) iter.Seq2[string, error] {
	_, conv, err := s.handles("SendChatMessageStream", StateChatReady)
	if err != nil {
		return errSeq(err)
	}
	parts, err := MessageParts(text, newCallOptions(opts).images, s.maxImageBytes)
	if err != nil {
		return errSeq(err)
	}
	return once(conv.SendStream(ctx, parts))
}

// CountChatTokens counts the stored transcript plus, when WithInputText or WithImages supplies
// anything, one prospective user turn. Without either option exactly the transcript is counted.
func (s *Session) CountChatTokens(ctx context.Context, opts ...CallOption) (int, error) {
	m, conv, err := s.handles("CountChatTokens", StateChatReady)
	if err != nil {
		return 0, err
	}
	o := newCallOptions(opts)
	contents := slices.Clip(conv.History())
	if o.inputText != "" || len(o.images) > 0 {
		turn, err := optionalTurn(true, o.inputText, o.images, s.maxImageBytes)
		if err != nil {
			return 0, err
		}
		contents = append(contents, turn)
	}
	return m.CountTokens(ctx, contents)
}

// ChatHistory returns the conversation transcript in stored order.
func (s *Session) ChatHistory(ctx context.Context) ([]ChatTurn, error) {
	_, conv, err := s.handles("ChatHistory", StateChatReady)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ChatTurns(conv.History()), nil
}

func collect(seq iter.Seq2[string, error], fn ChunkFunc) (string, error) {
	var b strings.Builder
	for chunk, err := range seq {
		if err != nil {
			return b.String(), err
		}
		fn(chunk)
		b.WriteString(chunk)
	}
	return b.String(), nil
}

func errSeq(err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("", err)
	}
}

// once makes seq single-use; ranging over it again yields ErrStreamConsumed.
func once(seq iter.Seq2[string, error]) iter.Seq2[string, error] {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrStreamConsumed)
			return
		}
		seq(yield)
	}
}
