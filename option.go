package genbridge

import "log/slog"

// Option configures a Session (functional options pattern).
type Option func(*Session)

// WithLogger sets the structured logger. Default discards records. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxImageBytes sets the decoded size limit per image. Values <= 0 use the default (20 MiB).
func WithMaxImageBytes(n int) Option {
	return func(s *Session) {
		s.maxImageBytes = n
	}
}

// ChunkFunc receives one streamed text chunk.
type ChunkFunc func(chunk string)

// CallOption configures a single Session call.
type CallOption func(*callOptions)

type callOptions struct {
	images    []ImageBlob
	onChunk   ChunkFunc
	inputText string
}

func newCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithImages attaches images after the text part, in the given order.
func WithImages(images ...ImageBlob) CallOption {
	return func(o *callOptions) {
		o.images = append(o.images, images...)
	}
}

// WithChunkHandler switches SendMessage and SendChatMessage to the streaming request form.
// fn is called once per chunk in arrival order. A nil fn keeps the single-shot form.
func WithChunkHandler(fn ChunkFunc) CallOption {
	return func(o *callOptions) {
		o.onChunk = fn
	}
}

// WithInputText sets the text of the prospective user turn counted by CountChatTokens.
func WithInputText(text string) CallOption {
	return func(o *callOptions) {
		o.inputText = text
	}
}
