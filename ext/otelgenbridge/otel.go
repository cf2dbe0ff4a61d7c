package otelgenbridge

import (
	"context"
	"iter"

	"github.com/skosovsky/genbridge"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/skosovsky/genbridge/ext/otelgenbridge"

// Span names.
const (
	SpanGenerate       = "genbridge.generate"
	SpanGenerateStream = "genbridge.generate_stream"
	SpanCountTokens    = "genbridge.count_tokens"
	SpanStartChat      = "genbridge.start_chat"
	SpanChatSend       = "genbridge.chat.send"
	SpanChatSendStream = "genbridge.chat.send_stream"
)

// Attribute keys.
const (
	AttrModel        = attribute.Key("genbridge.model")
	AttrParts        = attribute.Key("genbridge.parts")
	AttrChunks       = attribute.Key("genbridge.chunks")
	AttrTokens       = attribute.Key("genbridge.tokens")
	AttrContents     = attribute.Key("genbridge.contents")
	AttrResponseSize = attribute.Key("genbridge.response_bytes")
)

// Option configures Wrap.
type Option func(*config)

type config struct {
	tp trace.TracerProvider
}

// WithTracerProvider sets the tracer provider. Default is otel.GetTracerProvider(). Nil is ignored.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		if tp != nil {
			c.tp = tp
		}
	}
}

// Wrap returns p with tracing. Errors from p are returned unchanged.
func Wrap(p genbridge.Provider, opts ...Option) genbridge.Provider {
	c := config{tp: otel.GetTracerProvider()}
	for _, opt := range opts {
		opt(&c)
	}
	return &provider{next: p, tracer: c.tp.Tracer(instrumentationName)}
}

type provider struct {
	next   genbridge.Provider
	tracer trace.Tracer
}

var _ genbridge.Provider = (*provider)(nil)

func (p *provider) NewModel(ctx context.Context, cfg genbridge.ModelConfig) (genbridge.Model, error) {
	m, err := p.next.NewModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &model{next: m, tracer: p.tracer}, nil
}

type model struct {
	next   genbridge.Model
	tracer trace.Tracer
}

var _ genbridge.Model = (*model)(nil)

func (m *model) Name() string { return m.next.Name() }

func (m *model) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, AttrModel.String(m.next.Name()))
	return m.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func (m *model) Generate(ctx context.Context, parts []genbridge.Part) (string, error) {
	ctx, span := m.start(ctx, SpanGenerate, AttrParts.Int(len(parts)))
	defer span.End()
	text, err := m.next.Generate(ctx, parts)
	if err != nil {
		fail(span, err)
		return "", err
	}
	span.SetAttributes(AttrResponseSize.Int(len(text)))
	return text, nil
}

func (m *model) GenerateStream(ctx context.Context, parts []genbridge.Part) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, span := m.start(ctx, SpanGenerateStream, AttrParts.Int(len(parts)))
		defer span.End()
		traced(span, m.next.GenerateStream(ctx, parts), yield)
	}
}

func (m *model) CountTokens(ctx context.Context, contents []genbridge.Content) (int, error) {
	ctx, span := m.start(ctx, SpanCountTokens, AttrContents.Int(len(contents)))
	defer span.End()
	n, err := m.next.CountTokens(ctx, contents)
	if err != nil {
		fail(span, err)
		return 0, err
	}
	span.SetAttributes(AttrTokens.Int(n))
	return n, nil
}

func (m *model) StartChat(ctx context.Context, history []genbridge.Content) (genbridge.Conversation, error) {
	ctx, span := m.start(ctx, SpanStartChat, AttrContents.Int(len(history)))
	defer span.End()
	conv, err := m.next.StartChat(ctx, history)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	return &conversation{next: conv, model: m}, nil
}

type conversation struct {
	next  genbridge.Conversation
	model *model
}

var _ genbridge.Conversation = (*conversation)(nil)

func (c *conversation) Send(ctx context.Context, parts []genbridge.Part) (string, error) {
	ctx, span := c.model.start(ctx, SpanChatSend, AttrParts.Int(len(parts)))
	defer span.End()
	text, err := c.next.Send(ctx, parts)
	if err != nil {
		fail(span, err)
		return "", err
	}
	span.SetAttributes(AttrResponseSize.Int(len(text)))
	return text, nil
}

func (c *conversation) SendStream(ctx context.Context, parts []genbridge.Part) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, span := c.model.start(ctx, SpanChatSendStream, AttrParts.Int(len(parts)))
		defer span.End()
		traced(span, c.next.SendStream(ctx, parts), yield)
	}
}

func (c *conversation) History() []genbridge.Content { return c.next.History() }

// traced forwards seq to yield, counting chunks and bytes on span. The first error ends the stream.
func traced(span trace.Span, seq iter.Seq2[string, error], yield func(string, error) bool) {
	chunks, size := 0, 0
	defer func() {
		span.SetAttributes(AttrChunks.Int(chunks), AttrResponseSize.Int(size))
	}()
	for chunk, err := range seq {
		if err != nil {
			fail(span, err)
			yield("", err)
			return
		}
		chunks++
		size += len(chunk)
		if !yield(chunk, nil) {
			return
		}
	}
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
