package genbridge

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"
)

// mockProvider is a testify/mock implementation of Provider.
type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) NewModel(ctx context.Context, cfg ModelConfig) (Model, error) {
	args := m.Called(ctx, cfg)
	model, _ := args.Get(0).(Model)
	return model, args.Error(1)
}

// mockModel is a testify/mock implementation of Model.
type mockModel struct {
	mock.Mock
}

func (m *mockModel) Name() string {
	return "test-model"
}

func (m *mockModel) Generate(ctx context.Context, parts []Part) (string, error) {
	args := m.Called(ctx, parts)
	return args.String(0), args.Error(1)
}

func (m *mockModel) GenerateStream(ctx context.Context, parts []Part) iter.Seq2[string, error] {
	args := m.Called(ctx, parts)
	return args.Get(0).(iter.Seq2[string, error])
}

func (m *mockModel) CountTokens(ctx context.Context, contents []Content) (int, error) {
	args := m.Called(ctx, contents)
	return args.Int(0), args.Error(1)
}

func (m *mockModel) StartChat(ctx context.Context, history []Content) (Conversation, error) {
	args := m.Called(ctx, history)
	conv, _ := args.Get(0).(Conversation)
	return conv, args.Error(1)
}

// fakeConversation records exchanges the way the vendor chat object does.
type fakeConversation struct {
	history []Content
	replies []string
}

func (c *fakeConversation) Send(_ context.Context, parts []Part) (string, error) {
	reply := c.nextReply()
	c.record(parts, reply)
	return reply, nil
}

func (c *fakeConversation) SendStream(_ context.Context, parts []Part) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		reply := c.nextReply()
		for _, chunk := range splitChunks(reply, 3) {
			if !yield(chunk, nil) {
				return
			}
		}
		c.record(parts, reply)
	}
}

func (c *fakeConversation) History() []Content {
	return c.history
}

func (c *fakeConversation) nextReply() string {
	if len(c.replies) == 0 {
		return ""
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r
}

func (c *fakeConversation) record(parts []Part, reply string) {
	c.history = append(c.history,
		Content{Role: RoleUser, Parts: parts},
		Content{Role: RoleModel, Parts: []Part{TextPart{Text: reply}}},
	)
}

// seqOf yields chunks in order, then err if non-nil.
func seqOf(err error, chunks ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

func splitChunks(s string, n int) []string {
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
