package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sitewise-ai/sitewise/internal/config"
	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/gateway"
	"github.com/sitewise-ai/sitewise/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStreamer records the final message list and plays back scripted
// deltas.
type fakeStreamer struct {
	messages []gateway.Message
	deltas   []string
	err      error
}

func (f *fakeStreamer) StreamCompletion(ctx context.Context, messages []gateway.Message, onDelta func(string) error) error {
	f.messages = messages
	if f.err != nil {
		return f.err
	}
	for _, d := range f.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Ingest.MaxSources = 5
	cfg.Ingest.MaxContentLen = 20000
	return cfg
}

func newChatFixture(t *testing.T) (*ChatService, *repository.ContentRepository, *fakeStreamer) {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	contentRepo := repository.NewContentRepository(db)
	gw := &fakeStreamer{deltas: []string{"hi"}}
	svc := NewChatService(testConfig(), contentRepo, gw, zap.NewNop())
	return svc, contentRepo, gw
}

func chatReq(systemPrompt string) *domain.ChatRequest {
	return &domain.ChatRequest{
		Messages:     []domain.ChatMessage{{Role: domain.RoleUser, Content: "What do you sell?"}},
		WidgetID:     "w-1",
		SystemPrompt: systemPrompt,
	}
}

func addCompletedSource(t *testing.T, repo *repository.ContentRepository, name, content string) {
	t.Helper()
	s := &domain.ContentSource{Name: name, SourceType: domain.SourceTypeURL, Origin: "https://example.com/" + name}
	require.NoError(t, repo.Create(s))
	require.NoError(t, repo.SetStatus(s.ID, domain.SourceStatusCompleted, content, ""))
}

func TestStreamRejectsEmptyConversation(t *testing.T) {
	svc, _, _ := newChatFixture(t)

	err := svc.Stream(context.Background(), &domain.ChatRequest{}, func(string) error { return nil })
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSystemPromptDefaultsWithoutInstructionsOrContent(t *testing.T) {
	svc, _, gw := newChatFixture(t)

	require.NoError(t, svc.Stream(context.Background(), chatReq(""), func(string) error { return nil }))

	require.NotEmpty(t, gw.messages)
	assert.Equal(t, "system", gw.messages[0].Role)
	assert.Equal(t, defaultSystemPrompt, gw.messages[0].Content)
	require.Len(t, gw.messages, 2)
	assert.Equal(t, "user", gw.messages[1].Role)
}

func TestSystemPromptUsesWidgetInstructions(t *testing.T) {
	svc, _, gw := newChatFixture(t)

	require.NoError(t, svc.Stream(context.Background(), chatReq("Answer like a pirate."), func(string) error { return nil }))

	assert.Equal(t, "Answer like a pirate.", gw.messages[0].Content)
}

func TestKnowledgeBaseOverridesWidgetInstructions(t *testing.T) {
	svc, contentRepo, gw := newChatFixture(t)
	addCompletedSource(t, contentRepo, "Pricing", "The Pro plan costs $49/month.")

	require.NoError(t, svc.Stream(context.Background(), chatReq("Answer like a pirate."), func(string) error { return nil }))

	system := gw.messages[0].Content
	assert.Contains(t, system, "KNOWLEDGE BASE:")
	assert.Contains(t, system, "### Pricing")
	assert.Contains(t, system, "The Pro plan costs $49/month.")
	assert.NotContains(t, system, "pirate", "custom instructions are dropped once content exists")
}

func TestKnowledgeBaseCapsContentLength(t *testing.T) {
	svc, contentRepo, gw := newChatFixture(t)
	svc.cfg.Ingest.MaxContentLen = 10
	addCompletedSource(t, contentRepo, "Long", strings.Repeat("x", 100))

	require.NoError(t, svc.Stream(context.Background(), chatReq(""), func(string) error { return nil }))

	assert.Contains(t, gw.messages[0].Content, "### Long\n"+strings.Repeat("x", 10))
	assert.NotContains(t, gw.messages[0].Content, strings.Repeat("x", 11))
}

func TestStreamForwardsDeltas(t *testing.T) {
	svc, _, gw := newChatFixture(t)
	gw.deltas = []string{"Hel", "lo"}

	var got []string
	require.NoError(t, svc.Stream(context.Background(), chatReq(""), func(d string) error {
		got = append(got, d)
		return nil
	}))
	assert.Equal(t, []string{"Hel", "lo"}, got)
}

func TestStreamPropagatesGatewayErrors(t *testing.T) {
	svc, _, gw := newChatFixture(t)
	gw.err = domain.ErrRateLimited

	err := svc.Stream(context.Background(), chatReq(""), func(string) error { return nil })
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}
