package widget

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://host.example.com"

// fakeSender scripts the chat backend: it can deliver deltas, fail, or
// hold the stream open until released.
type fakeSender struct {
	mu       sync.Mutex
	calls    int
	requests []domain.ChatRequest

	deltas []string
	fail   string        // error message; delivered instead of deltas when set
	gate   chan struct{} // when non-nil, stream waits here before finishing
	done   chan struct{} // signalled after each stream completes
}

func newFakeSender(deltas ...string) *fakeSender {
	return &fakeSender{deltas: deltas, done: make(chan struct{}, 4)}
}

func (f *fakeSender) Stream(ctx context.Context, req domain.ChatRequest, cb stream.Callbacks) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}

	if f.fail != "" {
		cb.OnError(f.fail)
	} else {
		for _, d := range f.deltas {
			cb.OnDelta(d)
		}
		cb.OnDone()
	}
	f.done <- struct{}{}
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSender) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) post(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

func testSettings(template string) *domain.WidgetSettings {
	return &domain.WidgetSettings{
		HeaderTitle:    "Chat Assistant",
		WelcomeMessage: "Hi! How can I help you today?",
		Position:       string(domain.PositionBottomRight),
		WidgetTemplate: template,
		PrimaryColor:   domain.DefaultPrimaryColor,
		TextColor:      domain.DefaultTextColor,
		AllowedOrigins: []string{testOrigin},
	}
}

func newTestController(t *testing.T, template string, sender Sender) (*Controller, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	ctrl := NewController(ControllerConfig{
		WidgetID:       "w-1",
		Settings:       testSettings(template),
		Sender:         sender,
		Post:           rec.post,
		AllowedOrigins: []string{testOrigin},
	})
	require.False(t, ctrl.Disabled())
	return ctrl, rec
}

func TestToggleCommandFlipsOpenState(t *testing.T) {
	ctrl, _ := newTestController(t, "bubble", newFakeSender())

	require.False(t, ctrl.IsOpen())
	ctrl.HandleCommand(testOrigin, CommandToggle)
	assert.True(t, ctrl.IsOpen())
	ctrl.HandleCommand(testOrigin, CommandToggle)
	assert.False(t, ctrl.IsOpen())

	ctrl.HandleCommand(testOrigin, CommandOpen)
	assert.True(t, ctrl.IsOpen())
	ctrl.HandleCommand(testOrigin, CommandClose)
	assert.False(t, ctrl.IsOpen())
}

func TestCommandsFromUnknownOriginIgnored(t *testing.T) {
	ctrl, rec := newTestController(t, "bubble", newFakeSender())

	for _, cmd := range []Command{CommandOpen, CommandToggle, CommandOpen, CommandClose, CommandToggle} {
		ctrl.HandleCommand("https://evil.example.net", cmd)
	}

	assert.False(t, ctrl.IsOpen())
	_, posted := rec.last()
	assert.False(t, posted, "no events should be emitted for rejected commands")
}

func TestSendEmptyPromptIsNoOp(t *testing.T) {
	sender := newFakeSender()
	ctrl, _ := newTestController(t, "bubble", sender)

	for _, prompt := range []string{"", "   ", "\n\t "} {
		ctrl.SetPrompt(prompt)
		ctrl.Send(context.Background())
	}

	assert.Zero(t, sender.callCount())
	assert.Empty(t, ctrl.Messages())
	assert.False(t, ctrl.IsLoading())
}

func TestSendWhileInFlightIsNoOp(t *testing.T) {
	sender := newFakeSender("ok")
	sender.gate = make(chan struct{})
	ctrl, _ := newTestController(t, "bubble", sender)

	ctrl.SetPrompt("first question")
	ctrl.Send(context.Background())
	require.True(t, ctrl.IsLoading())

	// Rapid double submit while the stream is still open
	ctrl.SetPrompt("second question")
	ctrl.Send(context.Background())

	close(sender.gate)
	sender.wait(t)

	assert.Equal(t, 1, sender.callCount())
	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first question", msgs[0].Content)
}

func TestDeltasMergeIntoSingleAssistantMessage(t *testing.T) {
	sender := newFakeSender("Hel", "lo", " world")
	ctrl, _ := newTestController(t, "bubble", sender)

	ctrl.SetPrompt("hi")
	ctrl.Send(context.Background())
	sender.wait(t)

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2, "exactly one assistant message should be appended")
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hello world", msgs[1].Content)
	assert.False(t, ctrl.IsLoading())

	// The send includes the full history and the widget's instructions
	require.Equal(t, 1, sender.callCount())
	req := sender.requests[0]
	assert.Equal(t, "w-1", req.WidgetID)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "hi", req.Messages[0].Content)
}

func TestStreamErrorAppendsSingleApology(t *testing.T) {
	sender := newFakeSender()
	sender.fail = "chat backend returned status 500"
	ctrl, _ := newTestController(t, "bubble", sender)

	ctrl.SetPrompt("hi")
	ctrl.Send(context.Background())
	sender.wait(t)

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, apologyMessage, msgs[1].Content)
	assert.False(t, ctrl.IsLoading())
}

func TestResizeGrowsOnOpenForEveryTemplateAndPosition(t *testing.T) {
	templates := []string{"bubble", "panel", "chatgpt"}
	positions := []domain.Position{
		domain.PositionBottomRight, domain.PositionBottomLeft,
		domain.PositionTopRight, domain.PositionTopLeft,
	}

	for _, tmpl := range templates {
		for _, pos := range positions {
			settings := testSettings(tmpl)
			settings.Position = string(pos)
			rec := &eventRecorder{}
			ctrl := NewController(ControllerConfig{
				WidgetID:       "w-1",
				Settings:       settings,
				Sender:         newFakeSender(),
				Post:           rec.post,
				AllowedOrigins: []string{testOrigin},
			})

			ctrl.EmitSize()
			closedEv, ok := rec.last()
			require.True(t, ok)

			ctrl.HandleCommand(testOrigin, CommandOpen)
			openEv, ok := rec.last()
			require.True(t, ok)

			assert.Equal(t, MsgResize, openEv.Type)
			assert.Greater(t, openEv.Width, closedEv.Width, "%s/%s", tmpl, pos)
			assert.Greater(t, openEv.Height, closedEv.Height, "%s/%s", tmpl, pos)
		}
	}
}

func TestDismissTeaserShrinksFootprint(t *testing.T) {
	ctrl, rec := newTestController(t, "bubble", newFakeSender())

	ctrl.EmitSize()
	teaserEv, ok := rec.last()
	require.True(t, ok)

	ctrl.DismissTeaser()
	closedEv, ok := rec.last()
	require.True(t, ok)

	assert.False(t, ctrl.TeaserVisible())
	assert.Less(t, closedEv.Width, teaserEv.Width)
	assert.Less(t, closedEv.Height, teaserEv.Height)

	// Dismissing twice changes nothing
	before := len(rec.events)
	ctrl.DismissTeaser()
	assert.Equal(t, before, len(rec.events))
}

func TestUnknownTemplateFallsBackToBubble(t *testing.T) {
	ctrl, _ := newTestController(t, "carousel", newFakeSender())

	assert.Equal(t, domain.TemplateBubble, ctrl.Template())
	assert.Contains(t, ctrl.Render(), "sw-bubble")
}

func TestChatGPTEnterWhileClosedOpensAndSends(t *testing.T) {
	sender := newFakeSender("We are open 9-5.")
	sender.gate = make(chan struct{})
	ctrl, rec := newTestController(t, "chatgpt", sender)

	require.False(t, ctrl.IsOpen())
	ctrl.SetPrompt("What are your hours?")
	ctrl.Send(context.Background())

	assert.True(t, ctrl.IsOpen(), "send from the closed prompt bar opens the pane")
	assert.True(t, ctrl.IsLoading())
	msgs := ctrl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "What are your hours?", msgs[0].Content)

	// Awaiting the first delta: the typing indicator is visible
	assert.Contains(t, ctrl.Render(), "sw-typing")

	ev, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, MsgResize, ev.Type)
	open := FrameSize(domain.TemplateChatGPT, true, true)
	assert.Equal(t, open.Width, ev.Width)
	assert.Equal(t, open.Height, ev.Height)

	close(sender.gate)
	sender.wait(t)
	assert.False(t, ctrl.IsLoading())
	assert.NotContains(t, ctrl.Render(), "sw-typing")
}

func TestDisabledControllerIsSilent(t *testing.T) {
	rec := &eventRecorder{}
	ctrl := NewController(ControllerConfig{
		WidgetID: "w-1",
		Settings: nil, // unresolvable settings
		Sender:   newFakeSender(),
		Post:     rec.post,
	})

	require.True(t, ctrl.Disabled())
	assert.Empty(t, ctrl.Render())

	ctrl.HandleCommand(testOrigin, CommandOpen)
	ctrl.SetPrompt("hello")
	ctrl.Send(context.Background())
	ctrl.EmitSize()

	assert.False(t, ctrl.IsOpen())
	assert.Empty(t, ctrl.Messages())
	_, posted := rec.last()
	assert.False(t, posted)
}

func TestRenderAfterEachDeltaShowsLatestContent(t *testing.T) {
	sender := newFakeSender("partial")
	var mu sync.Mutex
	var renders []string
	rec := &eventRecorder{}
	ctrl := NewController(ControllerConfig{
		WidgetID:       "w-1",
		Settings:       testSettings("panel"),
		Sender:         sender,
		Post:           rec.post,
		AllowedOrigins: []string{testOrigin},
		OnRender: func(html string) {
			mu.Lock()
			renders = append(renders, html)
			mu.Unlock()
		},
	})

	ctrl.HandleCommand(testOrigin, CommandOpen)
	ctrl.SetPrompt("hi")
	ctrl.Send(context.Background())
	sender.wait(t)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, renders)
	assert.Contains(t, renders[len(renders)-1], "partial")
}
