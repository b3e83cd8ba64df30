package widget

import (
	"context"
	"strings"
	"sync"

	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/stream"
	"go.uber.org/zap"
)

// Sender issues one streaming chat request and reports back through
// callbacks. Satisfied by *stream.Client.
type Sender interface {
	Stream(ctx context.Context, req domain.ChatRequest, cb stream.Callbacks)
}

// apologyMessage is the single visitor-visible assistant message shown
// when a send fails. Failures never propagate to the host page.
const apologyMessage = "Sorry, I encountered an error. Please try again."

// ControllerConfig configures a widget controller instance.
type ControllerConfig struct {
	WidgetID string
	// Settings is the resolved widget configuration. Nil settings (or a
	// missing widget ID) disable the controller entirely: it renders
	// nothing and ignores every command rather than surfacing an error
	// to the visitor.
	Settings *domain.WidgetSettings
	Sender   Sender
	// Post delivers outbound events (resize notifications) to the
	// hosting parent page.
	Post PostFunc
	// AllowedOrigins is the inbound command allow-list. Commands from
	// origins outside it are dropped with no state change.
	AllowedOrigins []string
	// OnRender, when set, receives the freshly rendered widget markup
	// after every state change. The view therefore always reflects the
	// latest message.
	OnRender func(html string)
	Logger   *zap.Logger
}

// Controller owns the widget's conversation and open/closed state,
// dispatches to the configured template renderer, and speaks the
// cross-frame command protocol. All mutations are serialized; at most
// one send is in flight per instance.
type Controller struct {
	mu sync.Mutex

	widgetID string
	settings domain.WidgetSettings
	template domain.Template
	renderer Renderer
	disabled bool

	isOpen     bool
	showTeaser bool
	isLoading  bool
	prompt     string
	messages   []domain.ChatMessage

	allowed  OriginAllowlist
	post     PostFunc
	onRender func(html string)
	sender   Sender
	logger   *zap.Logger
}

// NewController creates a widget controller. The teaser bubble starts
// visible; the pane starts closed.
func NewController(cfg ControllerConfig) *Controller {
	c := &Controller{
		widgetID:   cfg.WidgetID,
		sender:     cfg.Sender,
		post:       cfg.Post,
		onRender:   cfg.OnRender,
		allowed:    NewOriginAllowlist(cfg.AllowedOrigins...),
		showTeaser: true,
		logger:     cfg.Logger,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	if cfg.Settings == nil || cfg.WidgetID == "" {
		c.disabled = true
		return c
	}

	c.settings = *cfg.Settings
	c.template = domain.ParseTemplate(cfg.Settings.WidgetTemplate)
	c.renderer = RendererFor(c.template)
	return c
}

// Disabled reports whether the controller was created without
// resolvable settings and is a silent no-op.
func (c *Controller) Disabled() bool { return c.disabled }

// Template returns the resolved template variant.
func (c *Controller) Template() domain.Template { return c.template }

// HandleCommand applies an inbound host command. Commands from origins
// outside the allow-list are ignored: no state change, no error.
func (c *Controller) HandleCommand(origin string, cmd Command) {
	if c.disabled {
		return
	}
	if !c.allowed.Allows(origin) {
		c.logger.Debug("dropping command from unexpected origin", zap.String("origin", origin))
		return
	}

	switch cmd {
	case CommandOpen:
		c.setOpen(true)
	case CommandClose:
		c.setOpen(false)
	case CommandToggle:
		c.toggle()
	}
}

// Open opens the widget pane.
func (c *Controller) Open() { c.setOpen(true) }

// Close closes the widget pane.
func (c *Controller) Close() { c.setOpen(false) }

func (c *Controller) setOpen(open bool) {
	if c.disabled {
		return
	}
	c.mu.Lock()
	if c.isOpen == open {
		c.mu.Unlock()
		return
	}
	c.isOpen = open
	ev := c.sizeEventLocked()
	html := c.renderLocked()
	c.mu.Unlock()
	c.dispatch(&ev, html)
}

func (c *Controller) toggle() {
	c.mu.Lock()
	c.isOpen = !c.isOpen
	ev := c.sizeEventLocked()
	html := c.renderLocked()
	c.mu.Unlock()
	c.dispatch(&ev, html)
}

// DismissTeaser hides the intro teaser bubble. Meaningful only while
// the pane is closed; once dismissed it stays dismissed.
func (c *Controller) DismissTeaser() {
	if c.disabled {
		return
	}
	c.mu.Lock()
	if !c.showTeaser {
		c.mu.Unlock()
		return
	}
	c.showTeaser = false
	ev := c.sizeEventLocked()
	html := c.renderLocked()
	c.mu.Unlock()
	c.dispatch(&ev, html)
}

// SetPrompt updates the input field value.
func (c *Controller) SetPrompt(p string) {
	if c.disabled {
		return
	}
	c.mu.Lock()
	c.prompt = p
	html := c.renderLocked()
	c.mu.Unlock()
	c.dispatch(nil, html)
}

// Send submits the current prompt. No-op when the prompt is empty or
// whitespace, or while a previous send is still in flight — the
// trailing-assistant merge assumes a single active accumulation. On
// the chatgpt template a send from the closed prompt bar opens the
// pane first.
func (c *Controller) Send(ctx context.Context) {
	if c.disabled || c.sender == nil {
		return
	}

	c.mu.Lock()
	text := strings.TrimSpace(c.prompt)
	if text == "" || c.isLoading {
		c.mu.Unlock()
		return
	}

	var ev *Event
	if !c.isOpen && c.template == domain.TemplateChatGPT {
		c.isOpen = true
		sized := c.sizeEventLocked()
		ev = &sized
	}

	c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})
	c.prompt = ""
	c.isLoading = true

	history := make([]domain.ChatMessage, len(c.messages))
	copy(history, c.messages)
	req := domain.ChatRequest{
		Messages:     history,
		WidgetID:     c.widgetID,
		SystemPrompt: c.settings.AIInstructions,
	}
	html := c.renderLocked()
	c.mu.Unlock()
	c.dispatch(ev, html)

	go c.sender.Stream(ctx, req, stream.Callbacks{
		OnDelta: c.applyDelta(),
		OnDone:  c.finishSend,
		OnError: c.failSend,
	})
}

// applyDelta returns the delta callback for one send. The accumulator
// is owned by this send operation; each delta merges the accumulated
// text into the trailing assistant message, creating it on the first
// delta.
func (c *Controller) applyDelta() func(string) {
	var acc strings.Builder
	return func(delta string) {
		c.mu.Lock()
		acc.WriteString(delta)
		if n := len(c.messages); n > 0 && c.messages[n-1].Role == domain.RoleAssistant {
			c.messages[n-1].Content = acc.String()
		} else {
			c.messages = append(c.messages, domain.ChatMessage{
				Role:    domain.RoleAssistant,
				Content: acc.String(),
			})
		}
		html := c.renderLocked()
		c.mu.Unlock()
		c.dispatch(nil, html)
	}
}

func (c *Controller) finishSend() {
	c.mu.Lock()
	c.isLoading = false
	html := c.renderLocked()
	c.mu.Unlock()
	c.dispatch(nil, html)
}

func (c *Controller) failSend(msg string) {
	c.logger.Warn("chat send failed", zap.String("widget_id", c.widgetID), zap.String("error", msg))
	c.mu.Lock()
	c.isLoading = false
	c.messages = append(c.messages, domain.ChatMessage{
		Role:    domain.RoleAssistant,
		Content: apologyMessage,
	})
	html := c.renderLocked()
	c.mu.Unlock()
	c.dispatch(nil, html)
}

// Render returns the widget markup for the current state. A disabled
// controller renders nothing.
func (c *Controller) Render() string {
	if c.disabled {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

// EmitSize posts the current footprint to the host. Called once after
// mount so the host frame starts at the right dimensions.
func (c *Controller) EmitSize() {
	if c.disabled {
		return
	}
	c.mu.Lock()
	ev := c.sizeEventLocked()
	c.mu.Unlock()
	c.dispatch(&ev, "")
}

// IsOpen reports whether the widget pane is open.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// IsLoading reports whether a send is in flight.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLoading
}

// TeaserVisible reports whether the intro teaser is still showing.
func (c *Controller) TeaserVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showTeaser
}

// Messages returns a copy of the conversation so far.
func (c *Controller) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) sizeEventLocked() Event {
	size := FrameSize(c.template, c.isOpen, c.showTeaser)
	return Event{Type: MsgResize, Width: size.Width, Height: size.Height}
}

func (c *Controller) renderLocked() string {
	if c.renderer == nil {
		return ""
	}
	v := View{
		IsOpen:            c.isOpen,
		Messages:          c.messages,
		Prompt:            c.prompt,
		IsLoading:         c.isLoading,
		HeaderTitle:       c.settings.HeaderTitle,
		WelcomeMessage:    c.settings.WelcomeMessage,
		PrimaryColor:      c.settings.PrimaryColor,
		TextColor:         c.settings.TextColor,
		Position:          domain.ParsePosition(c.settings.Position),
		ShowBubbleMessage: c.showTeaser,
	}
	return c.renderer.Render(v).HTML()
}

// dispatch delivers outbound events and render notifications outside
// the state lock.
func (c *Controller) dispatch(ev *Event, html string) {
	if ev != nil && c.post != nil {
		c.post(*ev)
	}
	if html != "" && c.onRender != nil {
		c.onRender(html)
	}
}
