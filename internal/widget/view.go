package widget

import (
	"strings"

	"github.com/sitewise-ai/sitewise/internal/domain"
)

// View is the full state snapshot a template renders from. Renderers
// are pure: the same View always yields the same tree.
type View struct {
	IsOpen            bool
	Messages          []domain.ChatMessage
	Prompt            string
	IsLoading         bool
	HeaderTitle       string
	WelcomeMessage    string
	PrimaryColor      string
	TextColor         string
	Position          domain.Position
	ShowBubbleMessage bool
}

// Renderer turns a View into markup for one widget template.
type Renderer interface {
	Template() domain.Template
	Render(v View) *Node
}

// RendererFor resolves the renderer for a template variant. The default
// arm makes the unknown-template fallback explicit: anything
// unrecognized renders as bubble, never an error.
func RendererFor(tmpl domain.Template) Renderer {
	switch tmpl {
	case domain.TemplatePanel:
		return panelRenderer{}
	case domain.TemplateChatGPT:
		return chatGPTRenderer{}
	case domain.TemplateBubble:
		return bubbleRenderer{}
	default:
		return bubbleRenderer{}
	}
}

// AwaitingFirstDelta reports whether the typing indicator should show:
// a send is in flight and no assistant text has arrived yet.
func (v View) AwaitingFirstDelta() bool {
	if !v.IsLoading || len(v.Messages) == 0 {
		return false
	}
	return v.Messages[len(v.Messages)-1].Role == domain.RoleUser
}

// SendDisabled reports whether the send affordance is disabled.
func (v View) SendDisabled() bool {
	return v.IsLoading || strings.TrimSpace(v.Prompt) == ""
}

func (v View) anchorsRight() bool {
	return v.Position == domain.PositionBottomRight || v.Position == domain.PositionTopRight
}

func positionStyle(p domain.Position) string {
	switch p {
	case domain.PositionBottomLeft:
		return "position:fixed;bottom:0;left:0;padding:16px;"
	case domain.PositionTopRight:
		return "position:fixed;top:0;right:0;padding:16px;"
	case domain.PositionTopLeft:
		return "position:fixed;top:0;left:0;padding:16px;"
	default:
		return "position:fixed;bottom:0;right:0;padding:16px;"
	}
}

// Shared fragments. The three templates deliberately share one
// interaction contract; only layout differs.

func messageList(v View) *Node {
	list := El("div").Class("sw-messages").Attr("data-widget-messages", "")

	if len(v.Messages) == 0 {
		list.Add(El("div",
			El("p", Text(v.WelcomeMessage)),
			El("p", Text("Ask me anything!")).Class("sw-hint"),
		).Class("sw-empty"))
	}

	for _, m := range v.Messages {
		row := El("div").Class("sw-row sw-row-" + m.Role)
		bubble := El("div", Text(m.Content)).Class("sw-msg sw-msg-" + m.Role)
		if m.Role == domain.RoleUser {
			bubble.Style("background:" + v.PrimaryColor + ";color:" + v.TextColor + ";")
		}
		list.Add(row.Add(bubble))
	}

	if v.AwaitingFirstDelta() {
		list.Add(El("div",
			El("span").Class("sw-dot"),
			El("span").Class("sw-dot"),
			El("span").Class("sw-dot"),
		).Class("sw-typing"))
	}

	return list
}

func inputRow(v View, placeholder string) *Node {
	input := El("input").
		Class("sw-input").
		Attr("type", "text").
		Attr("placeholder", placeholder).
		Attr("value", v.Prompt).
		Attr("data-widget-input", "")
	if v.IsLoading {
		input.Attr("disabled", "disabled")
	}

	send := El("button", Text("Send")).
		Class("sw-send").
		Style("background:" + v.PrimaryColor + ";color:" + v.TextColor + ";").
		Attr("data-widget-send", "")
	if v.SendDisabled() {
		send.Attr("disabled", "disabled")
	}

	return El("div", input, send).Class("sw-input-row")
}

func teaserBubble(v View) *Node {
	side := "left"
	if v.anchorsRight() {
		side = "right"
	}
	return El("div",
		El("button", Text("×")).Class("sw-teaser-close").Attr("data-widget-dismiss", ""),
		El("p", Text("👋 "+v.WelcomeMessage)).Class("sw-teaser-text"),
	).Class("sw-teaser sw-teaser-" + side)
}

func header(v View) *Node {
	return El("div",
		El("span", Text(v.HeaderTitle)).Class("sw-title"),
		El("button", Text("×")).Class("sw-close").Attr("data-widget-close", ""),
	).Class("sw-header").Style("background:" + v.PrimaryColor + ";color:" + v.TextColor + ";")
}
