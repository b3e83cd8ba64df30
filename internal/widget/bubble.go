package widget

import "github.com/sitewise-ai/sitewise/internal/domain"

// bubbleRenderer is the default template: a circular floating action
// button when closed (with an optional dismissible teaser), a rounded
// chat card with header, message list and input when open.
type bubbleRenderer struct{}

func (bubbleRenderer) Template() domain.Template { return domain.TemplateBubble }

func (bubbleRenderer) Render(v View) *Node {
	root := El("div").Class("sw-widget sw-bubble").Style(positionStyle(v.Position))

	if !v.IsOpen {
		if v.ShowBubbleMessage {
			root.Add(teaserBubble(v))
		}
		root.Add(El("button", Text("💬")).
			Class("sw-launcher sw-launcher-round").
			Style("background:" + v.PrimaryColor + ";color:" + v.TextColor + ";").
			Attr("data-widget-open", ""))
		return root
	}

	card := El("div",
		header(v),
		messageList(v),
		inputRow(v, "Type a message..."),
	).Class("sw-card")

	return root.Add(card)
}
