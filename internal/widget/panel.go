package widget

import "github.com/sitewise-ai/sitewise/internal/domain"

// panelRenderer shares the bubble contract but opens into a taller
// side panel instead of a floating card.
type panelRenderer struct{}

func (panelRenderer) Template() domain.Template { return domain.TemplatePanel }

func (panelRenderer) Render(v View) *Node {
	root := El("div").Class("sw-widget sw-panel").Style(positionStyle(v.Position))

	if !v.IsOpen {
		if v.ShowBubbleMessage {
			root.Add(teaserBubble(v))
		}
		root.Add(El("button", Text("💬")).
			Class("sw-launcher sw-launcher-square").
			Style("background:" + v.PrimaryColor + ";color:" + v.TextColor + ";").
			Attr("data-widget-open", ""))
		return root
	}

	panel := El("div",
		header(v),
		messageList(v),
		inputRow(v, "Type a message..."),
	).Class("sw-panel-surface")

	return root.Add(panel)
}
