package widget

import "github.com/sitewise-ai/sitewise/internal/domain"

// chatGPTRenderer keeps a compact prompt bar visible while closed:
// typing there and pressing Enter opens the full conversational
// surface and sends in one step.
type chatGPTRenderer struct{}

func (chatGPTRenderer) Template() domain.Template { return domain.TemplateChatGPT }

func (chatGPTRenderer) Render(v View) *Node {
	root := El("div").Class("sw-widget sw-chatgpt").Style(positionStyle(v.Position))

	if !v.IsOpen {
		if v.ShowBubbleMessage {
			root.Add(teaserBubble(v))
		}

		bar := El("div",
			El("span", Text("✨")).Class("sw-spark"),
			El("input").
				Class("sw-input sw-bar-input").
				Attr("type", "text").
				Attr("placeholder", "Ask me anything...").
				Attr("value", v.Prompt).
				Attr("data-widget-input", ""),
		).Class("sw-prompt-bar").Style("border-color:" + v.PrimaryColor + ";")

		return root.Add(bar)
	}

	surface := El("div",
		El("div",
			El("span", Text("✨")).Class("sw-spark").Style("background:"+v.PrimaryColor+";color:"+v.TextColor+";"),
			El("span", Text(v.HeaderTitle)).Class("sw-title"),
			El("button", Text("×")).Class("sw-close").Attr("data-widget-close", ""),
		).Class("sw-header sw-header-minimal"),
		messageList(v),
		inputRow(v, "Message..."),
	).Class("sw-surface")

	return root.Add(surface)
}
