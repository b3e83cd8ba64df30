package domain

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single entry in a widget conversation. Conversations
// are ephemeral: they live for a page session and are never persisted.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request to the streaming chat endpoint.
type ChatRequest struct {
	Messages     []ChatMessage `json:"messages" binding:"required"`
	WidgetID     string        `json:"widgetId,omitempty"`
	SystemPrompt string        `json:"systemPrompt,omitempty"`
}

// StreamChunk is one SSE payload on the widget chat stream. The stream
// is a sequence of `data: {"content": …}` lines ending in `data: [DONE]`.
type StreamChunk struct {
	Content string `json:"content"`
}

// DoneSentinel terminates the widget chat stream.
const DoneSentinel = "[DONE]"
