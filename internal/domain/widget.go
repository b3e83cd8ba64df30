package domain

import "time"

// Template is the closed set of widget visual styles.
type Template string

const (
	TemplateBubble  Template = "bubble"
	TemplatePanel   Template = "panel"
	TemplateChatGPT Template = "chatgpt"
)

// ParseTemplate maps a stored template value to a known variant.
// Unrecognized values fall back to bubble so a stale dashboard row
// can never break an embedded widget.
func ParseTemplate(s string) Template {
	switch Template(s) {
	case TemplateBubble:
		return TemplateBubble
	case TemplatePanel:
		return TemplatePanel
	case TemplateChatGPT:
		return TemplateChatGPT
	default:
		return TemplateBubble
	}
}

// Position is the corner of the host page the widget anchors to.
type Position string

const (
	PositionBottomRight Position = "bottom-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionTopRight    Position = "top-right"
	PositionTopLeft     Position = "top-left"
)

// ParsePosition maps a stored position value to a known variant,
// defaulting to bottom-right.
func ParsePosition(s string) Position {
	switch Position(s) {
	case PositionBottomRight, PositionBottomLeft, PositionTopRight, PositionTopLeft:
		return Position(s)
	default:
		return PositionBottomRight
	}
}

// Default color fallbacks applied when a widget row has empty color fields.
const (
	DefaultPrimaryColor = "#2563eb"
	DefaultTextColor    = "#ffffff"
)

// Widget is a configured embeddable chat widget.
type Widget struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	HeaderTitle    string    `json:"header_title"`
	WelcomeMessage string    `json:"welcome_message"`
	AIInstructions string    `json:"ai_instructions"`
	Position       string    `json:"position"`
	WidgetTemplate string    `json:"widget_template"`
	PrimaryColor   string    `json:"primary_color"`
	TextColor      string    `json:"text_color"`
	AllowedOrigins []string  `json:"allowed_origins"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// WidgetSettings is the non-sensitive subset of a widget served to
// anonymous visitors. The widget runtime is a read-only consumer.
type WidgetSettings struct {
	HeaderTitle    string   `json:"header_title"`
	WelcomeMessage string   `json:"welcome_message"`
	AIInstructions string   `json:"ai_instructions"`
	Position       string   `json:"position"`
	WidgetTemplate string   `json:"widget_template"`
	PrimaryColor   string   `json:"primary_color"`
	TextColor      string   `json:"text_color"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// Settings returns the public settings view of a widget with color
// fallbacks applied.
func (w *Widget) Settings() WidgetSettings {
	s := WidgetSettings{
		HeaderTitle:    w.HeaderTitle,
		WelcomeMessage: w.WelcomeMessage,
		AIInstructions: w.AIInstructions,
		Position:       string(ParsePosition(w.Position)),
		WidgetTemplate: w.WidgetTemplate,
		PrimaryColor:   w.PrimaryColor,
		TextColor:      w.TextColor,
		AllowedOrigins: w.AllowedOrigins,
	}
	if s.PrimaryColor == "" {
		s.PrimaryColor = DefaultPrimaryColor
	}
	if s.TextColor == "" {
		s.TextColor = DefaultTextColor
	}
	return s
}

// DefaultWidgetSettings returns the settings a brand-new widget starts with.
func DefaultWidgetSettings() WidgetSettings {
	return WidgetSettings{
		HeaderTitle:    "Chat Assistant",
		WelcomeMessage: "Hi! How can I help you today?",
		Position:       string(PositionBottomRight),
		WidgetTemplate: string(TemplateBubble),
		PrimaryColor:   DefaultPrimaryColor,
		TextColor:      DefaultTextColor,
	}
}

// CreateWidgetRequest is the request to create a widget.
type CreateWidgetRequest struct {
	Name           string   `json:"name" binding:"required"`
	HeaderTitle    string   `json:"header_title,omitempty"`
	WelcomeMessage string   `json:"welcome_message,omitempty"`
	AIInstructions string   `json:"ai_instructions,omitempty"`
	Position       string   `json:"position,omitempty"`
	WidgetTemplate string   `json:"widget_template,omitempty"`
	PrimaryColor   string   `json:"primary_color,omitempty"`
	TextColor      string   `json:"text_color,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// UpdateWidgetRequest is the request to update a widget. Nil pointers
// leave the existing value untouched.
type UpdateWidgetRequest struct {
	Name           *string   `json:"name,omitempty"`
	HeaderTitle    *string   `json:"header_title,omitempty"`
	WelcomeMessage *string   `json:"welcome_message,omitempty"`
	AIInstructions *string   `json:"ai_instructions,omitempty"`
	Position       *string   `json:"position,omitempty"`
	WidgetTemplate *string   `json:"widget_template,omitempty"`
	PrimaryColor   *string   `json:"primary_color,omitempty"`
	TextColor      *string   `json:"text_color,omitempty"`
	AllowedOrigins *[]string `json:"allowed_origins,omitempty"`
}
