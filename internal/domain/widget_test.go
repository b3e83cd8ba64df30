package domain

import "testing"

func TestParseTemplateFallsBackToBubble(t *testing.T) {
	tests := []struct {
		in   string
		want Template
	}{
		{"bubble", TemplateBubble},
		{"panel", TemplatePanel},
		{"chatgpt", TemplateChatGPT},
		{"carousel", TemplateBubble},
		{"", TemplateBubble},
		{"BUBBLE", TemplateBubble},
	}
	for _, tt := range tests {
		if got := ParseTemplate(tt.in); got != tt.want {
			t.Errorf("ParseTemplate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePositionFallsBackToBottomRight(t *testing.T) {
	for _, valid := range []Position{PositionBottomRight, PositionBottomLeft, PositionTopRight, PositionTopLeft} {
		if got := ParsePosition(string(valid)); got != valid {
			t.Errorf("ParsePosition(%q) = %q", valid, got)
		}
	}
	for _, invalid := range []string{"", "middle", "bottom", "top-center"} {
		if got := ParsePosition(invalid); got != PositionBottomRight {
			t.Errorf("ParsePosition(%q) = %q, want bottom-right", invalid, got)
		}
	}
}

func TestSettingsAppliesColorFallbacks(t *testing.T) {
	w := Widget{
		HeaderTitle:    "Chat",
		WelcomeMessage: "Hi!",
		Position:       "weird-corner",
		WidgetTemplate: "panel",
	}

	s := w.Settings()
	if s.PrimaryColor != DefaultPrimaryColor {
		t.Errorf("PrimaryColor = %q, want default", s.PrimaryColor)
	}
	if s.TextColor != DefaultTextColor {
		t.Errorf("TextColor = %q, want default", s.TextColor)
	}
	if s.Position != string(PositionBottomRight) {
		t.Errorf("Position = %q, want normalized bottom-right", s.Position)
	}

	w.PrimaryColor = "#111111"
	w.TextColor = "#eeeeee"
	s = w.Settings()
	if s.PrimaryColor != "#111111" || s.TextColor != "#eeeeee" {
		t.Errorf("explicit colors overridden: %+v", s)
	}
}
