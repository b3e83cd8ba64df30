package widget

import "github.com/sitewise-ai/sitewise/internal/domain"

// Size is an iframe footprint in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Static per-template, per-state frame sizes. Dimensions are fixed
// lookup constants rather than DOM measurements: the host page's CSS is
// unknown, and a deterministic footprint beats a precise one there.
// Closed-state sizes stay strictly smaller than open-state sizes.
var frameSizes = map[domain.Template]struct {
	open         Size
	closed       Size
	closedTeaser Size
}{
	domain.TemplateBubble: {
		open:         Size{Width: 380, Height: 540},
		closed:       Size{Width: 100, Height: 100},
		closedTeaser: Size{Width: 300, Height: 180},
	},
	domain.TemplatePanel: {
		open:         Size{Width: 380, Height: 640},
		closed:       Size{Width: 100, Height: 100},
		closedTeaser: Size{Width: 300, Height: 180},
	},
	domain.TemplateChatGPT: {
		open:         Size{Width: 420, Height: 600},
		closed:       Size{Width: 340, Height: 140},
		closedTeaser: Size{Width: 340, Height: 240},
	},
}

// FrameSize returns the iframe footprint for a template in the given
// open/teaser state.
func FrameSize(tmpl domain.Template, open, teaser bool) Size {
	s, ok := frameSizes[tmpl]
	if !ok {
		s = frameSizes[domain.TemplateBubble]
	}
	switch {
	case open:
		return s.open
	case teaser:
		return s.closedTeaser
	default:
		return s.closed
	}
}
