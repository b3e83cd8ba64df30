// Package widget implements the embeddable chat widget runtime: the
// open/closed state machine, the conversation it owns, the cross-frame
// command protocol, and the three template renderers.
package widget

// Message type strings exchanged with the hosting parent page. The
// prefix namespaces the messages so the widget never reacts to another
// embed's traffic.
const (
	MsgOpen   = "sitewise-open"
	MsgClose  = "sitewise-close"
	MsgToggle = "sitewise-toggle"
	MsgResize = "sitewise-resize"

	// Session-channel message types, used by the live widget session in
	// addition to the host command set.
	MsgPrompt  = "sitewise-prompt"
	MsgSend    = "sitewise-send"
	MsgDismiss = "sitewise-dismiss"
	MsgRender  = "sitewise-render"
)

// Command is an inbound host command.
type Command int

const (
	CommandOpen Command = iota
	CommandClose
	CommandToggle
)

// ParseCommand maps an inbound message type to a command. The second
// return value reports whether the type is a recognized command.
func ParseCommand(msgType string) (Command, bool) {
	switch msgType {
	case MsgOpen:
		return CommandOpen, true
	case MsgClose:
		return CommandClose, true
	case MsgToggle:
		return CommandToggle, true
	default:
		return 0, false
	}
}

// Event is an outbound notification to the hosting parent page. The
// channel is broadcast-only: no acknowledgment is ever expected.
type Event struct {
	Type   string `json:"type"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	HTML   string `json:"html,omitempty"`
}

// PostFunc delivers outbound events across the frame boundary. It is
// injected so the protocol can be exercised without a real browser
// frame on the other side.
type PostFunc func(Event)

// OriginAllowlist is the set of origins inbound commands are accepted
// from. Commands from any other origin are dropped without state change.
type OriginAllowlist map[string]struct{}

// NewOriginAllowlist builds an allowlist from the configured origins.
func NewOriginAllowlist(origins ...string) OriginAllowlist {
	a := make(OriginAllowlist, len(origins))
	for _, o := range origins {
		if o != "" {
			a[o] = struct{}{}
		}
	}
	return a
}

// Allows reports whether origin may issue commands.
func (a OriginAllowlist) Allows(origin string) bool {
	_, ok := a[origin]
	return ok
}
