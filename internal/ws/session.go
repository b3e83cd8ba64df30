// Package ws runs live widget sessions over a websocket: one
// controller per connection, commands in, resize and render frames out.
package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sitewise-ai/sitewise/internal/widget"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 16 * 1024
)

// inboundFrame is a message from the widget page. Host commands
// forwarded from the parent window carry the sender's origin; local UI
// actions carry the widget page's own origin.
type inboundFrame struct {
	Type   string `json:"type"`
	Origin string `json:"origin,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Session couples one websocket connection to one widget controller.
type Session struct {
	conn     *websocket.Conn
	outbound chan widget.Event
	logger   *zap.Logger
}

// NewSession wraps an upgraded connection.
func NewSession(conn *websocket.Conn, logger *zap.Logger) *Session {
	return &Session{
		conn:     conn,
		outbound: make(chan widget.Event, 32),
		logger:   logger,
	}
}

// Post queues an outbound event. The channel is broadcast-only; when a
// slow client falls behind, events are dropped rather than blocking the
// controller.
func (s *Session) Post(ev widget.Event) {
	select {
	case s.outbound <- ev:
	default:
		s.logger.Warn("dropping event for slow widget session", zap.String("type", ev.Type))
	}
}

// PostRender queues a render frame.
func (s *Session) PostRender(html string) {
	s.Post(widget.Event{Type: widget.MsgRender, HTML: html})
}

// Run drives the session until the connection drops or ctx is
// cancelled. The controller must have been constructed with this
// session as its sink.
func (s *Session) Run(ctx context.Context, ctrl *widget.Controller) {
	defer s.conn.Close()

	s.conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.writeLoop(ctx)

	// Initial paint: current markup plus the starting footprint.
	s.PostRender(ctrl.Render())
	ctrl.EmitSize()

	for {
		var frame inboundFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("widget session closed unexpectedly", zap.Error(err))
			}
			return
		}

		if cmd, ok := widget.ParseCommand(frame.Type); ok {
			ctrl.HandleCommand(frame.Origin, cmd)
			continue
		}

		switch frame.Type {
		case widget.MsgPrompt:
			ctrl.SetPrompt(frame.Value)
		case widget.MsgSend:
			ctrl.Send(ctx)
		case widget.MsgDismiss:
			ctrl.DismissTeaser()
		default:
			// Unknown frames are ignored, never an error
		}
	}
}

func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.outbound:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(ev); err != nil {
				s.logger.Debug("widget session write failed", zap.Error(err))
				return
			}
		}
	}
}
