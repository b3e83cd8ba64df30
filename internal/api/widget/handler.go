package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sitewise-ai/sitewise/internal/api/middleware"
	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/embed"
	"github.com/sitewise-ai/sitewise/internal/service"
	"github.com/sitewise-ai/sitewise/internal/stream"
	widgetruntime "github.com/sitewise-ai/sitewise/internal/widget"
	"github.com/sitewise-ai/sitewise/internal/ws"
	"go.uber.org/zap"
)

// Handler serves the public widget surface: settings lookup, loader
// script, widget page, chat stream and live sessions. Everything here
// is anonymous by design.
type Handler struct {
	widgetService *service.WidgetService
	chatService   *service.ChatService
	logger        *zap.Logger
	upgrader      websocket.Upgrader
}

// NewHandler creates a new widget handler
func NewHandler(widgetService *service.WidgetService, chatService *service.ChatService, logger *zap.Logger) *Handler {
	h := &Handler{
		widgetService: widgetService,
		chatService:   chatService,
		logger:        logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		// Sessions are opened by the widget page itself, which is
		// served from our own origin.
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == h.baseOrigin()
		},
	}
	return h
}

// RegisterRoutes registers the public widget API routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/settings", h.GetSettings)
	r.POST("/chat", h.Chat)
	r.GET("/session/:widget_id", h.Session)
}

// RegisterPageRoutes registers the top-level embed routes
func (h *Handler) RegisterPageRoutes(r *gin.Engine) {
	r.GET("/widget.js", h.Loader)
	r.GET("/widget/:widget_id", h.Page)
}

// GetSettings returns the public configuration for a widget. No-cache
// headers keep dashboard edits visible on the very next widget load.
func (h *Handler) GetSettings(c *gin.Context) {
	widgetID := c.Query("id")
	if widgetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Widget ID required"})
		return
	}

	settings, err := h.widgetService.GetSettings(c.Request.Context(), widgetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Widget not found"})
			return
		}
		h.logger.Error("failed to resolve widget settings", zap.String("widget_id", widgetID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load widget settings"})
		return
	}

	// Avoid stale settings on embed websites
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Chat proxies a widget conversation to the LLM gateway as an SSE
// stream of `data: {"content": …}` lines terminated by `data: [DONE]`.
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w := c.Writer
	wrote := false

	err := h.chatService.Stream(c.Request.Context(), &req, func(delta string) error {
		if !wrote {
			// Headers go out with the first delta so early gateway
			// failures can still return a proper error status.
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			wrote = true
		}
		data, err := json.Marshal(domain.StreamChunk{Content: delta})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		w.Flush()
		return nil
	})

	if err != nil {
		if wrote {
			// Mid-stream failure: the client sees the stream end early.
			h.logger.Warn("chat stream interrupted", zap.Error(err))
			middleware.ObserveChatStream("error")
			return
		}
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			middleware.ObserveChatStream("rate_limited")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limits exceeded, please try again later."})
		case errors.Is(err, domain.ErrPaymentRequired):
			middleware.ObserveChatStream("error")
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment required, please add funds to your AI workspace."})
		case errors.Is(err, domain.ErrInvalidRequest):
			middleware.ObserveChatStream("error")
			c.JSON(http.StatusBadRequest, gin.H{"error": "messages are required"})
		default:
			h.logger.Error("chat stream failed", zap.Error(err))
			middleware.ObserveChatStream("error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "AI gateway error"})
		}
		return
	}

	if !wrote {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
	}
	fmt.Fprintf(w, "data: %s\n\n", domain.DoneSentinel)
	w.Flush()
	middleware.ObserveChatStream("ok")
}

// Loader serves the embeddable loader script. A missing widget ID is
// an integration mistake and fails loudly with a 400.
func (h *Handler) Loader(c *gin.Context) {
	widgetID := c.Query("id")
	script, err := embed.LoaderScript(widgetID, h.widgetService.BaseURL())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.String(http.StatusBadRequest, "Widget ID required")
			return
		}
		h.logger.Error("failed to render loader script", zap.Error(err))
		c.String(http.StatusInternalServerError, "loader unavailable")
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/javascript", []byte(script))
}

// Page renders the iframe-hosted widget page. Any resolution failure
// renders an empty transparent document: the end visitor never sees a
// widget error.
func (h *Handler) Page(c *gin.Context) {
	widgetID := c.Param("widget_id")

	settings, err := h.widgetService.GetSettings(c.Request.Context(), widgetID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidRequest) {
			h.logger.Error("widget page settings lookup failed", zap.String("widget_id", widgetID), zap.Error(err))
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(emptyWidgetPage))
		return
	}

	page, err := renderWidgetPage(widgetID, settings)
	if err != nil {
		h.logger.Error("widget page render failed", zap.String("widget_id", widgetID), zap.Error(err))
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(emptyWidgetPage))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Session upgrades to a websocket and runs the widget controller for
// one visitor.
func (h *Handler) Session(c *gin.Context) {
	widgetID := c.Param("widget_id")

	settings, err := h.widgetService.GetSettings(c.Request.Context(), widgetID)
	if err != nil {
		// Same silent contract as the page: no widget, no session.
		c.Status(http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("widget session upgrade failed", zap.Error(err))
		return
	}

	session := ws.NewSession(conn, h.logger)

	allowed := append([]string{h.baseOrigin()}, settings.AllowedOrigins...)
	ctrl := widgetruntime.NewController(widgetruntime.ControllerConfig{
		WidgetID:       widgetID,
		Settings:       settings,
		Sender:         stream.New(h.widgetService.BaseURL() + "/api/widget/chat"),
		Post:           session.Post,
		AllowedOrigins: allowed,
		OnRender:       session.PostRender,
		Logger:         h.logger,
	})

	session.Run(c.Request.Context(), ctrl)
}

func (h *Handler) baseOrigin() string {
	u, err := url.Parse(h.widgetService.BaseURL())
	if err != nil || u.Scheme == "" || u.Host == "" {
		return h.widgetService.BaseURL()
	}
	return u.Scheme + "://" + u.Host
}
