package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/service"
)

// Handler handles dashboard API requests
type Handler struct {
	adminService  *service.AdminService
	ingestService *service.IngestService
}

// NewHandler creates a new admin handler
func NewHandler(adminService *service.AdminService, ingestService *service.IngestService) *Handler {
	return &Handler{
		adminService:  adminService,
		ingestService: ingestService,
	}
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	widgets := r.Group("/widgets")
	{
		widgets.POST("", h.CreateWidget)
		widgets.GET("", h.ListWidgets)
		widgets.GET("/:id", h.GetWidget)
		widgets.PUT("/:id", h.UpdateWidget)
		widgets.DELETE("/:id", h.DeleteWidget)
		widgets.GET("/:id/embed", h.GetEmbedSnippet)
	}

	sources := r.Group("/sources")
	{
		sources.POST("", h.AddURLSource)
		sources.POST("/upload", h.UploadSource)
		sources.GET("", h.ListSources)
		sources.DELETE("/:id", h.DeleteSource)
	}

	r.GET("/stats", h.GetStats)
}

// Widget handlers

func (h *Handler) CreateWidget(c *gin.Context) {
	var req domain.CreateWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.adminService.CreateWidget(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, w)
}

func (h *Handler) ListWidgets(c *gin.Context) {
	widgets, err := h.adminService.ListWidgets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"widgets": widgets})
}

func (h *Handler) GetWidget(c *gin.Context) {
	id := c.Param("id")
	w, err := h.adminService.GetWidget(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if w == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "widget not found"})
		return
	}

	c.JSON(http.StatusOK, w)
}

func (h *Handler) UpdateWidget(c *gin.Context) {
	id := c.Param("id")
	var req domain.UpdateWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.adminService.UpdateWidget(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "widget not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteWidget(c *gin.Context) {
	id := c.Param("id")
	if err := h.adminService.DeleteWidget(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "widget deleted"})
}

func (h *Handler) GetEmbedSnippet(c *gin.Context) {
	id := c.Param("id")
	snippet, err := h.adminService.EmbedSnippet(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "widget not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snippet": snippet})
}

// Content source handlers

func (h *Handler) AddURLSource(c *gin.Context) {
	var req domain.AddURLSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	src, err := h.ingestService.AddURLSource(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, src)
}

func (h *Handler) UploadSource(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := h.ingestService.AddFileSource(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, src)
}

func (h *Handler) ListSources(c *gin.Context) {
	sources, err := h.adminService.ListSources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

func (h *Handler) DeleteSource(c *gin.Context) {
	id := c.Param("id")
	if err := h.adminService.DeleteSource(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "content source deleted"})
}

// Stats handler

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
