package service

import (
	"context"
	"fmt"

	"github.com/sitewise-ai/sitewise/internal/config"
	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/repository"
)

// WidgetService resolves public widget configuration for anonymous
// visitors.
type WidgetService struct {
	cfg        *config.Config
	widgetRepo *repository.WidgetRepository
}

// NewWidgetService creates a new widget service
func NewWidgetService(cfg *config.Config, widgetRepo *repository.WidgetRepository) *WidgetService {
	return &WidgetService{cfg: cfg, widgetRepo: widgetRepo}
}

// GetSettings resolves a public widget identifier to its display and
// behavior configuration. Not-found is reported as domain.ErrNotFound,
// distinct from transient storage failures.
func (s *WidgetService) GetSettings(ctx context.Context, widgetID string) (*domain.WidgetSettings, error) {
	if widgetID == "" {
		return nil, domain.ErrInvalidRequest
	}

	w, err := s.widgetRepo.Get(widgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load widget %s: %w", widgetID, err)
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}

	settings := w.Settings()
	return &settings, nil
}

// BaseURL returns the public origin the widget is served from.
func (s *WidgetService) BaseURL() string {
	return s.cfg.Server.BaseURL
}
