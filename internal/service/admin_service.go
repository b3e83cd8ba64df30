package service

import (
	"context"
	"fmt"

	"github.com/sitewise-ai/sitewise/internal/config"
	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/embed"
	"github.com/sitewise-ai/sitewise/internal/repository"
)

// AdminService backs the dashboard API: widget CRUD, content source
// management, embed snippets and stats.
type AdminService struct {
	cfg         *config.Config
	widgetRepo  *repository.WidgetRepository
	contentRepo *repository.ContentRepository
}

// NewAdminService creates a new admin service
func NewAdminService(
	cfg *config.Config,
	widgetRepo *repository.WidgetRepository,
	contentRepo *repository.ContentRepository,
) *AdminService {
	return &AdminService{
		cfg:         cfg,
		widgetRepo:  widgetRepo,
		contentRepo: contentRepo,
	}
}

// CreateWidget creates a widget, filling gaps with the stock defaults
// and normalizing template/position to known variants.
func (s *AdminService) CreateWidget(ctx context.Context, req *domain.CreateWidgetRequest) (*domain.Widget, error) {
	defaults := domain.DefaultWidgetSettings()

	w := &domain.Widget{
		Name:           req.Name,
		HeaderTitle:    req.HeaderTitle,
		WelcomeMessage: req.WelcomeMessage,
		AIInstructions: req.AIInstructions,
		Position:       string(domain.ParsePosition(req.Position)),
		WidgetTemplate: string(domain.ParseTemplate(req.WidgetTemplate)),
		PrimaryColor:   req.PrimaryColor,
		TextColor:      req.TextColor,
		AllowedOrigins: req.AllowedOrigins,
	}
	if w.HeaderTitle == "" {
		w.HeaderTitle = defaults.HeaderTitle
	}
	if w.WelcomeMessage == "" {
		w.WelcomeMessage = defaults.WelcomeMessage
	}

	if err := s.widgetRepo.Create(w); err != nil {
		return nil, fmt.Errorf("failed to create widget: %w", err)
	}
	return w, nil
}

// GetWidget returns a widget by ID, nil when absent.
func (s *AdminService) GetWidget(ctx context.Context, id string) (*domain.Widget, error) {
	return s.widgetRepo.Get(id)
}

// ListWidgets returns all widgets.
func (s *AdminService) ListWidgets(ctx context.Context) ([]*domain.Widget, error) {
	return s.widgetRepo.List()
}

// UpdateWidget applies the non-nil fields of req to an existing widget.
func (s *AdminService) UpdateWidget(ctx context.Context, id string, req *domain.UpdateWidgetRequest) (*domain.Widget, error) {
	w, err := s.widgetRepo.Get(id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.HeaderTitle != nil {
		w.HeaderTitle = *req.HeaderTitle
	}
	if req.WelcomeMessage != nil {
		w.WelcomeMessage = *req.WelcomeMessage
	}
	if req.AIInstructions != nil {
		w.AIInstructions = *req.AIInstructions
	}
	if req.Position != nil {
		w.Position = string(domain.ParsePosition(*req.Position))
	}
	if req.WidgetTemplate != nil {
		w.WidgetTemplate = string(domain.ParseTemplate(*req.WidgetTemplate))
	}
	if req.PrimaryColor != nil {
		w.PrimaryColor = *req.PrimaryColor
	}
	if req.TextColor != nil {
		w.TextColor = *req.TextColor
	}
	if req.AllowedOrigins != nil {
		w.AllowedOrigins = *req.AllowedOrigins
	}

	if err := s.widgetRepo.Update(w); err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWidget removes a widget.
func (s *AdminService) DeleteWidget(ctx context.Context, id string) error {
	return s.widgetRepo.Delete(id)
}

// EmbedSnippet returns the script tag for a widget, verifying the
// widget exists first so dashboards never hand out dead embeds.
func (s *AdminService) EmbedSnippet(ctx context.Context, id string) (string, error) {
	w, err := s.widgetRepo.Get(id)
	if err != nil {
		return "", err
	}
	if w == nil {
		return "", domain.ErrNotFound
	}
	return embed.EmbedSnippet(w.ID, s.cfg.Server.BaseURL)
}

// ListSources returns all content sources.
func (s *AdminService) ListSources(ctx context.Context) ([]*domain.ContentSource, error) {
	return s.contentRepo.List()
}

// DeleteSource removes a content source.
func (s *AdminService) DeleteSource(ctx context.Context, id string) error {
	return s.contentRepo.Delete(id)
}

// GetStats returns dashboard counts.
func (s *AdminService) GetStats(ctx context.Context) (*domain.Stats, error) {
	widgets, err := s.widgetRepo.Count()
	if err != nil {
		return nil, err
	}
	total, completed, pending, err := s.contentRepo.Counts()
	if err != nil {
		return nil, err
	}
	return &domain.Stats{
		TotalWidgets:   widgets,
		TotalSources:   total,
		ReadySources:   completed,
		PendingSources: pending,
	}, nil
}
