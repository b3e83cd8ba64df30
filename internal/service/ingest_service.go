package service

import (
	"context"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sitewise-ai/sitewise/internal/config"
	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/repository"
	"go.uber.org/zap"
)

// IngestService turns URLs and uploaded files into content sources for
// the knowledge base.
type IngestService struct {
	cfg         *config.Config
	contentRepo *repository.ContentRepository
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(cfg *config.Config, contentRepo *repository.ContentRepository, logger *zap.Logger) *IngestService {
	return &IngestService{
		cfg:         cfg,
		contentRepo: contentRepo,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

// Supported upload extensions
func isSupportedUpload(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown", ".html", ".htm":
		return true
	default:
		return false
	}
}

// AddURLSource registers a URL for ingestion and fetches it in the
// background. The returned source is in pending state.
func (s *IngestService) AddURLSource(ctx context.Context, req *domain.AddURLSourceRequest) (*domain.ContentSource, error) {
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url", domain.ErrInvalidRequest)
	}

	name := req.Name
	if name == "" {
		name = u.Host
	}

	src := &domain.ContentSource{
		Name:       name,
		SourceType: domain.SourceTypeURL,
		Origin:     req.URL,
		Status:     domain.SourceStatusPending,
	}
	if err := s.contentRepo.Create(src); err != nil {
		return nil, fmt.Errorf("failed to create content source: %w", err)
	}

	go s.crawl(src.ID, req.URL)

	return src, nil
}

// crawl fetches a registered URL and stores its extracted text.
func (s *IngestService) crawl(sourceID, pageURL string) {
	if err := s.contentRepo.SetStatus(sourceID, domain.SourceStatusProcessing, "", ""); err != nil {
		s.logger.Warn("failed to mark source processing", zap.String("source_id", sourceID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	text, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		s.logger.Warn("url ingestion failed", zap.String("url", pageURL), zap.Error(err))
		s.contentRepo.SetStatus(sourceID, domain.SourceStatusFailed, "", err.Error())
		return
	}

	if err := s.contentRepo.SetStatus(sourceID, domain.SourceStatusCompleted, text, ""); err != nil {
		s.logger.Warn("failed to store crawled content", zap.String("source_id", sourceID), zap.Error(err))
	}
}

func (s *IngestService) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "SiteWiseBot/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	limit := int64(2 << 20) // 2 MiB of markup is plenty for one page
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}

	text := ExtractText(string(body))
	if text == "" {
		return "", fmt.Errorf("no text content found")
	}
	return text, nil
}

// AddFileSource ingests an uploaded text, markdown or HTML file. Files
// are small enough to process inline; the source completes immediately.
func (s *IngestService) AddFileSource(ctx context.Context, file *multipart.FileHeader) (*domain.ContentSource, error) {
	if !isSupportedUpload(file.Filename) {
		return nil, fmt.Errorf("%w: unsupported file type %s", domain.ErrInvalidRequest, filepath.Ext(file.Filename))
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	content := string(raw)
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".html", ".htm":
		content = ExtractText(content)
	default:
		content = strings.TrimSpace(content)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: file has no text content", domain.ErrInvalidRequest)
	}

	src := &domain.ContentSource{
		Name:       file.Filename,
		SourceType: domain.SourceTypeFile,
		Origin:     file.Filename,
		Content:    content,
		Status:     domain.SourceStatusCompleted,
	}
	if err := s.contentRepo.Create(src); err != nil {
		return nil, fmt.Errorf("failed to create content source: %w", err)
	}

	return src, nil
}

var (
	scriptRe     = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// ExtractText strips markup from an HTML document, keeping readable
// text only. Deliberately crude: real crawling is delegated to an
// external service, this covers direct uploads and simple pages.
func ExtractText(markup string) string {
	text := scriptRe.ReplaceAllString(markup, " ")
	text = tagRe.ReplaceAllString(text, "\n")
	text = html.UnescapeString(text)
	text = whitespaceRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			kept = append(kept, t)
		}
	}
	text = strings.Join(kept, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
