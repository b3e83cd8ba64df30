package domain

import "time"

// Content source status constants
const (
	SourceStatusPending    = "pending"
	SourceStatusProcessing = "processing"
	SourceStatusCompleted  = "completed"
	SourceStatusFailed     = "failed"
)

// Content source type constants
const (
	SourceTypeURL  = "url"
	SourceTypeFile = "file"
)

// ContentSource is a piece of ingested site content used to ground
// assistant answers. Only completed sources contribute to the
// knowledge base.
type ContentSource struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourceType string    `json:"source_type"`
	Origin     string    `json:"origin"` // source URL or uploaded filename
	Content    string    `json:"content,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AddURLSourceRequest is the request to ingest a page by URL.
type AddURLSourceRequest struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url" binding:"required"`
}

// Stats summarises dashboard-facing counts.
type Stats struct {
	TotalWidgets   int `json:"total_widgets"`
	TotalSources   int `json:"total_sources"`
	ReadySources   int `json:"ready_sources"`
	PendingSources int `json:"pending_sources"`
}
