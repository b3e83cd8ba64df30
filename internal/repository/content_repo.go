package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sitewise-ai/sitewise/internal/domain"
)

// ContentRepository handles content source persistence
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create creates a new content source
func (r *ContentRepository) Create(s *domain.ContentSource) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = domain.SourceStatusPending
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO content_sources (id, name, source_type, origin, content, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.SourceType, s.Origin, s.Content, s.Status, s.Error, s.CreatedAt, s.UpdatedAt)

	return err
}

// Get retrieves a content source by ID
func (r *ContentRepository) Get(id string) (*domain.ContentSource, error) {
	s := &domain.ContentSource{}
	var content, errMsg sql.NullString

	err := r.db.QueryRow(`
		SELECT id, name, source_type, origin, content, status, error, created_at, updated_at
		FROM content_sources WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &s.SourceType, &s.Origin, &content, &s.Status, &errMsg,
		&s.CreatedAt, &s.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.Content = content.String
	s.Error = errMsg.String
	return s, nil
}

// List retrieves all content sources, newest first
func (r *ContentRepository) List() ([]*domain.ContentSource, error) {
	return r.query(`
		SELECT id, name, source_type, origin, content, status, error, created_at, updated_at
		FROM content_sources ORDER BY created_at DESC
	`)
}

// ListCompleted retrieves completed sources with non-empty content,
// oldest first, capped at limit. These form the knowledge base.
func (r *ContentRepository) ListCompleted(limit int) ([]*domain.ContentSource, error) {
	return r.query(`
		SELECT id, name, source_type, origin, content, status, error, created_at, updated_at
		FROM content_sources
		WHERE status = ? AND content IS NOT NULL AND content != ''
		ORDER BY created_at ASC LIMIT ?
	`, domain.SourceStatusCompleted, limit)
}

func (r *ContentRepository) query(q string, args ...any) ([]*domain.ContentSource, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*domain.ContentSource
	for rows.Next() {
		s := &domain.ContentSource{}
		var content, errMsg sql.NullString

		if err := rows.Scan(&s.ID, &s.Name, &s.SourceType, &s.Origin, &content, &s.Status,
			&errMsg, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}

		s.Content = content.String
		s.Error = errMsg.String
		sources = append(sources, s)
	}

	return sources, rows.Err()
}

// SetStatus transitions a source's ingestion status, storing extracted
// content on completion or the failure message otherwise.
func (r *ContentRepository) SetStatus(id, status, content, errMsg string) error {
	result, err := r.db.Exec(`
		UPDATE content_sources SET status = ?, content = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, status, content, errMsg, time.Now(), id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("content source not found: %s", id)
	}

	return nil
}

// Delete deletes a content source
func (r *ContentRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM content_sources WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("content source not found: %s", id)
	}

	return nil
}

// Counts returns total, completed and pending source counts
func (r *ContentRepository) Counts() (total, completed, pending int, err error) {
	err = r.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status IN ('pending', 'processing') THEN 1 ELSE 0 END), 0)
		FROM content_sources
	`).Scan(&total, &completed, &pending)
	return
}
