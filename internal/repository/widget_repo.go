package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sitewise-ai/sitewise/internal/domain"
)

// WidgetRepository handles widget persistence
type WidgetRepository struct {
	db *DB
}

// NewWidgetRepository creates a new widget repository
func NewWidgetRepository(db *DB) *WidgetRepository {
	return &WidgetRepository{db: db}
}

// Create creates a new widget
func (r *WidgetRepository) Create(w *domain.Widget) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	originsJSON, _ := json.Marshal(w.AllowedOrigins)

	_, err := r.db.Exec(`
		INSERT INTO widgets (id, name, header_title, welcome_message, ai_instructions,
			position, widget_template, primary_color, text_color, allowed_origins,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.Name, w.HeaderTitle, w.WelcomeMessage, w.AIInstructions,
		w.Position, w.WidgetTemplate, w.PrimaryColor, w.TextColor, string(originsJSON),
		w.CreatedAt, w.UpdatedAt)

	return err
}

// Get retrieves a widget by ID
func (r *WidgetRepository) Get(id string) (*domain.Widget, error) {
	w := &domain.Widget{}
	var instructions, primaryColor, textColor, originsJSON sql.NullString

	err := r.db.QueryRow(`
		SELECT id, name, header_title, welcome_message, ai_instructions,
			position, widget_template, primary_color, text_color, allowed_origins,
			created_at, updated_at
		FROM widgets WHERE id = ?
	`, id).Scan(&w.ID, &w.Name, &w.HeaderTitle, &w.WelcomeMessage, &instructions,
		&w.Position, &w.WidgetTemplate, &primaryColor, &textColor, &originsJSON,
		&w.CreatedAt, &w.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	w.AIInstructions = instructions.String
	w.PrimaryColor = primaryColor.String
	w.TextColor = textColor.String
	if originsJSON.Valid && originsJSON.String != "" {
		json.Unmarshal([]byte(originsJSON.String), &w.AllowedOrigins)
	}

	return w, nil
}

// List retrieves all widgets
func (r *WidgetRepository) List() ([]*domain.Widget, error) {
	rows, err := r.db.Query(`
		SELECT id, name, header_title, welcome_message, ai_instructions,
			position, widget_template, primary_color, text_color, allowed_origins,
			created_at, updated_at
		FROM widgets ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var widgets []*domain.Widget
	for rows.Next() {
		w := &domain.Widget{}
		var instructions, primaryColor, textColor, originsJSON sql.NullString

		if err := rows.Scan(&w.ID, &w.Name, &w.HeaderTitle, &w.WelcomeMessage, &instructions,
			&w.Position, &w.WidgetTemplate, &primaryColor, &textColor, &originsJSON,
			&w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}

		w.AIInstructions = instructions.String
		w.PrimaryColor = primaryColor.String
		w.TextColor = textColor.String
		if originsJSON.Valid && originsJSON.String != "" {
			json.Unmarshal([]byte(originsJSON.String), &w.AllowedOrigins)
		}
		widgets = append(widgets, w)
	}

	return widgets, rows.Err()
}

// Update updates a widget
func (r *WidgetRepository) Update(w *domain.Widget) error {
	w.UpdatedAt = time.Now()
	originsJSON, _ := json.Marshal(w.AllowedOrigins)

	result, err := r.db.Exec(`
		UPDATE widgets SET name = ?, header_title = ?, welcome_message = ?,
			ai_instructions = ?, position = ?, widget_template = ?,
			primary_color = ?, text_color = ?, allowed_origins = ?, updated_at = ?
		WHERE id = ?
	`, w.Name, w.HeaderTitle, w.WelcomeMessage, w.AIInstructions,
		w.Position, w.WidgetTemplate, w.PrimaryColor, w.TextColor,
		string(originsJSON), w.UpdatedAt, w.ID)

	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("widget not found: %s", w.ID)
	}

	return nil
}

// Delete deletes a widget
func (r *WidgetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM widgets WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("widget not found: %s", id)
	}

	return nil
}

// Count returns the total number of widgets
func (r *WidgetRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM widgets`).Scan(&count)
	return count, err
}
