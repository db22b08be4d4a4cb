// Package storage persists request templates and reusable contacts in
// PostgreSQL.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/agrohub/transportbot/bot/form"
	"github.com/agrohub/transportbot/core/logger"
)

// TemplateSummary is the list view of a stored template.
type TemplateSummary struct {
	ID        int64     `db:"id"`
	Name      string    `db:"template_name"`
	CreatedAt time.Time `db:"created_at"`
}

type templateRow struct {
	ID   int64          `db:"id"`
	Name string         `db:"template_name"`
	Data types.JSONText `db:"template_data"`
}

// Templates is the template repository.
type Templates struct {
	db *sqlx.DB
}

// NewTemplates binds the repository to a database handle.
func NewTemplates(db *sqlx.DB) *Templates {
	return &Templates{db: db}
}

// List returns the user's templates, newest first. Duplicate names are
// allowed; the ordering keeps the most recent save on top.
func (t *Templates) List(ctx context.Context, userID int64) ([]TemplateSummary, error) {
	var out []TemplateSummary
	err := t.db.SelectContext(ctx, &out, `
		SELECT id, template_name, created_at
		FROM templates
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

// Get loads one template with its form snapshot decoded.
func (t *Templates) Get(ctx context.Context, id int64) (string, form.Snapshot, error) {
	var row templateRow
	err := t.db.GetContext(ctx, &row, `
		SELECT id, template_name, template_data
		FROM templates
		WHERE id = $1`, id)
	if err != nil {
		return "", nil, fmt.Errorf("get template %d: %w", id, err)
	}
	var snap form.Snapshot
	if err := json.Unmarshal(row.Data, &snap); err != nil {
		return "", nil, fmt.Errorf("decode template %d: %w", id, err)
	}
	return row.Name, snap, nil
}

// Save appends a new template snapshot for the user.
func (t *Templates) Save(ctx context.Context, userID int64, name string, data form.Snapshot) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	_, err = t.db.ExecContext(ctx, `
		INSERT INTO templates (user_id, template_name, template_data)
		VALUES ($1, $2, $3)`, userID, name, types.JSONText(raw))
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	logger.SVCTemplates.LogAttrs(ctx, slog.LevelInfo, "template.saved",
		slog.Int64("user_id", userID),
		slog.String("template_name", name),
	)
	return nil
}

// Delete removes a template by ID.
func (t *Templates) Delete(ctx context.Context, id int64) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete template %d: %w", id, err)
	}
	logger.SVCTemplates.LogAttrs(ctx, slog.LevelInfo, "template.deleted",
		slog.Int64("template_id", id),
	)
	return nil
}
