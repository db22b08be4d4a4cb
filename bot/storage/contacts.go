package storage

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/agrohub/transportbot/core/logger"
)

// Contact is one remembered loading or unloading contact.
type Contact struct {
	Type  string `db:"contact_type"`
	Value string `db:"contact_value"`
}

// Contacts is the contact book repository. The book keeps only the latest
// set per user: every successful dispatch replaces it wholesale.
type Contacts struct {
	db *sqlx.DB
}

// NewContacts binds the repository to a database handle.
func NewContacts(db *sqlx.DB) *Contacts {
	return &Contacts{db: db}
}

// Replace swaps the user's contact set in one transaction.
func (c *Contacts) Replace(ctx context.Context, userID int64, contacts []Contact) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin contacts tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear contacts: %w", err)
	}
	for _, contact := range contacts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contacts (user_id, contact_type, contact_value)
			VALUES ($1, $2, $3)`, userID, contact.Type, contact.Value)
		if err != nil {
			return fmt.Errorf("insert contact: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit contacts: %w", err)
	}
	logger.SVCContacts.LogAttrs(ctx, slog.LevelInfo, "contacts.replaced",
		slog.Int64("user_id", userID),
		slog.Int("count", len(contacts)),
	)
	return nil
}

// List returns the user's contacts, newest first.
func (c *Contacts) List(ctx context.Context, userID int64) ([]Contact, error) {
	var out []Contact
	err := c.db.SelectContext(ctx, &out, `
		SELECT contact_type, contact_value
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return out, nil
}
