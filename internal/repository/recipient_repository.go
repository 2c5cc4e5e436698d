package repository

import (
	"context"
	"database/sql"
	"fmt"

	"botpanel/internal/models"
)

type recipientRepository struct {
	db *sql.DB
}

// NewRecipientRepository creates a new recipient repository
func NewRecipientRepository(db *sql.DB) RecipientRepository {
	return &recipientRepository{db: db}
}

// Upsert inserts a recipient or refreshes its profile fields.
// The row id (and therefore the enumeration position) never changes.
func (r *recipientRepository) Upsert(ctx context.Context, recipient *models.Recipient) error {
	query := `
		INSERT INTO recipients (telegram_id, username, first_name, is_blocked)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username, first_name = EXCLUDED.first_name
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		recipient.TelegramID,
		recipient.Username,
		recipient.FirstName,
		recipient.IsBlocked,
	).Scan(&recipient.ID, &recipient.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert recipient: %w", err)
	}

	return nil
}

// CountEligible returns the number of recipients that can receive broadcasts
func (r *recipientRepository) CountEligible(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM recipients WHERE NOT is_blocked`

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count eligible recipients: %w", err)
	}

	return count, nil
}

// EligibleWindow returns up to limit eligible recipient telegram ids
// starting at offset, ordered by the immutable row id. A short or empty
// window means the enumeration is exhausted beyond the offset.
func (r *recipientRepository) EligibleWindow(ctx context.Context, offset, limit int) ([]int64, error) {
	if offset < 0 {
		return nil, fmt.Errorf("offset must be non-negative, got %d", offset)
	}

	query := `
		SELECT telegram_id
		FROM recipients
		WHERE NOT is_blocked
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipient window: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recipient id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipient window: %w", err)
	}

	return ids, nil
}

// List retrieves recipients with pagination
func (r *recipientRepository) List(ctx context.Context, limit, offset int) ([]*models.Recipient, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, telegram_id, username, first_name, is_blocked, created_at
		FROM recipients
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer rows.Close()

	recipients := []*models.Recipient{}
	for rows.Next() {
		recipient := &models.Recipient{}
		err := rows.Scan(
			&recipient.ID,
			&recipient.TelegramID,
			&recipient.Username,
			&recipient.FirstName,
			&recipient.IsBlocked,
			&recipient.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, recipient)
	}

	var totalCount int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipients`).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	return recipients, totalCount, nil
}

// SetBlocked flips the eligibility flag for a recipient
func (r *recipientRepository) SetBlocked(ctx context.Context, telegramID int64, blocked bool) error {
	query := `UPDATE recipients SET is_blocked = $2 WHERE telegram_id = $1`

	result, err := r.db.ExecContext(ctx, query, telegramID, blocked)
	if err != nil {
		return fmt.Errorf("failed to update recipient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
