package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// InsertActivity appends one audit record. Activities are never updated.
func (t *Tx) InsertActivity(ctx context.Context, a *Activity) error {
	var details sql.NullString
	if a.Details != nil {
		b, err := json.Marshal(a.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal activity details: %w", err)
		}
		details = sql.NullString{String: string(b), Valid: true}
	}
	_, err := t.tx.ExecContext(ctx, `INSERT INTO card_activities (id, card_id, user_id, action, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.CardID, a.UserID, a.Action, details, millis(a.CreatedAt))
	return wrapDBError("insert activity", err)
}

// ListActivities returns a card's activities newest first. Records written
// in the same millisecond keep their append order, newest first.
func (t *Tx) ListActivities(ctx context.Context, cardID string) ([]Activity, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, card_id, user_id, action, details, created_at
		FROM card_activities WHERE card_id = ? ORDER BY created_at DESC, seq DESC`, cardID)
	if err != nil {
		return nil, wrapDBError("list activities", err)
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		var (
			a         Activity
			details   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.CardID, &a.UserID, &a.Action, &details, &createdAt); err != nil {
			return nil, wrapDBError("scan activity", err)
		}
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &a.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal activity details: %w", err)
			}
		}
		a.CreatedAt = fromMillis(createdAt)
		activities = append(activities, a)
	}
	return activities, wrapDBError("list activities", rows.Err())
}

// CountActivities counts every activity in the log. Used to verify that a
// failed operation appended nothing.
func (t *Tx) CountActivities(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM card_activities`).Scan(&n)
	return n, wrapDBError("count activities", err)
}
