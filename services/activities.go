package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/metrics"
)

// Activity actions recorded by card mutations.
const (
	ActionCreated = "created the card"
	ActionUpdated = "updated the card"
	ActionMoved   = "moved the card"
	ActionDeleted = "deleted the card"
)

// ActivityService is the append-only audit trail of card mutations.
type ActivityService struct {
	base
}

// RecordActivity appends one record for cardID in its own transaction.
func (s *ActivityService) RecordActivity(ctx context.Context, cardID, userID, action string, details map[string]any) (string, error) {
	if err := required("card id", cardID); err != nil {
		return "", err
	}
	if err := required("user id", userID); err != nil {
		return "", err
	}
	if err := required("action", action); err != nil {
		return "", err
	}

	a := newActivity(cardID, userID, action, details)
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		return tx.InsertActivity(ctx, a)
	})
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// ListActivities returns the activities of cardID, newest first. Records of
// deleted cards are still returned.
func (s *ActivityService) ListActivities(ctx context.Context, cardID string) ([]database.Activity, error) {
	var activities []database.Activity
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		var err error
		activities, err = tx.ListActivities(ctx, cardID)
		return err
	})
	return activities, err
}

// recordIn appends an activity as part of a card mutation. A failed append
// is undone on its own and logged; the mutation still commits.
func (s *ActivityService) recordIn(ctx context.Context, tx *database.Tx, cardID, userID, action string, details map[string]any) {
	a := newActivity(cardID, userID, action, details)
	err := tx.Savepoint(ctx, "activity", func() error {
		return tx.InsertActivity(ctx, a)
	})
	if err != nil {
		metrics.ActivityAppendFailures.Inc()
		s.logger.Warn("card activity not recorded", "card_id", cardID, "action", action, "error", err)
	}
}

func newActivity(cardID, userID, action string, details map[string]any) *database.Activity {
	return &database.Activity{
		ID:        uuid.NewString(),
		CardID:    cardID,
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
}
