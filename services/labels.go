package services

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/metrics"
)

// LabelService manages the named, colored tags of a board.
type LabelService struct {
	base
}

type AddLabelInput struct {
	Name      string `json:"name" validate:"required"`
	ColorCode string `json:"colorCode" validate:"required"`
	BoardID   string `json:"boardId" validate:"required"`
}

// ListLabels returns the labels of a board in the order they were added.
func (s *LabelService) ListLabels(ctx context.Context, boardID string) ([]database.Label, error) {
	var labels []database.Label
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetBoard(ctx, boardID); err != nil {
			return err
		}
		var err error
		labels, err = tx.ListLabelsByBoard(ctx, boardID)
		return err
	})
	return labels, err
}

func (s *LabelService) AddLabel(ctx context.Context, name, colorCode, boardID string) (string, error) {
	if err := check(AddLabelInput{Name: name, ColorCode: colorCode, BoardID: boardID}); err != nil {
		return "", err
	}

	label := &database.Label{ID: uuid.NewString(), Name: name, ColorCode: colorCode, BoardID: boardID}
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetBoard(ctx, boardID); err != nil {
			return err
		}
		return tx.InsertLabel(ctx, label)
	})
	metrics.Observe("addLabel", err)
	if err != nil {
		return "", err
	}

	s.publish(Event{Type: EventLabelCreated, BoardID: boardID, EntityID: label.ID})
	return label.ID, nil
}

// DeleteLabel removes a label and detaches it from every card on its board.
func (s *LabelService) DeleteLabel(ctx context.Context, labelID string) error {
	var boardID string
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		label, err := tx.GetLabel(ctx, labelID)
		if err != nil {
			return err
		}
		boardID = label.BoardID

		lists, err := tx.ListListsByBoard(ctx, label.BoardID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, l := range lists {
			cards, err := tx.ListCardsByList(ctx, l.ID)
			if err != nil {
				return err
			}
			for i := range cards {
				card := &cards[i]
				if !slices.Contains(card.LabelIDs, labelID) {
					continue
				}
				card.LabelIDs = slices.DeleteFunc(card.LabelIDs, func(id string) bool { return id == labelID })
				card.UpdatedAt = now
				if err := tx.UpdateCard(ctx, card); err != nil {
					return err
				}
			}
		}
		return tx.DeleteLabel(ctx, labelID)
	})
	metrics.Observe("deleteLabel", err)
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventLabelDeleted, BoardID: boardID, EntityID: labelID})
	return nil
}
