package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/metrics"
	"github.com/CrowderSoup/kanban/ordering"
)

// CardService owns the ordered cards of each list, including moves
// between lists. Every mutation appends one card activity.
type CardService struct {
	base
	activities *ActivityService
}

type CreateCardInput struct {
	Title     string `json:"title" validate:"required"`
	ListID    string `json:"listId" validate:"required"`
	Index     int    `json:"index"`
	CreatedBy string `json:"-" validate:"required"`
}

// CreateCard inserts a card at input.Index, clamped to [0, number of cards],
// shifting the cards after it.
func (s *CardService) CreateCard(ctx context.Context, input CreateCardInput) (string, error) {
	if err := check(input); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	card := &database.Card{
		ID:          uuid.NewString(),
		Title:       input.Title,
		ListID:      input.ListID,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		DependsOn:   []string{},
		LabelIDs:    []string{},
		AssigneeIDs: []string{},
	}

	var boardID string
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		list, err := tx.GetList(ctx, input.ListID)
		if err != nil {
			return err
		}
		boardID = list.BoardID

		items, err := tx.CardPositions(ctx, input.ListID)
		if err != nil {
			return err
		}
		at, patches := ordering.Insert(items, card.ID, input.Index)
		if err := tx.SetCardIndexes(ctx, patches); err != nil {
			return err
		}
		card.Index = at
		if err := tx.InsertCard(ctx, card); err != nil {
			return err
		}
		s.activities.recordIn(ctx, tx, card.ID, input.CreatedBy, ActionCreated, nil)
		return nil
	})
	metrics.Observe("createCard", err)
	if err != nil {
		return "", err
	}

	s.publish(Event{Type: EventCardCreated, BoardID: boardID, EntityID: card.ID, UserID: input.CreatedBy})
	return card.ID, nil
}

func (s *CardService) GetCard(ctx context.Context, cardID string) (*database.Card, error) {
	var card *database.Card
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		var err error
		card, err = tx.GetCard(ctx, cardID)
		return err
	})
	return card, err
}

// UpdateCard applies the fields set on patch and touches updatedAt. The
// card's position is never changed here.
func (s *CardService) UpdateCard(ctx context.Context, cardID string, patch database.CardPatch, userID string) error {
	if err := required("user id", userID); err != nil {
		return err
	}
	if patch.Title != nil && *patch.Title == "" {
		return fmt.Errorf("%w: title must not be empty", ErrValidation)
	}

	var boardID string
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		card, err := tx.GetCard(ctx, cardID)
		if err != nil {
			return err
		}
		list, err := tx.GetList(ctx, card.ListID)
		if err != nil {
			return err
		}
		boardID = list.BoardID

		applyPatch(card, patch)
		card.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateCard(ctx, card); err != nil {
			return err
		}
		s.activities.recordIn(ctx, tx, cardID, userID, ActionUpdated, map[string]any{"fields": patch.Fields()})
		return nil
	})
	metrics.Observe("updateCard", err)
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventCardUpdated, BoardID: boardID, EntityID: cardID, UserID: userID})
	return nil
}

// DeleteCard removes a card. The remaining cards of the list keep their
// indices; the next create or move on the list closes the gap.
func (s *CardService) DeleteCard(ctx context.Context, cardID, userID string) error {
	if err := required("user id", userID); err != nil {
		return err
	}

	var boardID string
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		card, err := tx.GetCard(ctx, cardID)
		if err != nil {
			return err
		}
		list, err := tx.GetList(ctx, card.ListID)
		if err != nil {
			return err
		}
		boardID = list.BoardID

		if err := tx.DeleteCard(ctx, cardID); err != nil {
			return err
		}
		s.activities.recordIn(ctx, tx, cardID, userID, ActionDeleted, map[string]any{"listId": card.ListID})
		return nil
	})
	metrics.Observe("deleteCard", err)
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventCardDeleted, BoardID: boardID, EntityID: cardID, UserID: userID})
	return nil
}

// MoveCard puts a card at newIndex of newListID. Within one list this is a
// reorder; across lists the source list is closed up and the destination
// list opened at the clamped index. Both lists end dense, and the whole move
// commits or nothing does.
func (s *CardService) MoveCard(ctx context.Context, cardID, newListID string, newIndex int, userID string) error {
	if err := required("user id", userID); err != nil {
		return err
	}
	if err := required("list id", newListID); err != nil {
		return err
	}

	var boardID string
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		card, err := tx.GetCard(ctx, cardID)
		if err != nil {
			return err
		}
		dest, err := tx.GetList(ctx, newListID)
		if err != nil {
			return err
		}
		boardID = dest.BoardID

		var toIndex int
		if card.ListID == newListID {
			toIndex, err = s.reorderWithinList(ctx, tx, card, newIndex)
		} else {
			toIndex, err = s.moveAcrossLists(ctx, tx, card, newListID, newIndex)
		}
		if err != nil {
			return err
		}

		s.activities.recordIn(ctx, tx, cardID, userID, ActionMoved, map[string]any{
			"from":      card.ListID,
			"to":        newListID,
			"fromIndex": card.Index,
			"toIndex":   toIndex,
		})
		return nil
	})
	metrics.Observe("moveCard", err)
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventCardMoved, BoardID: boardID, EntityID: cardID, UserID: userID})
	return nil
}

func (s *CardService) reorderWithinList(ctx context.Context, tx *database.Tx, card *database.Card, newIndex int) (int, error) {
	items, err := tx.CardPositions(ctx, card.ListID)
	if err != nil {
		return 0, err
	}
	patches, err := ordering.Move(items, card.ID, newIndex)
	if err != nil {
		return 0, err
	}

	toIndex := card.Index
	others := make([]ordering.Patch, 0, len(patches))
	for _, p := range patches {
		if p.ID == card.ID {
			toIndex = p.Index
			continue
		}
		others = append(others, p)
	}
	if err := tx.SetCardIndexes(ctx, others); err != nil {
		return 0, err
	}
	if toIndex != card.Index {
		if err := tx.PlaceCard(ctx, card.ID, card.ListID, toIndex, time.Now().UTC()); err != nil {
			return 0, err
		}
	}
	return toIndex, nil
}

func (s *CardService) moveAcrossLists(ctx context.Context, tx *database.Tx, card *database.Card, newListID string, newIndex int) (int, error) {
	source, err := tx.CardPositions(ctx, card.ListID)
	if err != nil {
		return 0, err
	}
	if err := tx.SetCardIndexes(ctx, ordering.Remove(source, card.ID)); err != nil {
		return 0, err
	}

	dest, err := tx.CardPositions(ctx, newListID)
	if err != nil {
		return 0, err
	}
	at, patches := ordering.Insert(dest, card.ID, newIndex)
	if err := tx.SetCardIndexes(ctx, patches); err != nil {
		return 0, err
	}
	if err := tx.PlaceCard(ctx, card.ID, newListID, at, time.Now().UTC()); err != nil {
		return 0, err
	}
	return at, nil
}

func applyPatch(card *database.Card, patch database.CardPatch) {
	if patch.Title != nil {
		card.Title = *patch.Title
	}
	if patch.Description != nil {
		card.Description = patch.Description
	}
	if patch.DueDate != nil {
		card.DueDate = patch.DueDate
	}
	if patch.DueDateCompleted != nil {
		card.DueDateCompleted = *patch.DueDateCompleted
	}
	if patch.StartDate != nil {
		card.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		card.EndDate = patch.EndDate
	}
	if patch.DependsOn != nil {
		card.DependsOn = normalizeIDs(*patch.DependsOn)
	}
	if patch.LabelIDs != nil {
		card.LabelIDs = normalizeIDs(*patch.LabelIDs)
	}
	if patch.AssigneeIDs != nil {
		card.AssigneeIDs = normalizeIDs(*patch.AssigneeIDs)
	}
}
