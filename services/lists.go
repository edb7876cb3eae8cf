package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/metrics"
	"github.com/CrowderSoup/kanban/ordering"
)

// ListService owns the ordered lists of a board.
type ListService struct {
	base
}

// CreateList inserts a list at index, clamped to [0, number of lists].
// Appending touches no other list; inserting in front shifts the lists
// after it in the same transaction.
func (s *ListService) CreateList(ctx context.Context, name, boardID string, index int) (string, error) {
	if err := required("name", name); err != nil {
		return "", err
	}
	if err := required("board id", boardID); err != nil {
		return "", err
	}

	list := &database.List{ID: uuid.NewString(), Name: name, BoardID: boardID, CreatedAt: time.Now().UTC()}
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetBoard(ctx, boardID); err != nil {
			return err
		}
		items, err := tx.ListPositions(ctx, boardID)
		if err != nil {
			return err
		}
		at, patches := ordering.Insert(items, list.ID, index)
		if err := tx.SetListIndexes(ctx, patches); err != nil {
			return err
		}
		list.Index = at
		return tx.InsertList(ctx, list)
	})
	metrics.Observe("createList", err)
	if err != nil {
		return "", err
	}

	s.publish(Event{Type: EventListCreated, BoardID: boardID, EntityID: list.ID})
	return list.ID, nil
}

// ReorderList moves a list to newIndex on its board and renumbers every
// list whose position changed.
func (s *ListService) ReorderList(ctx context.Context, listID string, newIndex int) error {
	var boardID string
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		list, err := tx.GetList(ctx, listID)
		if err != nil {
			return err
		}
		boardID = list.BoardID

		items, err := tx.ListPositions(ctx, list.BoardID)
		if err != nil {
			return err
		}
		patches, err := ordering.Move(items, listID, newIndex)
		if err != nil {
			return err
		}
		return tx.SetListIndexes(ctx, patches)
	})
	metrics.Observe("reorderList", err)
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventListReordered, BoardID: boardID, EntityID: listID})
	return nil
}

// UpdateList renames a list in place.
func (s *ListService) UpdateList(ctx context.Context, listID, name string) error {
	if err := required("name", name); err != nil {
		return err
	}

	var boardID string
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		list, err := tx.GetList(ctx, listID)
		if err != nil {
			return err
		}
		boardID = list.BoardID
		return tx.RenameList(ctx, listID, name)
	})
	metrics.Observe("updateList", err)
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventListUpdated, BoardID: boardID, EntityID: listID})
	return nil
}

// DeleteList removes a list and its cards, then closes the gap it leaves
// among the board's lists.
func (s *ListService) DeleteList(ctx context.Context, listID string) error {
	var boardID string
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		list, err := tx.GetList(ctx, listID)
		if err != nil {
			return err
		}
		boardID = list.BoardID
		items, err := tx.ListPositions(ctx, list.BoardID)
		if err != nil {
			return err
		}
		if _, err := tx.DeleteCardsByList(ctx, listID); err != nil {
			return err
		}
		if err := tx.DeleteList(ctx, listID); err != nil {
			return err
		}
		return tx.SetListIndexes(ctx, ordering.Remove(items, listID))
	})
	metrics.Observe("deleteList", err)
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventListDeleted, BoardID: boardID, EntityID: listID})
	return nil
}
