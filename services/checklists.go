package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/metrics"
)

// ChecklistService manages a card's checklists and their items. New
// entries are appended at order = current count inside one transaction, so
// concurrent appends never share an order. Deletes leave gaps.
type ChecklistService struct {
	base
}

// ListChecklists returns the checklists of a card by order, each with its
// items by order.
func (s *ChecklistService) ListChecklists(ctx context.Context, cardID string) ([]database.Checklist, error) {
	var checklists []database.Checklist
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		var err error
		checklists, err = tx.ListChecklistsByCard(ctx, cardID)
		if err != nil {
			return err
		}
		for i := range checklists {
			if checklists[i].Items, err = tx.ListChecklistItems(ctx, checklists[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	return checklists, err
}

func (s *ChecklistService) AddChecklist(ctx context.Context, name, cardID string) (string, error) {
	if err := required("name", name); err != nil {
		return "", err
	}

	checklist := &database.Checklist{ID: uuid.NewString(), Name: name, CardID: cardID}
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetCard(ctx, cardID); err != nil {
			return err
		}
		n, err := tx.CountChecklists(ctx, cardID)
		if err != nil {
			return err
		}
		checklist.Order = n
		return tx.InsertChecklist(ctx, checklist)
	})
	metrics.Observe("addChecklist", err)
	if err != nil {
		return "", err
	}
	return checklist.ID, nil
}

// DeleteChecklist removes a checklist and its items.
func (s *ChecklistService) DeleteChecklist(ctx context.Context, checklistID string) error {
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetChecklist(ctx, checklistID); err != nil {
			return err
		}
		if err := tx.DeleteChecklistItemsByChecklist(ctx, checklistID); err != nil {
			return err
		}
		return tx.DeleteChecklist(ctx, checklistID)
	})
	metrics.Observe("deleteChecklist", err)
	return err
}

func (s *ChecklistService) AddChecklistItem(ctx context.Context, content, checklistID string) (string, error) {
	if err := required("content", content); err != nil {
		return "", err
	}

	item := &database.ChecklistItem{ID: uuid.NewString(), Content: content, ChecklistID: checklistID}
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetChecklist(ctx, checklistID); err != nil {
			return err
		}
		n, err := tx.CountChecklistItems(ctx, checklistID)
		if err != nil {
			return err
		}
		item.Order = n
		return tx.InsertChecklistItem(ctx, item)
	})
	metrics.Observe("addChecklistItem", err)
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

func (s *ChecklistService) ToggleChecklistItem(ctx context.Context, itemID string, completed bool) error {
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		return tx.SetChecklistItemCompleted(ctx, itemID, completed)
	})
	metrics.Observe("toggleChecklistItem", err)
	return err
}

func (s *ChecklistService) DeleteChecklistItem(ctx context.Context, itemID string) error {
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		return tx.DeleteChecklistItem(ctx, itemID)
	})
	metrics.Observe("deleteChecklistItem", err)
	return err
}
