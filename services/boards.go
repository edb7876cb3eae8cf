package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/metrics"
)

// DefaultLists are seeded, in order, on every new board.
var DefaultLists = []string{"To do", "In progress", "Done"}

// BoardService is the top-level aggregate: creation with seeded lists,
// snapshot reads and cascading deletes.
type BoardService struct {
	base
}

type CreateBoardInput struct {
	Name          string              `json:"name" validate:"required"`
	Visibility    database.Visibility `json:"visibility" validate:"required,oneof=private workspace public"`
	BackgroundURL *string             `json:"backgroundUrl,omitempty" validate:"omitempty,url"`
	WorkspaceID   *string             `json:"workspaceId,omitempty" validate:"omitempty,min=1"`
	UserID        string              `json:"-" validate:"required"`
}

type UpdateBoardInput struct {
	Name          *string              `json:"name,omitempty" validate:"omitempty,min=1"`
	Visibility    *database.Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=private workspace public"`
	BackgroundURL *string              `json:"backgroundUrl,omitempty" validate:"omitempty,url"`
}

// Snapshot is a whole board as one consistent read.
type Snapshot struct {
	database.Board
	Lists  []ListSnapshot   `json:"lists"`
	Labels []database.Label `json:"labels"`
}

type ListSnapshot struct {
	database.List
	Cards []database.Card `json:"cards"`
}

// CreateBoard stores a board and seeds DefaultLists at indices 0..2.
func (s *BoardService) CreateBoard(ctx context.Context, input CreateBoardInput) (string, error) {
	if err := check(input); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	board := &database.Board{
		ID:            uuid.NewString(),
		Name:          input.Name,
		Visibility:    input.Visibility,
		BackgroundURL: input.BackgroundURL,
		WorkspaceID:   input.WorkspaceID,
		CreatedBy:     input.UserID,
		CreatedAt:     now,
	}

	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		if err := tx.InsertBoard(ctx, board); err != nil {
			return err
		}
		for i, name := range DefaultLists {
			list := &database.List{ID: uuid.NewString(), Name: name, BoardID: board.ID, Index: i, CreatedAt: now}
			if err := tx.InsertList(ctx, list); err != nil {
				return err
			}
		}
		return nil
	})
	metrics.Observe("createBoard", err)
	if err != nil {
		return "", fmt.Errorf("failed to create board: %w", err)
	}

	s.logger.Info("board created", "board_id", board.ID, "user_id", input.UserID)
	s.publish(Event{Type: EventBoardCreated, BoardID: board.ID, EntityID: board.ID, UserID: input.UserID})
	return board.ID, nil
}

// GetBoard assembles the board, its lists with their cards, and its labels
// from a single transaction, so no half-applied move is ever visible.
func (s *BoardService) GetBoard(ctx context.Context, boardID string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		board, err := tx.GetBoard(ctx, boardID)
		if err != nil {
			return err
		}
		lists, err := tx.ListListsByBoard(ctx, boardID)
		if err != nil {
			return err
		}
		labels, err := tx.ListLabelsByBoard(ctx, boardID)
		if err != nil {
			return err
		}

		snap = &Snapshot{Board: *board, Lists: make([]ListSnapshot, 0, len(lists)), Labels: labels}
		for _, l := range lists {
			cards, err := tx.ListCardsByList(ctx, l.ID)
			if err != nil {
				return err
			}
			snap.Lists = append(snap.Lists, ListSnapshot{List: l, Cards: cards})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListBoards returns the boards created by userID merged with the boards of
// workspaceID (when given), newest first, without duplicates.
func (s *BoardService) ListBoards(ctx context.Context, userID, workspaceID string) ([]database.Board, error) {
	if userID == "" && workspaceID == "" {
		return []database.Board{}, nil
	}

	var boards []database.Board
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		var err error
		if userID != "" {
			if boards, err = tx.ListBoardsByCreator(ctx, userID); err != nil {
				return err
			}
		}
		if workspaceID == "" {
			return nil
		}
		workspaceBoards, err := tx.ListBoardsByWorkspace(ctx, workspaceID)
		if err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(boards))
		for _, b := range boards {
			seen[b.ID] = struct{}{}
		}
		for _, b := range workspaceBoards {
			if _, ok := seen[b.ID]; !ok {
				boards = append(boards, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []database.Board{}
	}

	sort.SliceStable(boards, func(i, j int) bool {
		return boards[i].CreatedAt.After(boards[j].CreatedAt)
	})
	return boards, nil
}

// UpdateBoard renames a board or changes its visibility or background.
func (s *BoardService) UpdateBoard(ctx context.Context, boardID string, input UpdateBoardInput, userID string) error {
	if err := check(input); err != nil {
		return err
	}

	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		board, err := tx.GetBoard(ctx, boardID)
		if err != nil {
			return err
		}
		if input.Name != nil {
			board.Name = *input.Name
		}
		if input.Visibility != nil {
			board.Visibility = *input.Visibility
		}
		if input.BackgroundURL != nil {
			board.BackgroundURL = input.BackgroundURL
		}
		return tx.UpdateBoard(ctx, board)
	})
	metrics.Observe("updateBoard", err)
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventBoardUpdated, BoardID: boardID, EntityID: boardID, UserID: userID})
	return nil
}

// DeleteBoard removes a board with all of its lists, their cards, and its
// labels. Checklists and activities of those cards are left behind.
func (s *BoardService) DeleteBoard(ctx context.Context, boardID string) error {
	var cards, labels int64
	err := s.store.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetBoard(ctx, boardID); err != nil {
			return err
		}
		lists, err := tx.ListListsByBoard(ctx, boardID)
		if err != nil {
			return err
		}
		for _, l := range lists {
			n, err := tx.DeleteCardsByList(ctx, l.ID)
			if err != nil {
				return err
			}
			cards += n
			if err := tx.DeleteList(ctx, l.ID); err != nil {
				return err
			}
		}
		if labels, err = tx.DeleteLabelsByBoard(ctx, boardID); err != nil {
			return err
		}
		return tx.DeleteBoard(ctx, boardID)
	})
	metrics.Observe("deleteBoard", err)
	if err != nil {
		return err
	}

	s.logger.Info("board deleted", "board_id", boardID, "cards", cards, "labels", labels)
	s.publish(Event{Type: EventBoardDeleted, BoardID: boardID, EntityID: boardID})
	return nil
}
