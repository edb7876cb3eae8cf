package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/kanban/database"
)

func TestCreateBoardSeedsDefaultLists(t *testing.T) {
	env := newTestEnv(t)
	snap := env.seedBoard(t)

	require.Len(t, snap.Lists, 3)
	for i, l := range snap.Lists {
		assert.Equal(t, DefaultLists[i], l.Name)
		assert.Equal(t, i, l.Index)
		assert.Empty(t, l.Cards)
	}
	assert.Equal(t, "u1", snap.CreatedBy)
	assert.Empty(t, snap.Labels)
	assert.Equal(t, []string{EventBoardCreated}, env.events.types())
}

func TestCreateBoardValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bad := "not a url"

	tests := []struct {
		name  string
		input CreateBoardInput
	}{
		{"missing name", CreateBoardInput{Visibility: database.VisibilityPublic, UserID: "u1"}},
		{"unknown visibility", CreateBoardInput{Name: "x", Visibility: "secret", UserID: "u1"}},
		{"missing user", CreateBoardInput{Name: "x", Visibility: database.VisibilityPublic}},
		{"bad background", CreateBoardInput{Name: "x", Visibility: database.VisibilityPublic, UserID: "u1", BackgroundURL: &bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Boards.CreateBoard(ctx, tt.input)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestGetBoardMissing(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Boards.GetBoard(context.Background(), "nope")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestGetBoardIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	snap := env.seedBoard(t)
	todo := snap.Lists[0].ID
	env.addCard(t, todo, "A", 0)
	env.addCard(t, todo, "B", 1)
	_, err := env.Labels.AddLabel(ctx, "bug", "#ff0000", snap.ID)
	require.NoError(t, err)

	first, err := env.Boards.GetBoard(ctx, snap.ID)
	require.NoError(t, err)
	second, err := env.Boards.GetBoard(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"A", "B"}, cardTitles(first.Lists[0].Cards))
}

func TestListBoardsMergesWorkspaceBoards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := "ws1"

	own, err := env.Boards.CreateBoard(ctx, CreateBoardInput{Name: "mine", Visibility: database.VisibilityPrivate, UserID: "u1"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	shared, err := env.Boards.CreateBoard(ctx, CreateBoardInput{Name: "shared", Visibility: database.VisibilityWorkspace, WorkspaceID: &ws, UserID: "u2"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	both, err := env.Boards.CreateBoard(ctx, CreateBoardInput{Name: "both", Visibility: database.VisibilityWorkspace, WorkspaceID: &ws, UserID: "u1"})
	require.NoError(t, err)
	_, err = env.Boards.CreateBoard(ctx, CreateBoardInput{Name: "other", Visibility: database.VisibilityPrivate, UserID: "u3"})
	require.NoError(t, err)

	boards, err := env.Boards.ListBoards(ctx, "u1", ws)
	require.NoError(t, err)
	ids := make([]string, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{both, shared, own}, ids)

	boards, err = env.Boards.ListBoards(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, boards, 2)

	boards, err = env.Boards.ListBoards(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestUpdateBoard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	snap := env.seedBoard(t)

	name := "Renamed"
	visibility := database.VisibilityPublic
	require.NoError(t, env.Boards.UpdateBoard(ctx, snap.ID, UpdateBoardInput{Name: &name, Visibility: &visibility}, "u1"))

	got, err := env.Boards.GetBoard(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, database.VisibilityPublic, got.Visibility)

	empty := ""
	err = env.Boards.UpdateBoard(ctx, snap.ID, UpdateBoardInput{Name: &empty}, "u1")
	require.ErrorIs(t, err, ErrValidation)

	err = env.Boards.UpdateBoard(ctx, "nope", UpdateBoardInput{Name: &name}, "u1")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestDeleteBoardCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	snap := env.seedBoard(t)
	a := env.addCard(t, snap.Lists[0].ID, "A", 0)
	env.addCard(t, snap.Lists[2].ID, "B", 0)
	_, err := env.Labels.AddLabel(ctx, "bug", "#ff0000", snap.ID)
	require.NoError(t, err)

	require.NoError(t, env.Boards.DeleteBoard(ctx, snap.ID))

	_, err = env.Boards.GetBoard(ctx, snap.ID)
	require.ErrorIs(t, err, database.ErrNotFound)
	_, err = env.Cards.GetCard(ctx, a)
	require.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, env.store.RunInTx(ctx, func(tx *database.Tx) error {
		lists, err := tx.ListListsByBoard(ctx, snap.ID)
		require.NoError(t, err)
		assert.Empty(t, lists)
		labels, err := tx.ListLabelsByBoard(ctx, snap.ID)
		require.NoError(t, err)
		assert.Empty(t, labels)
		for _, l := range snap.Lists {
			cards, err := tx.ListCardsByList(ctx, l.ID)
			require.NoError(t, err)
			assert.Empty(t, cards)
		}
		return nil
	}))

	// The audit trail outlives the card.
	activities, err := env.Activities.ListActivities(ctx, a)
	require.NoError(t, err)
	assert.NotEmpty(t, activities)

	err = env.Boards.DeleteBoard(ctx, snap.ID)
	require.ErrorIs(t, err, database.ErrNotFound)
}
