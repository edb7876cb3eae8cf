package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/kanban/database"
)

func TestChecklists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	snap := env.seedBoard(t)
	card := env.addCard(t, snap.Lists[0].ID, "A", 0)

	release, err := env.Checklists.AddChecklist(ctx, "Release", card)
	require.NoError(t, err)
	qa, err := env.Checklists.AddChecklist(ctx, "QA", card)
	require.NoError(t, err)

	tag, err := env.Checklists.AddChecklistItem(ctx, "tag build", release)
	require.NoError(t, err)
	_, err = env.Checklists.AddChecklistItem(ctx, "write notes", release)
	require.NoError(t, err)
	require.NoError(t, env.Checklists.ToggleChecklistItem(ctx, tag, true))

	checklists, err := env.Checklists.ListChecklists(ctx, card)
	require.NoError(t, err)
	require.Len(t, checklists, 2)
	assert.Equal(t, "Release", checklists[0].Name)
	assert.Equal(t, 0, checklists[0].Order)
	assert.Equal(t, qa, checklists[1].ID)
	assert.Equal(t, 1, checklists[1].Order)

	items := checklists[0].Items
	require.Len(t, items, 2)
	assert.Equal(t, "tag build", items[0].Content)
	assert.True(t, items[0].Completed)
	assert.Equal(t, 1, items[1].Order)
	assert.False(t, items[1].Completed)
	assert.Empty(t, checklists[1].Items)

	require.NoError(t, env.Checklists.ToggleChecklistItem(ctx, tag, false))
	require.NoError(t, env.Checklists.DeleteChecklistItem(ctx, tag))
	require.NoError(t, env.Checklists.DeleteChecklist(ctx, qa))

	checklists, err = env.Checklists.ListChecklists(ctx, card)
	require.NoError(t, err)
	require.Len(t, checklists, 1)
	require.Len(t, checklists[0].Items, 1)
	assert.Equal(t, "write notes", checklists[0].Items[0].Content)
}

func TestChecklistErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Checklists.AddChecklist(ctx, "", "c1")
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.Checklists.AddChecklist(ctx, "x", "nope")
	require.ErrorIs(t, err, database.ErrNotFound)
	_, err = env.Checklists.AddChecklistItem(ctx, "", "cl1")
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.Checklists.AddChecklistItem(ctx, "x", "nope")
	require.ErrorIs(t, err, database.ErrNotFound)
	require.ErrorIs(t, env.Checklists.ToggleChecklistItem(ctx, "nope", true), database.ErrNotFound)
	require.ErrorIs(t, env.Checklists.DeleteChecklistItem(ctx, "nope"), database.ErrNotFound)
	require.ErrorIs(t, env.Checklists.DeleteChecklist(ctx, "nope"), database.ErrNotFound)

	checklists, err := env.Checklists.ListChecklists(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, checklists)
}
