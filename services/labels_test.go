package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/kanban/database"
)

func TestAddAndListLabels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	snap := env.seedBoard(t)

	bug, err := env.Labels.AddLabel(ctx, "bug", "#ff0000", snap.ID)
	require.NoError(t, err)
	_, err = env.Labels.AddLabel(ctx, "feature", "#00ff00", snap.ID)
	require.NoError(t, err)

	labels, err := env.Labels.ListLabels(ctx, snap.ID)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, bug, labels[0].ID)
	assert.Equal(t, "feature", labels[1].Name)
	assert.Equal(t, "#00ff00", labels[1].ColorCode)

	_, err = env.Labels.AddLabel(ctx, "", "#000", snap.ID)
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.Labels.AddLabel(ctx, "x", "#000", "nope")
	require.ErrorIs(t, err, database.ErrNotFound)
	_, err = env.Labels.ListLabels(ctx, "nope")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestDeleteLabelDetachesFromCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	snap := env.seedBoard(t)

	bug, err := env.Labels.AddLabel(ctx, "bug", "#ff0000", snap.ID)
	require.NoError(t, err)
	ui, err := env.Labels.AddLabel(ctx, "ui", "#0000ff", snap.ID)
	require.NoError(t, err)

	a := env.addCard(t, snap.Lists[0].ID, "A", 0)
	b := env.addCard(t, snap.Lists[1].ID, "B", 0)
	both := []string{bug, ui}
	only := []string{ui}
	require.NoError(t, env.Cards.UpdateCard(ctx, a, database.CardPatch{LabelIDs: &both}, "u1"))
	require.NoError(t, env.Cards.UpdateCard(ctx, b, database.CardPatch{LabelIDs: &only}, "u1"))

	require.NoError(t, env.Labels.DeleteLabel(ctx, bug))

	labels, err := env.Labels.ListLabels(ctx, snap.ID)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, ui, labels[0].ID)

	card, err := env.Cards.GetCard(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{ui}, card.LabelIDs)
	card, err = env.Cards.GetCard(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{ui}, card.LabelIDs)

	require.ErrorIs(t, env.Labels.DeleteLabel(ctx, bug), database.ErrNotFound)
	assert.Contains(t, env.events.types(), EventLabelDeleted)
}
