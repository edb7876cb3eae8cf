package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "kanban.db"))
	require.NoError(t, err)
	store := NewStore(db, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestInitDBRequiresPath(t *testing.T) {
	_, err := InitDB("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestInitDBIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kanban.db")
	db, err := InitDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestRunInTxCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Now()

	err := store.RunInTx(ctx, func(tx *Tx) error {
		return tx.InsertBoard(ctx, &Board{ID: "b1", Name: "Roadmap", Visibility: VisibilityPrivate, CreatedBy: "u1", CreatedAt: now})
	})
	require.NoError(t, err)

	err = store.RunInTx(ctx, func(tx *Tx) error {
		b, err := tx.GetBoard(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "Roadmap", b.Name)
		assert.Equal(t, VisibilityPrivate, b.Visibility)
		assert.Nil(t, b.WorkspaceID)
		assert.Equal(t, now.UnixMilli(), b.CreatedAt.UnixMilli())
		return nil
	})
	require.NoError(t, err)
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(tx *Tx) error {
		require.NoError(t, tx.InsertBoard(ctx, &Board{ID: "b1", Name: "x", Visibility: VisibilityPublic, CreatedBy: "u1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.RunInTx(ctx, func(tx *Tx) error {
		_, err := tx.GetBoard(ctx, "b1")
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunInTxRepanics(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.PanicsWithValue(t, "test panic", func() {
		_ = store.RunInTx(ctx, func(tx *Tx) error {
			_ = tx.InsertBoard(ctx, &Board{ID: "b1", Name: "x", Visibility: VisibilityPublic, CreatedBy: "u1"})
			panic("test panic")
		})
	})

	err := store.RunInTx(ctx, func(tx *Tx) error {
		_, err := tx.GetBoard(ctx, "b1")
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunInTxRetriesBusyThenSucceeds(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, WithBackOff(zeroBackOff))

	calls := 0
	err := store.RunInTx(ctx, func(tx *Tx) error {
		calls++
		if calls < 3 {
			return sqlite3.Error{Code: sqlite3.ErrBusy}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunInTxConflictAfterRetries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, WithBackOff(zeroBackOff), WithMaxRetries(2))

	calls := 0
	err := store.RunInTx(ctx, func(tx *Tx) error {
		calls++
		return sqlite3.Error{Code: sqlite3.ErrLocked}
	})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 3, calls)
}

func TestRunInTxDoesNotRetryOtherErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, WithBackOff(zeroBackOff))

	calls := 0
	err := store.RunInTx(ctx, func(tx *Tx) error {
		calls++
		return ErrNotFound
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestSavepointUndoesOnlyItsWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(tx *Tx) error {
		require.NoError(t, tx.InsertBoard(ctx, &Board{ID: "kept", Name: "kept", Visibility: VisibilityPublic, CreatedBy: "u1"}))
		spErr := tx.Savepoint(ctx, "activity", func() error {
			require.NoError(t, tx.InsertBoard(ctx, &Board{ID: "dropped", Name: "dropped", Visibility: VisibilityPublic, CreatedBy: "u1"}))
			return boom
		})
		assert.ErrorIs(t, spErr, boom)
		return nil
	})
	require.NoError(t, err)

	err = store.RunInTx(ctx, func(tx *Tx) error {
		_, err := tx.GetBoard(ctx, "kept")
		require.NoError(t, err)
		_, err = tx.GetBoard(ctx, "dropped")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestCardFieldsSurviveStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	desc := "ship it"

	err := store.RunInTx(ctx, func(tx *Tx) error {
		return tx.InsertCard(ctx, &Card{
			ID: "c1", Title: "Release", Description: &desc, ListID: "l1", Index: 0, CreatedBy: "u1",
			CreatedAt: due, UpdatedAt: due, DueDate: &due, DependsOn: []string{"c0"},
		})
	})
	require.NoError(t, err)

	err = store.RunInTx(ctx, func(tx *Tx) error {
		c, err := tx.GetCard(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, c.Description)
		assert.Equal(t, desc, *c.Description)
		require.NotNil(t, c.DueDate)
		assert.True(t, due.Equal(*c.DueDate))
		assert.Nil(t, c.StartDate)
		assert.Equal(t, []string{"c0"}, c.DependsOn)
		assert.Equal(t, []string{}, c.LabelIDs)
		assert.False(t, c.DueDateCompleted)
		return nil
	})
	require.NoError(t, err)
}

func TestWritesOnMissingRowsAreNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.RunInTx(ctx, func(tx *Tx) error {
		assert.ErrorIs(t, tx.RenameList(ctx, "nope", "x"), ErrNotFound)
		assert.ErrorIs(t, tx.DeleteCard(ctx, "nope"), ErrNotFound)
		assert.ErrorIs(t, tx.SetChecklistItemCompleted(ctx, "nope", true), ErrNotFound)
		assert.ErrorIs(t, tx.DeleteLabel(ctx, "nope"), ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}
