package database

import (
	"context"
	"database/sql"
)

const boardColumns = `id, name, visibility, background_url, workspace_id, created_by, created_at`

func (t *Tx) InsertBoard(ctx context.Context, b *Board) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO boards (`+boardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, string(b.Visibility), nullString(b.BackgroundURL), nullString(b.WorkspaceID),
		b.CreatedBy, millis(b.CreatedAt))
	return wrapDBError("insert board", err)
}

func (t *Tx) GetBoard(ctx context.Context, id string) (*Board, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = ?`, id)
	b, err := scanBoard(row)
	if err != nil {
		return nil, wrapDBError("get board "+id, err)
	}
	return b, nil
}

// ListBoardsByCreator returns boards created by userID, newest first.
func (t *Tx) ListBoardsByCreator(ctx context.Context, userID string) ([]Board, error) {
	return t.queryBoards(ctx, "list boards by creator",
		`SELECT `+boardColumns+` FROM boards WHERE created_by = ? ORDER BY created_at DESC, id`, userID)
}

// ListBoardsByWorkspace returns boards in workspaceID, newest first.
func (t *Tx) ListBoardsByWorkspace(ctx context.Context, workspaceID string) ([]Board, error) {
	return t.queryBoards(ctx, "list boards by workspace",
		`SELECT `+boardColumns+` FROM boards WHERE workspace_id = ? ORDER BY created_at DESC, id`, workspaceID)
}

func (t *Tx) UpdateBoard(ctx context.Context, b *Board) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE boards SET name = ?, visibility = ?, background_url = ? WHERE id = ?`,
		b.Name, string(b.Visibility), nullString(b.BackgroundURL), b.ID)
	if err != nil {
		return wrapDBError("update board", err)
	}
	return notFoundIfNone("update board "+b.ID, res)
}

func (t *Tx) DeleteBoard(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete board", err)
	}
	return notFoundIfNone("delete board "+id, res)
}

func (t *Tx) queryBoards(ctx context.Context, op, query string, args ...any) ([]Board, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(op, err)
	}
	defer rows.Close()

	boards := []Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, wrapDBError(op, err)
		}
		boards = append(boards, *b)
	}
	return boards, wrapDBError(op, rows.Err())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(s scanner) (*Board, error) {
	var (
		b          Board
		visibility string
		background sql.NullString
		workspace  sql.NullString
		createdAt  int64
	)
	if err := s.Scan(&b.ID, &b.Name, &visibility, &background, &workspace, &b.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	b.Visibility = Visibility(visibility)
	b.BackgroundURL = stringPtr(background)
	b.WorkspaceID = stringPtr(workspace)
	b.CreatedAt = fromMillis(createdAt)
	return &b, nil
}
