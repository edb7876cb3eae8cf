package database

import (
	"context"

	"github.com/CrowderSoup/kanban/ordering"
)

const listColumns = `id, name, board_id, idx, created_at`

func (t *Tx) InsertList(ctx context.Context, l *List) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO lists (`+listColumns+`) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.BoardID, l.Index, millis(l.CreatedAt))
	return wrapDBError("insert list", err)
}

func (t *Tx) GetList(ctx context.Context, id string) (*List, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists WHERE id = ?`, id)
	var (
		l         List
		createdAt int64
	)
	if err := row.Scan(&l.ID, &l.Name, &l.BoardID, &l.Index, &createdAt); err != nil {
		return nil, wrapDBError("get list "+id, err)
	}
	l.CreatedAt = fromMillis(createdAt)
	return &l, nil
}

// ListListsByBoard returns the lists of a board ordered by index.
func (t *Tx) ListListsByBoard(ctx context.Context, boardID string) ([]List, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE board_id = ? ORDER BY idx, id`, boardID)
	if err != nil {
		return nil, wrapDBError("list lists", err)
	}
	defer rows.Close()

	lists := []List{}
	for rows.Next() {
		var (
			l         List
			createdAt int64
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.BoardID, &l.Index, &createdAt); err != nil {
			return nil, wrapDBError("scan list", err)
		}
		l.CreatedAt = fromMillis(createdAt)
		lists = append(lists, l)
	}
	return lists, wrapDBError("list lists", rows.Err())
}

// ListPositions returns the ordering scope of a board.
func (t *Tx) ListPositions(ctx context.Context, boardID string) ([]ordering.Item, error) {
	return t.positions(ctx, "list positions", `SELECT id, idx FROM lists WHERE board_id = ?`, boardID)
}

func (t *Tx) SetListIndexes(ctx context.Context, patches []ordering.Patch) error {
	for _, p := range patches {
		if _, err := t.tx.ExecContext(ctx, `UPDATE lists SET idx = ? WHERE id = ?`, p.Index, p.ID); err != nil {
			return wrapDBError("set list index", err)
		}
	}
	return nil
}

func (t *Tx) RenameList(ctx context.Context, id, name string) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE lists SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return wrapDBError("rename list", err)
	}
	return notFoundIfNone("rename list "+id, res)
}

func (t *Tx) DeleteList(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete list", err)
	}
	return notFoundIfNone("delete list "+id, res)
}

func (t *Tx) positions(ctx context.Context, op, query string, args ...any) ([]ordering.Item, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(op, err)
	}
	defer rows.Close()

	items := []ordering.Item{}
	for rows.Next() {
		var it ordering.Item
		if err := rows.Scan(&it.ID, &it.Index); err != nil {
			return nil, wrapDBError(op, err)
		}
		items = append(items, it)
	}
	return items, wrapDBError(op, rows.Err())
}
