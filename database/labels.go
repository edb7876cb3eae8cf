package database

import "context"

func (t *Tx) InsertLabel(ctx context.Context, l *Label) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO labels (id, name, color_code, board_id) VALUES (?, ?, ?, ?)`,
		l.ID, l.Name, l.ColorCode, l.BoardID)
	return wrapDBError("insert label", err)
}

func (t *Tx) GetLabel(ctx context.Context, id string) (*Label, error) {
	var l Label
	err := t.tx.QueryRowContext(ctx, `SELECT id, name, color_code, board_id FROM labels WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &l.ColorCode, &l.BoardID)
	if err != nil {
		return nil, wrapDBError("get label "+id, err)
	}
	return &l, nil
}

// ListLabelsByBoard returns a board's labels in the order they were added.
func (t *Tx) ListLabelsByBoard(ctx context.Context, boardID string) ([]Label, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, name, color_code, board_id FROM labels WHERE board_id = ? ORDER BY seq`, boardID)
	if err != nil {
		return nil, wrapDBError("list labels", err)
	}
	defer rows.Close()

	labels := []Label{}
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ID, &l.Name, &l.ColorCode, &l.BoardID); err != nil {
			return nil, wrapDBError("scan label", err)
		}
		labels = append(labels, l)
	}
	return labels, wrapDBError("list labels", rows.Err())
}

func (t *Tx) DeleteLabel(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete label", err)
	}
	return notFoundIfNone("delete label "+id, res)
}

func (t *Tx) DeleteLabelsByBoard(ctx context.Context, boardID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM labels WHERE board_id = ?`, boardID)
	if err != nil {
		return 0, wrapDBError("delete labels of board", err)
	}
	n, err := res.RowsAffected()
	return n, wrapDBError("delete labels of board", err)
}
