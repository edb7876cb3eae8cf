package database

import "context"

func (t *Tx) InsertChecklist(ctx context.Context, c *Checklist) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO checklists (id, name, card_id, ord) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.CardID, c.Order)
	return wrapDBError("insert checklist", err)
}

func (t *Tx) GetChecklist(ctx context.Context, id string) (*Checklist, error) {
	var c Checklist
	err := t.tx.QueryRowContext(ctx, `SELECT id, name, card_id, ord FROM checklists WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.CardID, &c.Order)
	if err != nil {
		return nil, wrapDBError("get checklist "+id, err)
	}
	return &c, nil
}

func (t *Tx) CountChecklists(ctx context.Context, cardID string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM checklists WHERE card_id = ?`, cardID).Scan(&n)
	return n, wrapDBError("count checklists", err)
}

// ListChecklistsByCard returns a card's checklists by order, without items.
func (t *Tx) ListChecklistsByCard(ctx context.Context, cardID string) ([]Checklist, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, name, card_id, ord FROM checklists WHERE card_id = ? ORDER BY ord, id`, cardID)
	if err != nil {
		return nil, wrapDBError("list checklists", err)
	}
	defer rows.Close()

	checklists := []Checklist{}
	for rows.Next() {
		var c Checklist
		if err := rows.Scan(&c.ID, &c.Name, &c.CardID, &c.Order); err != nil {
			return nil, wrapDBError("scan checklist", err)
		}
		checklists = append(checklists, c)
	}
	return checklists, wrapDBError("list checklists", rows.Err())
}

func (t *Tx) DeleteChecklist(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM checklists WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete checklist", err)
	}
	return notFoundIfNone("delete checklist "+id, res)
}

func (t *Tx) InsertChecklistItem(ctx context.Context, it *ChecklistItem) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO checklist_items (id, content, checklist_id, completed, ord) VALUES (?, ?, ?, ?, ?)`,
		it.ID, it.Content, it.ChecklistID, it.Completed, it.Order)
	return wrapDBError("insert checklist item", err)
}

func (t *Tx) CountChecklistItems(ctx context.Context, checklistID string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM checklist_items WHERE checklist_id = ?`, checklistID).Scan(&n)
	return n, wrapDBError("count checklist items", err)
}

func (t *Tx) ListChecklistItems(ctx context.Context, checklistID string) ([]ChecklistItem, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, content, checklist_id, completed, ord
		FROM checklist_items WHERE checklist_id = ? ORDER BY ord, id`, checklistID)
	if err != nil {
		return nil, wrapDBError("list checklist items", err)
	}
	defer rows.Close()

	items := []ChecklistItem{}
	for rows.Next() {
		var it ChecklistItem
		if err := rows.Scan(&it.ID, &it.Content, &it.ChecklistID, &it.Completed, &it.Order); err != nil {
			return nil, wrapDBError("scan checklist item", err)
		}
		items = append(items, it)
	}
	return items, wrapDBError("list checklist items", rows.Err())
}

func (t *Tx) SetChecklistItemCompleted(ctx context.Context, id string, completed bool) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE checklist_items SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return wrapDBError("toggle checklist item", err)
	}
	return notFoundIfNone("toggle checklist item "+id, res)
}

func (t *Tx) DeleteChecklistItem(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM checklist_items WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete checklist item", err)
	}
	return notFoundIfNone("delete checklist item "+id, res)
}

func (t *Tx) DeleteChecklistItemsByChecklist(ctx context.Context, checklistID string) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM checklist_items WHERE checklist_id = ?`, checklistID)
	return wrapDBError("delete checklist items", err)
}
