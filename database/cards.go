package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/CrowderSoup/kanban/ordering"
)

const cardColumns = `id, title, description, list_id, idx, created_by, created_at, updated_at,
	due_date, due_date_completed, start_date, end_date, depends_on, label_ids, assignee_ids`

func (t *Tx) InsertCard(ctx context.Context, c *Card) error {
	dependsOn, err := encodeIDs(c.DependsOn)
	if err != nil {
		return err
	}
	labelIDs, err := encodeIDs(c.LabelIDs)
	if err != nil {
		return err
	}
	assigneeIDs, err := encodeIDs(c.AssigneeIDs)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, nullString(c.Description), c.ListID, c.Index, c.CreatedBy,
		millis(c.CreatedAt), millis(c.UpdatedAt),
		nullMillis(c.DueDate), c.DueDateCompleted, nullMillis(c.StartDate), nullMillis(c.EndDate),
		dependsOn, labelIDs, assigneeIDs)
	return wrapDBError("insert card", err)
}

func (t *Tx) GetCard(ctx context.Context, id string) (*Card, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err != nil {
		return nil, wrapDBError("get card "+id, err)
	}
	return c, nil
}

// ListCardsByList returns the cards of a list ordered by index.
func (t *Tx) ListCardsByList(ctx context.Context, listID string) ([]Card, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE list_id = ? ORDER BY idx, id`, listID)
	if err != nil {
		return nil, wrapDBError("list cards", err)
	}
	defer rows.Close()

	cards := []Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, wrapDBError("scan card", err)
		}
		cards = append(cards, *c)
	}
	return cards, wrapDBError("list cards", rows.Err())
}

// CardPositions returns the ordering scope of a list.
func (t *Tx) CardPositions(ctx context.Context, listID string) ([]ordering.Item, error) {
	return t.positions(ctx, "card positions", `SELECT id, idx FROM cards WHERE list_id = ?`, listID)
}

func (t *Tx) SetCardIndexes(ctx context.Context, patches []ordering.Patch) error {
	for _, p := range patches {
		if _, err := t.tx.ExecContext(ctx, `UPDATE cards SET idx = ? WHERE id = ?`, p.Index, p.ID); err != nil {
			return wrapDBError("set card index", err)
		}
	}
	return nil
}

// PlaceCard puts a card in listID at index and touches updated_at.
func (t *Tx) PlaceCard(ctx context.Context, id, listID string, index int, at time.Time) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE cards SET list_id = ?, idx = ?, updated_at = ? WHERE id = ?`,
		listID, index, millis(at), id)
	if err != nil {
		return wrapDBError("place card", err)
	}
	return notFoundIfNone("place card "+id, res)
}

// UpdateCard writes every mutable field of c. Position fields are left alone.
func (t *Tx) UpdateCard(ctx context.Context, c *Card) error {
	dependsOn, err := encodeIDs(c.DependsOn)
	if err != nil {
		return err
	}
	labelIDs, err := encodeIDs(c.LabelIDs)
	if err != nil {
		return err
	}
	assigneeIDs, err := encodeIDs(c.AssigneeIDs)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `UPDATE cards SET title = ?, description = ?, updated_at = ?,
		due_date = ?, due_date_completed = ?, start_date = ?, end_date = ?,
		depends_on = ?, label_ids = ?, assignee_ids = ? WHERE id = ?`,
		c.Title, nullString(c.Description), millis(c.UpdatedAt),
		nullMillis(c.DueDate), c.DueDateCompleted, nullMillis(c.StartDate), nullMillis(c.EndDate),
		dependsOn, labelIDs, assigneeIDs, c.ID)
	if err != nil {
		return wrapDBError("update card", err)
	}
	return notFoundIfNone("update card "+c.ID, res)
}

func (t *Tx) DeleteCard(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete card", err)
	}
	return notFoundIfNone("delete card "+id, res)
}

// DeleteCardsByList removes every card of a list and reports how many.
func (t *Tx) DeleteCardsByList(ctx context.Context, listID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM cards WHERE list_id = ?`, listID)
	if err != nil {
		return 0, wrapDBError("delete cards of list", err)
	}
	n, err := res.RowsAffected()
	return n, wrapDBError("delete cards of list", err)
}

func scanCard(s scanner) (*Card, error) {
	var (
		c                                Card
		description                      sql.NullString
		createdAt, updatedAt             int64
		dueDate, startDate, endDate      sql.NullInt64
		dependsOn, labelIDs, assigneeIDs string
	)
	if err := s.Scan(&c.ID, &c.Title, &description, &c.ListID, &c.Index, &c.CreatedBy, &createdAt, &updatedAt,
		&dueDate, &c.DueDateCompleted, &startDate, &endDate, &dependsOn, &labelIDs, &assigneeIDs); err != nil {
		return nil, err
	}
	c.Description = stringPtr(description)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	c.DueDate = timePtr(dueDate)
	c.StartDate = timePtr(startDate)
	c.EndDate = timePtr(endDate)

	var err error
	if c.DependsOn, err = decodeIDs(dependsOn); err != nil {
		return nil, err
	}
	if c.LabelIDs, err = decodeIDs(labelIDs); err != nil {
		return nil, err
	}
	if c.AssigneeIDs, err = decodeIDs(assigneeIDs); err != nil {
		return nil, err
	}
	return &c, nil
}
