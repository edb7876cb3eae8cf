package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS boards (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	visibility TEXT NOT NULL,
	background_url TEXT,
	workspace_id TEXT,
	created_by TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_boards_created_by ON boards(created_by);
CREATE INDEX IF NOT EXISTS idx_boards_workspace ON boards(workspace_id);

CREATE TABLE IF NOT EXISTS lists (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	board_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lists_board ON lists(board_id, idx);

CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	list_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	created_by TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	due_date INTEGER,
	due_date_completed INTEGER NOT NULL DEFAULT 0,
	start_date INTEGER,
	end_date INTEGER,
	depends_on TEXT NOT NULL DEFAULT '[]',
	label_ids TEXT NOT NULL DEFAULT '[]',
	assignee_ids TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_cards_list ON cards(list_id, idx);

CREATE TABLE IF NOT EXISTS labels (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	color_code TEXT NOT NULL,
	board_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_labels_board ON labels(board_id);

CREATE TABLE IF NOT EXISTS checklists (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	card_id TEXT NOT NULL,
	ord INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checklists_card ON checklists(card_id, ord);

CREATE TABLE IF NOT EXISTS checklist_items (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	checklist_id TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	ord INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checklist_items_checklist ON checklist_items(checklist_id, ord);

CREATE TABLE IF NOT EXISTS card_activities (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	card_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	action TEXT NOT NULL,
	details TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_card_activities_card ON card_activities(card_id, created_at);
`

// InitDB opens the sqlite database at path and makes sure the schema
// exists. Transactions take the write lock at BEGIN so read-modify-write
// units on the same scope serialize.
func InitDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates any missing tables and indexes.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func dsn(path string) string {
	params := "_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + params
	}
	return "file:" + path + "?" + params
}
