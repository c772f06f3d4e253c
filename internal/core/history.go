package core

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History records past publications in a local SQLite database under .ntc/.
// The database is purely informational and can be deleted safely. The
// authoritative publication state lives in the note front matter.
type History struct {
	db *sql.DB
}

type HistoryEntry struct {
	File        string
	ForumKey    string
	PostID      int
	TopicID     int
	Action      string // "created" or "updated"
	URL         string
	PublishedAt time.Time
}

func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS publications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file TEXT NOT NULL,
			forum_key TEXT NOT NULL,
			post_id INTEGER NOT NULL,
			topic_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			published_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) Append(entry HistoryEntry) error {
	publishedAt := entry.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}
	_, err := h.db.Exec(`
		INSERT INTO publications (file, forum_key, post_id, topic_id, action, url, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);`,
		entry.File, entry.ForumKey, entry.PostID, entry.TopicID, entry.Action, entry.URL, publishedAt)
	return err
}

// List returns the most recent publications first, up to limit entries.
// A non-empty file restricts the result to publications of that file.
func (h *History) List(file string, limit int) ([]HistoryEntry, error) {
	query := `
		SELECT file, forum_key, post_id, topic_id, action, url, published_at
		FROM publications`
	var args []any
	if file != "" {
		query += ` WHERE file = ?`
		args = append(args, file)
	}
	query += ` ORDER BY published_at DESC, id DESC LIMIT ?;`
	args = append(args, limit)

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		err := rows.Scan(&entry.File, &entry.ForumKey, &entry.PostID, &entry.TopicID,
			&entry.Action, &entry.URL, &entry.PublishedAt)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}
