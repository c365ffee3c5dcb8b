package history

import (
	"time"

	"github.com/lcamargo/docchat/internal/model"
)

// InsertMessage stores a chat message (idempotent on collection_id + msg_id;
// messages never change once appended). collectionID is empty for the
// session fallback chat.
func (db *DB) InsertMessage(collectionID string, m model.ChatMessage) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO messages (collection_id, msg_id, role, content, created_at, inserted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection_id, msg_id) DO NOTHING`,
		collectionID, m.ID, m.Role, m.Content, m.CreatedAt, now)
	return err
}

// ListMessages returns a collection's cached thread in append order.
func (db *DB) ListMessages(collectionID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.Query(`
		SELECT msg_id, role, content, created_at
		FROM messages
		WHERE collection_id = ?
		ORDER BY id ASC
		LIMIT ?`, collectionID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// PurgeCollection drops a collection's cached thread.
func (db *DB) PurgeCollection(collectionID string) error {
	_, err := db.Exec(`DELETE FROM messages WHERE collection_id = ?`, collectionID)
	return err
}
