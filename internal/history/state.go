package history

import (
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StateGet retrieves a durable client-state value.
func (db *DB) StateGet(key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// StateSet stores a durable client-state value.
func (db *DB) StateSet(key, value string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO client_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// StateDelete removes a durable client-state value.
func (db *DB) StateDelete(key string) error {
	_, err := db.Exec(`DELETE FROM client_state WHERE key = ?`, key)
	return err
}

// StateStore adapts the client_state table to the session.Storage
// interface. Storage has no error returns, so failures are logged and the
// caller sees a miss; durable state is advisory (a lost active-collection
// id just means no restore on next start).
type StateStore struct {
	db     *DB
	logger *zap.Logger
}

// NewStateStore creates a durable Storage view over the database.
func NewStateStore(db *DB, logger *zap.Logger) *StateStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateStore{db: db, logger: logger}
}

func (s *StateStore) Get(key string) (string, bool) {
	v, ok, err := s.db.StateGet(key)
	if err != nil {
		s.logger.Warn("read client state", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, ok
}

func (s *StateStore) Set(key, value string) {
	if err := s.db.StateSet(key, value); err != nil {
		s.logger.Warn("write client state", zap.String("key", key), zap.Error(err))
	}
}

func (s *StateStore) Delete(key string) {
	if err := s.db.StateDelete(key); err != nil {
		s.logger.Warn("delete client state", zap.String("key", key), zap.Error(err))
	}
}
