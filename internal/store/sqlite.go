package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dmytrop/nbu-agent/internal/domain"
)

const lastMessagePreviewLen = 100

// SQLiteStore implements Store using SQLite. With the default `:memory:`
// DSN the store lives and dies with the process.
type SQLiteStore struct {
	db           *sql.DB
	historyLimit int
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store. historyLimit is the maximum
// number of turns retained per session.
func NewSQLiteStore(dsn string, historyLimit int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across
	// goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, historyLimit: historyLimit}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetOrCreate returns an existing session id unchanged, or creates a fresh
// session under a new uuid.
func (s *SQLiteStore) GetOrCreate(ctx context.Context, sessionID string) (string, error) {
	if sessionID != "" {
		exists, err := s.Exists(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if exists {
			return sessionID, nil
		}
	}

	newID := uuid.New().String()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id) VALUES (?)`, newID); err != nil {
		return "", err
	}
	return newID, nil
}

// Exists reports whether the session id is known.
func (s *SQLiteStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM sessions WHERE session_id = ?`, sessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// History returns the session's turns in insertion order.
func (s *SQLiteStore) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM turns WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Append adds the user/assistant turn pair and evicts from the front down
// to the retention cap. The pair insert and the eviction run in one
// transaction, so a concurrent append on the same session cannot interleave
// inside a pair.
func (s *SQLiteStore) Append(ctx context.Context, sessionID, userText, assistantText string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (session_id) VALUES (?)`, sessionID); err != nil {
		return err
	}

	turns := []domain.Turn{
		{Role: domain.RoleUser, Content: userText},
		{Role: domain.RoleAssistant, Content: assistantText},
	}
	for _, t := range turns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns (session_id, role, content) VALUES (?, ?, ?)`,
			sessionID, t.Role, t.Content); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM turns WHERE session_id = ? AND seq NOT IN (
			SELECT seq FROM turns WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		)`, sessionID, sessionID, s.historyLimit); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes the session and its turns.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// List summarizes every live session: id, turn count, and a preview of the
// most recent turn.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.session_id,
		       COUNT(t.seq),
		       COALESCE((SELECT content FROM turns WHERE session_id = s.session_id ORDER BY seq DESC LIMIT 1), '')
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.created_at ASC, s.session_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.SessionSummary
	for rows.Next() {
		var sum domain.SessionSummary
		var last string
		if err := rows.Scan(&sum.SessionID, &sum.MessageCount, &last); err != nil {
			return nil, err
		}
		sum.LastMessage = previewLastMessage(last, sum.MessageCount)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func previewLastMessage(content string, count int) string {
	if count == 0 {
		return "No messages"
	}
	runes := []rune(content)
	if len(runes) > lastMessagePreviewLen {
		runes = runes[:lastMessagePreviewLen]
	}
	return string(runes) + "..."
}
