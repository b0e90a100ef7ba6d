// Package history keeps a searchable SQLite archive of past conversations.
// The JSON slot store is the source of truth; the archive is a mirror that
// adds full-text search and survives individual session deletion upstream
// only when told to.
package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

type Archive struct {
	db          *sql.DB
	searchAvail bool
	mu          sync.Mutex
}

// Open connects to (or creates) the archive database at dbPath.
func Open(dbPath string) (*Archive, error) {
	db, ftsEnabled, err := initDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &Archive{db: db, searchAvail: ftsEnabled}, nil
}

func (a *Archive) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// SearchAvailable reports whether the FTS index could be created.
func (a *Archive) SearchAvailable() bool {
	return a.searchAvail
}

// RecordSession mirrors a session into the archive. The session row is
// upserted and messages are inserted by id, so recording the same session
// after every turn only appends the new messages.
func (a *Archive) RecordSession(s Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sessions(id, created_at, title, model_ref) VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, model_ref = excluded.model_ref`,
		s.ID, s.CreatedAt.Unix(), s.Title, s.ModelRef)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT OR IGNORE INTO messages(id, session_id, role, content, kind, created_at) VALUES(?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range s.Messages {
		if _, err := stmt.Exec(m.ID, s.ID, m.Role, m.Content, m.Kind, m.CreatedAt.Unix()); err != nil {
			return fmt.Errorf("failed to record message: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteSession removes a session and its messages from the archive.
func (a *Archive) DeleteSession(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Search runs a full-text query over archived messages.
func (a *Archive) Search(query string) ([]SearchResult, error) {
	if !a.searchAvail {
		return nil, fmt.Errorf("search is unavailable (binary compiled without FTS5 support)")
	}

	ftsQuery := ParseQuery(query)
	if ftsQuery == "" {
		return nil, fmt.Errorf("empty query")
	}

	rows, err := a.db.Query(`
		SELECT f.session_id, f.role, highlight(messages_fts, 0, ' [1;31m', ' [0m'),
		       s.title, s.created_at
		FROM messages_fts f
		JOIN sessions s ON s.id = f.session_id
		WHERE messages_fts MATCH ?
		ORDER BY rank
		LIMIT 50`, ftsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var ts int64
		if err := rows.Scan(&r.SessionID, &r.Role, &r.Preview, &r.SessionTitle, &ts); err != nil {
			continue
		}
		r.CreatedAt = time.Unix(ts, 0)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ResolveSessionID finds the full session id given a prefix.
func (a *Archive) ResolveSessionID(partial string) (string, error) {
	var full string
	err := a.db.QueryRow("SELECT id FROM sessions WHERE id = ?", partial).Scan(&full)
	if err == nil {
		return full, nil
	}

	rows, err := a.db.Query("SELECT id FROM sessions WHERE id LIKE ? LIMIT 2", partial+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err == nil {
			matches = append(matches, id)
		}
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("session not found")
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous session id: %s...", partial)
	}
	return matches[0], nil
}

// Messages returns the archived turns of a session, oldest first.
func (a *Archive) Messages(sessionID string) ([]Message, error) {
	rows, err := a.db.Query(
		"SELECT id, role, content, kind, created_at FROM messages WHERE session_id = ? ORDER BY created_at ASC, id ASC",
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var ts int64
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Kind, &ts); err != nil {
			continue
		}
		m.CreatedAt = time.Unix(ts, 0)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ListRecent returns session summaries, newest first.
func (a *Archive) ListRecent(limit int) ([]SessionSummary, error) {
	rows, err := a.db.Query(`
		SELECT s.id, s.created_at, s.title, s.model_ref, count(m.id)
		FROM sessions s LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var s SessionSummary
		var ts int64
		if err := rows.Scan(&s.ID, &ts, &s.Title, &s.ModelRef, &s.Messages); err != nil {
			continue
		}
		s.CreatedAt = time.Unix(ts, 0)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
