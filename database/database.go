package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	_ "modernc.org/sqlite"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

type Database struct {
	db *sql.DB
}

// Session binds a browser cookie to the user's OAuth tokens. The tokens
// never leave the server; the client only ever sees the opaque id.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	CreatedAt    time.Time
}

type PlaylistRecord struct {
	ID         int64
	SessionID  string
	PlaylistID string
	Name       string
	TrackCount int
	CreatedAt  time.Time
}

// New opens the sqlite database. dbPath defaults to DB_PATH env var or
// ./data/groovr.db.
func New() (*Database, error) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/groovr.db"
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps concurrent session reads cheap
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Infof("Database initialized at %s", dbPath)
	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			token_type TEXT NOT NULL DEFAULT 'Bearer',
			expiry DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
		`CREATE TABLE IF NOT EXISTS playlist_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			playlist_id TEXT NOT NULL,
			name TEXT NOT NULL,
			track_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_playlist_history_session ON playlist_history(session_id, created_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// CreateSession stores a fresh token and returns the new session id.
func (d *Database) CreateSession(token *oauth2.Token) (string, error) {
	id := uuid.NewString()
	_, err := d.db.Exec(
		`INSERT INTO sessions (id, access_token, refresh_token, token_type, expiry) VALUES (?, ?, ?, ?, ?)`,
		id, token.AccessToken, token.RefreshToken, token.TokenType, token.Expiry.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	log.Debugf("created session %s", id)
	return id, nil
}

// GetSession loads a session by id.
func (d *Database) GetSession(id string) (*Session, error) {
	row := d.db.QueryRow(
		`SELECT id, access_token, refresh_token, token_type, expiry, created_at FROM sessions WHERE id = ?`, id,
	)
	var s Session
	if err := row.Scan(&s.ID, &s.AccessToken, &s.RefreshToken, &s.TokenType, &s.Expiry, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &s, nil
}

// UpdateToken overwrites a session's tokens after a refresh. The refresh
// token is kept when the provider omits it from the refresh response.
func (d *Database) UpdateToken(id string, token *oauth2.Token) error {
	var result sql.Result
	var err error
	if token.RefreshToken != "" {
		result, err = d.db.Exec(
			`UPDATE sessions SET access_token = ?, refresh_token = ?, expiry = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			token.AccessToken, token.RefreshToken, token.Expiry.UTC(), id,
		)
	} else {
		result, err = d.db.Exec(
			`UPDATE sessions SET access_token = ?, expiry = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			token.AccessToken, token.Expiry.UTC(), id,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update session token: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (d *Database) DeleteSession(id string) error {
	_, err := d.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// PruneSessions deletes sessions older than the given age. Run on startup.
func (d *Database) PruneSessions(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UTC()
	result, err := d.db.Exec(`DELETE FROM sessions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	n, _ := result.RowsAffected()
	if n > 0 {
		log.Infof("pruned %d expired sessions", n)
	}
	return n, nil
}

// Token rebuilds the oauth2 token for a session.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// RecordPlaylist logs a playlist the user exported.
func (d *Database) RecordPlaylist(sessionID, playlistID, name string, trackCount int) error {
	_, err := d.db.Exec(
		`INSERT INTO playlist_history (session_id, playlist_id, name, track_count) VALUES (?, ?, ?, ?)`,
		sessionID, playlistID, name, trackCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record playlist: %w", err)
	}
	return nil
}

// RecentPlaylists returns the session's most recently exported playlists.
func (d *Database) RecentPlaylists(sessionID string, limit int) ([]PlaylistRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.db.Query(
		`SELECT id, session_id, playlist_id, name, track_count, created_at
		 FROM playlist_history WHERE session_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist history: %w", err)
	}
	defer rows.Close()

	var records []PlaylistRecord
	for rows.Next() {
		var r PlaylistRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.PlaylistID, &r.Name, &r.TrackCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
