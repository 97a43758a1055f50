package database

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	db, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	db := newTestDB(t)

	id, err := db.CreateSession(testToken())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if id == "" {
		t.Fatal("CreateSession() returned empty id")
	}

	session, err := db.GetSession(id)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.AccessToken != "access-1" || session.RefreshToken != "refresh-1" {
		t.Errorf("session tokens = %q/%q", session.AccessToken, session.RefreshToken)
	}

	token := session.Token()
	if !token.Valid() {
		t.Error("rebuilt token should still be valid")
	}
}

func TestGetSessionNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetSession("nope"); err != ErrSessionNotFound {
		t.Errorf("GetSession() error = %v; want ErrSessionNotFound", err)
	}
}

func TestUpdateToken(t *testing.T) {
	db := newTestDB(t)
	id, _ := db.CreateSession(testToken())

	refreshed := &oauth2.Token{
		AccessToken: "access-2",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second),
	}
	if err := db.UpdateToken(id, refreshed); err != nil {
		t.Fatalf("UpdateToken() error = %v", err)
	}

	session, err := db.GetSession(id)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.AccessToken != "access-2" {
		t.Errorf("AccessToken = %q; want access-2", session.AccessToken)
	}
	// Provider omitted the refresh token, the stored one must survive.
	if session.RefreshToken != "refresh-1" {
		t.Errorf("RefreshToken = %q; want refresh-1 preserved", session.RefreshToken)
	}
}

func TestUpdateTokenUnknownSession(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpdateToken("missing", testToken()); err != ErrSessionNotFound {
		t.Errorf("UpdateToken() error = %v; want ErrSessionNotFound", err)
	}
}

func TestDeleteSession(t *testing.T) {
	db := newTestDB(t)
	id, _ := db.CreateSession(testToken())

	if err := db.DeleteSession(id); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := db.GetSession(id); err != ErrSessionNotFound {
		t.Errorf("GetSession() after delete error = %v; want ErrSessionNotFound", err)
	}
}

func TestPlaylistHistory(t *testing.T) {
	db := newTestDB(t)
	id, _ := db.CreateSession(testToken())

	for i, name := range []string{"First Mix", "Second Mix", "Third Mix"} {
		if err := db.RecordPlaylist(id, "pl-"+name, name, i+1); err != nil {
			t.Fatalf("RecordPlaylist() error = %v", err)
		}
	}
	if err := db.RecordPlaylist("other-session", "pl-x", "Not Mine", 5); err != nil {
		t.Fatalf("RecordPlaylist() error = %v", err)
	}

	records, err := db.RecentPlaylists(id, 2)
	if err != nil {
		t.Fatalf("RecentPlaylists() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("RecentPlaylists() returned %d; want 2", len(records))
	}
	if records[0].Name != "Third Mix" {
		t.Errorf("most recent = %q; want Third Mix", records[0].Name)
	}
	for _, r := range records {
		if r.SessionID != id {
			t.Errorf("leaked record from session %q", r.SessionID)
		}
	}
}

func TestPruneSessions(t *testing.T) {
	db := newTestDB(t)
	id, _ := db.CreateSession(testToken())

	// Nothing is old enough yet.
	n, err := db.PruneSessions(time.Hour)
	if err != nil {
		t.Fatalf("PruneSessions() error = %v", err)
	}
	if n != 0 {
		t.Errorf("PruneSessions() = %d; want 0", n)
	}

	// Everything is older than a zero-age cutoff.
	if _, err := db.db.Exec(`UPDATE sessions SET created_at = ?`, time.Now().Add(-48*time.Hour).UTC()); err != nil {
		t.Fatalf("backdating sessions: %v", err)
	}
	n, err = db.PruneSessions(24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneSessions() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PruneSessions() = %d; want 1", n)
	}
	if _, err := db.GetSession(id); err != ErrSessionNotFound {
		t.Errorf("pruned session still loadable: %v", err)
	}
}
