package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/snapfeed/snapfeed/internal/db"
	"github.com/snapfeed/snapfeed/internal/session"
	"github.com/snapfeed/snapfeed/internal/uploads"
	"github.com/snapfeed/snapfeed/pkg/config"
)

// newTestService wires the core against a throwaway sqlite file and a
// temp upload root
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	dir := t.TempDir()
	database, err := db.New(&config.DatabaseConfig{
		Driver: "sqlite",
		URL:    filepath.Join(dir, "test.sqlite3"),
	}, "ERROR")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	root := filepath.Join(dir, "uploads")
	return New(database, uploads.New(root), session.NewMemory(time.Hour)), root
}

// createAccount registers a user with an avatar and returns the session token
func createAccount(t *testing.T, svc *Service, username string) string {
	t.Helper()
	token, err := svc.CreateAccount(context.Background(), username, "pw-"+username,
		"Full "+username, username+"@example.com",
		strings.NewReader("avatar-bytes"), "avatar.png")
	if err != nil {
		t.Fatalf("CreateAccount(%s): %v", username, err)
	}
	return token
}

// createPost makes a post owned by username and returns its id
func createPost(t *testing.T, svc *Service, username string) int64 {
	t.Helper()
	id, err := svc.CreatePost(context.Background(), username,
		strings.NewReader("image-bytes"), "photo.jpg")
	if err != nil {
		t.Fatalf("CreatePost(%s): %v", username, err)
	}
	return id
}

// wantKind asserts the classified kind of an error
func wantKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("error kind = %s (%v), want %s", got, err, want)
	}
}
