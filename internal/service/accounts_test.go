package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snapfeed/snapfeed/internal/db"
)

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	svc, root := newTestService(t)

	token, err := svc.CreateAccount(ctx, "alice", "pw1", "Alice A", "alice@example.com",
		strings.NewReader("avatar"), "avatar.png")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	// Session is established for the new account
	logname, err := svc.Sessions().Logname(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if logname != "alice" {
		t.Errorf("session logname = %q, want alice", logname)
	}

	user, err := db.NewUserRepository(svc.Repository()).GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if user == nil {
		t.Fatal("user row should exist")
	}
	if user.Password == "pw1" || !strings.HasPrefix(user.Password, "sha512$") {
		t.Errorf("password must be stored hashed, got %q", user.Password)
	}
	if _, err := os.Stat(filepath.Join(root, user.Filename)); err != nil {
		t.Errorf("avatar should be stored under the upload root: %v", err)
	}

	// Duplicate username
	_, err = svc.CreateAccount(ctx, "alice", "pw2", "Other", "o@example.com",
		strings.NewReader("x"), "a.png")
	wantKind(t, err, KindConflict)
}

func TestCreateAccountValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateAccount(ctx, "", "pw", "Full", "e@example.com", strings.NewReader("x"), "a.png")
	wantKind(t, err, KindBadInput)
	_, err = svc.CreateAccount(ctx, "u", "", "Full", "e@example.com", strings.NewReader("x"), "a.png")
	wantKind(t, err, KindBadInput)
	_, err = svc.CreateAccount(ctx, "u", "pw", "", "e@example.com", strings.NewReader("x"), "a.png")
	wantKind(t, err, KindBadInput)
	_, err = svc.CreateAccount(ctx, "u", "pw", "Full", "", strings.NewReader("x"), "a.png")
	wantKind(t, err, KindBadInput)

	// Avatar upload is required
	_, err = svc.CreateAccount(ctx, "u", "pw", "Full", "e@example.com", nil, "")
	wantKind(t, err, KindBadInput)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createAccount(t, svc, "alice")

	_, err := svc.Login(ctx, "", "pw-alice")
	wantKind(t, err, KindBadInput)
	_, err = svc.Login(ctx, "alice", "")
	wantKind(t, err, KindBadInput)

	// Wrong password and unknown user are indistinguishable
	_, err = svc.Login(ctx, "alice", "wrong")
	wantKind(t, err, KindForbidden)
	_, err = svc.Login(ctx, "nobody", "pw")
	wantKind(t, err, KindForbidden)

	token, err := svc.Login(ctx, "alice", "pw-alice")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	logname, err := svc.Sessions().Logname(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if logname != "alice" {
		t.Errorf("session logname = %q, want alice", logname)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	token := createAccount(t, svc, "alice")

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	logname, err := svc.Sessions().Logname(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if logname != "" {
		t.Error("session should be cleared after logout")
	}

	// Logging out twice is fine
	if err := svc.Logout(ctx, token); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}

func TestEditAccount(t *testing.T) {
	ctx := context.Background()
	svc, root := newTestService(t)
	createAccount(t, svc, "alice")

	wantKind(t, svc.EditAccount(ctx, "", "New Name", "n@example.com", nil, ""), KindUnauthenticated)
	wantKind(t, svc.EditAccount(ctx, "alice", "", "n@example.com", nil, ""), KindBadInput)
	wantKind(t, svc.EditAccount(ctx, "alice", "New Name", "", nil, ""), KindBadInput)
	wantKind(t, svc.EditAccount(ctx, "ghost", "New Name", "n@example.com", nil, ""), KindNotFound)

	users := db.NewUserRepository(svc.Repository())
	before, err := users.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}

	// Without a new avatar only the profile fields change
	if err := svc.EditAccount(ctx, "alice", "New Name", "n@example.com", nil, ""); err != nil {
		t.Fatalf("EditAccount: %v", err)
	}
	after, err := users.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if after.Fullname != "New Name" || after.Email != "n@example.com" {
		t.Errorf("profile fields not updated: %+v", after)
	}
	if after.Filename != before.Filename {
		t.Error("avatar filename should be unchanged without a new upload")
	}

	// With a new avatar the row points at the new file and the old one is removed
	if err := svc.EditAccount(ctx, "alice", "New Name", "n@example.com",
		strings.NewReader("new-avatar"), "fresh.png"); err != nil {
		t.Fatalf("EditAccount with avatar: %v", err)
	}
	after, err = users.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if after.Filename == before.Filename {
		t.Error("avatar filename should change with a new upload")
	}
	if _, err := os.Stat(filepath.Join(root, after.Filename)); err != nil {
		t.Errorf("new avatar should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, before.Filename)); !os.IsNotExist(err) {
		t.Error("old avatar should be removed after the update")
	}
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createAccount(t, svc, "alice")

	wantKind(t, svc.UpdatePassword(ctx, "", "a", "b", "b"), KindUnauthenticated)
	wantKind(t, svc.UpdatePassword(ctx, "alice", "", "b", "b"), KindBadInput)
	wantKind(t, svc.UpdatePassword(ctx, "alice", "wrong", "b", "b"), KindForbidden)
	wantKind(t, svc.UpdatePassword(ctx, "alice", "pw-alice", "new1", "new2"), KindMismatch)

	if err := svc.UpdatePassword(ctx, "alice", "pw-alice", "fresh", "fresh"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "pw-alice"); KindOf(err) != KindForbidden {
		t.Error("old password should no longer verify")
	}
	if _, err := svc.Login(ctx, "alice", "fresh"); err != nil {
		t.Errorf("new password should verify: %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc, root := newTestService(t)
	token := createAccount(t, svc, "alice")
	createAccount(t, svc, "bob")

	postID := createPost(t, svc, "alice")
	bobPost := createPost(t, svc, "bob")

	if err := svc.Follow(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Like(ctx, "alice", bobPost); err != nil {
		t.Fatal(err)
	}
	if err := svc.CreateComment(ctx, "bob", postID, "bye"); err != nil {
		t.Fatal(err)
	}

	repo := svc.Repository()
	user, err := db.NewUserRepository(repo).GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	post, err := db.NewPostRepository(repo).GetByID(ctx, postID)
	if err != nil {
		t.Fatal(err)
	}

	wantKind(t, svc.DeleteAccount(ctx, "", token), KindUnauthenticated)

	if err := svc.DeleteAccount(ctx, "alice", token); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	// Row gone, dependents cascaded
	if got, _ := db.NewUserRepository(repo).GetByUsername(ctx, "alice"); got != nil {
		t.Error("user row should be gone")
	}
	if got, _ := db.NewPostRepository(repo).GetByID(ctx, postID); got != nil {
		t.Error("posts should cascade away with the account")
	}
	if like, _ := db.NewLikeRepository(repo).Get(ctx, "alice", bobPost); like != nil {
		t.Error("likes should cascade away with the account")
	}
	if edge, _ := db.NewFollowRepository(repo).Get(ctx, "alice", "bob"); edge != nil {
		t.Error("follow edges should cascade away with the account")
	}

	// Files removed after the row delete
	if _, err := os.Stat(filepath.Join(root, user.Filename)); !os.IsNotExist(err) {
		t.Error("avatar file should be removed")
	}
	if _, err := os.Stat(filepath.Join(root, post.Filename)); !os.IsNotExist(err) {
		t.Error("post files should be removed")
	}

	// Session cleared
	logname, err := svc.Sessions().Logname(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if logname != "" {
		t.Error("session should be cleared after account deletion")
	}

	// Bob and his post survive
	if got, _ := db.NewUserRepository(repo).GetByUsername(ctx, "bob"); got == nil {
		t.Error("other accounts must be untouched")
	}
	if got, _ := db.NewPostRepository(repo).GetByID(ctx, bobPost); got == nil {
		t.Error("other users' posts must be untouched")
	}
}
