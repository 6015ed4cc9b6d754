package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snapfeed/snapfeed/internal/db"
)

func TestLikeToggle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createAccount(t, svc, "alice")
	createAccount(t, svc, "bob")
	postID := createPost(t, svc, "bob")

	if err := svc.Like(ctx, "alice", postID); err != nil {
		t.Fatalf("first Like: %v", err)
	}
	wantKind(t, svc.Like(ctx, "alice", postID), KindConflict)

	if err := svc.Unlike(ctx, "alice", postID); err != nil {
		t.Fatalf("Unlike: %v", err)
	}
	wantKind(t, svc.Unlike(ctx, "alice", postID), KindConflict)
}

func TestLikeValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createAccount(t, svc, "alice")

	wantKind(t, svc.Like(ctx, "", 1), KindUnauthenticated)
	wantKind(t, svc.Like(ctx, "alice", 0), KindBadInput)
	wantKind(t, svc.Like(ctx, "alice", 999), KindNotFound)
	wantKind(t, svc.Unlike(ctx, "", 1), KindUnauthenticated)
	wantKind(t, svc.Unlike(ctx, "alice", 0), KindBadInput)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createAccount(t, svc, "alice")
	createAccount(t, svc, "bob")
	postID := createPost(t, svc, "bob")

	wantKind(t, svc.CreateComment(ctx, "", postID, "hi"), KindUnauthenticated)
	wantKind(t, svc.CreateComment(ctx, "alice", 0, "hi"), KindBadInput)
	wantKind(t, svc.CreateComment(ctx, "alice", postID, "   \t"), KindBadInput)
	wantKind(t, svc.CreateComment(ctx, "alice", 999, "hi"), KindNotFound)

	if err := svc.CreateComment(ctx, "alice", postID, "nice shot"); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	comments, err := db.NewCommentRepository(svc.Repository()).ListByPost(ctx, postID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 1 || comments[0].Text != "nice shot" || comments[0].Owner != "alice" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
	commentID := comments[0].CommentID

	wantKind(t, svc.DeleteComment(ctx, "bob", commentID), KindForbidden)
	wantKind(t, svc.DeleteComment(ctx, "alice", 999), KindNotFound)
	wantKind(t, svc.DeleteComment(ctx, "alice", 0), KindBadInput)

	if err := svc.DeleteComment(ctx, "alice", commentID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	got, err := db.NewCommentRepository(svc.Repository()).GetByID(ctx, commentID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("comment should be gone after delete")
	}
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	svc, root := newTestService(t)
	createAccount(t, svc, "alice")

	wantKind(t, mustErr(svc.CreatePost(ctx, "alice", nil, "")), KindBadInput)
	wantKind(t, mustErr(svc.CreatePost(ctx, "", strings.NewReader("x"), "a.jpg")), KindUnauthenticated)

	postID, err := svc.CreatePost(ctx, "alice", strings.NewReader("image"), "Pic.JPG")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	post, err := db.NewPostRepository(svc.Repository()).GetByID(ctx, postID)
	if err != nil {
		t.Fatal(err)
	}
	if post == nil || post.Owner != "alice" {
		t.Fatalf("unexpected post row: %+v", post)
	}
	if !strings.HasSuffix(post.Filename, ".jpg") {
		t.Errorf("stored filename should keep the lower-cased extension, got %q", post.Filename)
	}
	if _, err := os.Stat(filepath.Join(root, post.Filename)); err != nil {
		t.Errorf("stored file should exist under the upload root: %v", err)
	}
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	svc, root := newTestService(t)
	createAccount(t, svc, "alice")
	createAccount(t, svc, "bob")
	postID := createPost(t, svc, "alice")

	// Attach a like and a comment so the cascade is observable
	if err := svc.Like(ctx, "bob", postID); err != nil {
		t.Fatal(err)
	}
	if err := svc.CreateComment(ctx, "bob", postID, "great"); err != nil {
		t.Fatal(err)
	}

	repo := svc.Repository()
	post, err := db.NewPostRepository(repo).GetByID(ctx, postID)
	if err != nil {
		t.Fatal(err)
	}

	wantKind(t, svc.DeletePost(ctx, "bob", postID), KindForbidden)
	wantKind(t, svc.DeletePost(ctx, "alice", 999), KindNotFound)
	wantKind(t, svc.DeletePost(ctx, "", postID), KindUnauthenticated)

	if err := svc.DeletePost(ctx, "alice", postID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	if got, _ := db.NewPostRepository(repo).GetByID(ctx, postID); got != nil {
		t.Error("post row should be gone")
	}
	if like, _ := db.NewLikeRepository(repo).Get(ctx, "bob", postID); like != nil {
		t.Error("likes should cascade away with the post")
	}
	comments, _ := db.NewCommentRepository(repo).ListByPost(ctx, postID)
	if len(comments) != 0 {
		t.Error("comments should cascade away with the post")
	}
	if _, err := os.Stat(filepath.Join(root, post.Filename)); !os.IsNotExist(err) {
		t.Error("stored file should be removed with the post")
	}
}

func TestFollowRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createAccount(t, svc, "alice")
	createAccount(t, svc, "bob")

	wantKind(t, svc.Follow(ctx, "", "bob"), KindUnauthenticated)
	wantKind(t, svc.Follow(ctx, "alice", ""), KindBadInput)
	wantKind(t, svc.Follow(ctx, "alice", "nobody"), KindNotFound)

	if err := svc.Follow(ctx, "alice", "bob"); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	wantKind(t, svc.Follow(ctx, "alice", "bob"), KindConflict)

	edge, err := db.NewFollowRepository(svc.Repository()).Get(ctx, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if edge == nil {
		t.Fatal("edge should exist after Follow")
	}

	if err := svc.Unfollow(ctx, "alice", "bob"); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	edge, err = db.NewFollowRepository(svc.Repository()).Get(ctx, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if edge != nil {
		t.Error("follow then unfollow should return to the pre-follow state")
	}
	wantKind(t, svc.Unfollow(ctx, "alice", "bob"), KindConflict)
	wantKind(t, svc.Unfollow(ctx, "alice", "nobody"), KindNotFound)
}

func TestFeed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createAccount(t, svc, "alice")
	createAccount(t, svc, "bob")
	createAccount(t, svc, "carol")

	own := createPost(t, svc, "alice")
	followed := createPost(t, svc, "bob")
	createPost(t, svc, "carol") // not followed, must not appear

	if err := svc.Follow(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Like(ctx, "alice", followed); err != nil {
		t.Fatal(err)
	}

	feed, err := db.NewPostRepository(svc.Repository()).Feed(ctx, "alice")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("feed should hold own + followed posts, got %d", len(feed))
	}
	// Newest first
	if feed[0].PostID != followed || feed[1].PostID != own {
		t.Errorf("feed order = [%d %d], want [%d %d]", feed[0].PostID, feed[1].PostID, followed, own)
	}
	if feed[0].Likes != 1 || feed[0].ViewerLiked != 1 {
		t.Errorf("like counts = (%d, %d), want (1, 1)", feed[0].Likes, feed[0].ViewerLiked)
	}
	if feed[1].Likes != 0 || feed[1].ViewerLiked != 0 {
		t.Errorf("own post counts = (%d, %d), want (0, 0)", feed[1].Likes, feed[1].ViewerLiked)
	}
}

// mustErr discards the value of a two-return call for kind assertions
func mustErr(_ int64, err error) error {
	return err
}
