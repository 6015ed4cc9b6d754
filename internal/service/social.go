package service

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/snapfeed/snapfeed/internal/db"
	"github.com/snapfeed/snapfeed/internal/models"
	"github.com/snapfeed/snapfeed/internal/uploads"
)

// Like records actor's like on a post. Liking a post twice is a
// Conflict: the relationship is a strict toggle, not an idempotent set.
func (s *Service) Like(ctx context.Context, actor string, postID int64) error {
	const op = "service.Like"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}
	if postID == 0 {
		return errf(KindBadInput, op, "postid is required")
	}
	return s.transact(ctx, op, func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		likes := db.NewLikeRepository(repo)

		existing, err := likes.Get(ctx, actor, postID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errf(KindConflict, op, "post %d already liked by %s", postID, actor)
		}

		post, err := db.NewPostRepository(repo).GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if post == nil {
			return errf(KindNotFound, op, "post %d does not exist", postID)
		}

		return insertErr(op, likes.Create(ctx, &models.Like{Owner: actor, PostID: postID}))
	})
}

// Unlike removes actor's like from a post. Unliking without a prior
// like is a Conflict.
func (s *Service) Unlike(ctx context.Context, actor string, postID int64) error {
	const op = "service.Unlike"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}
	if postID == 0 {
		return errf(KindBadInput, op, "postid is required")
	}
	return s.transact(ctx, op, func(tx *gorm.DB) error {
		likes := db.NewLikeRepository(db.NewRepository(tx))

		existing, err := likes.Get(ctx, actor, postID)
		if err != nil {
			return err
		}
		if existing == nil {
			return errf(KindConflict, op, "post %d is not liked by %s", postID, actor)
		}
		return likes.Delete(ctx, actor, postID)
	})
}

// CreateComment adds a comment by actor on a post
func (s *Service) CreateComment(ctx context.Context, actor string, postID int64, text string) error {
	const op = "service.CreateComment"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}
	if postID == 0 {
		return errf(KindBadInput, op, "postid is required")
	}
	if strings.TrimSpace(text) == "" {
		return errf(KindBadInput, op, "comment text is required")
	}
	return s.transact(ctx, op, func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)

		post, err := db.NewPostRepository(repo).GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if post == nil {
			return errf(KindNotFound, op, "post %d does not exist", postID)
		}

		return db.NewCommentRepository(repo).Create(ctx, &models.Comment{
			Owner:  actor,
			PostID: postID,
			Text:   text,
		})
	})
}

// DeleteComment removes a comment; only its owner may do so
func (s *Service) DeleteComment(ctx context.Context, actor string, commentID int64) error {
	const op = "service.DeleteComment"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}
	if commentID == 0 {
		return errf(KindBadInput, op, "commentid is required")
	}
	return s.transact(ctx, op, func(tx *gorm.DB) error {
		comments := db.NewCommentRepository(db.NewRepository(tx))

		comment, err := comments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment == nil {
			return errf(KindNotFound, op, "comment %d does not exist", commentID)
		}
		if comment.Owner != actor {
			return errf(KindForbidden, op, "comment %d is not owned by %s", commentID, actor)
		}
		return comments.Delete(ctx, commentID)
	})
}

// CreatePost stores the uploaded image and inserts the post row. The
// file is written before the row so a row never references a missing
// file; if the insert fails the file is removed again.
func (s *Service) CreatePost(ctx context.Context, actor string, file io.Reader, originalName string) (int64, error) {
	const op = "service.CreatePost"
	if actor == "" {
		return 0, errf(KindUnauthenticated, op, "login required")
	}

	basename, err := s.uploads.Save(file, originalName)
	if err != nil {
		if err == uploads.ErrNoFile {
			return 0, errf(KindBadInput, op, "an image file is required")
		}
		return 0, err
	}

	post := &models.Post{Owner: actor, Filename: basename}
	if err := s.transact(ctx, op, func(tx *gorm.DB) error {
		return db.NewPostRepository(db.NewRepository(tx)).Create(ctx, post)
	}); err != nil {
		s.uploads.Remove(basename)
		return 0, err
	}
	return post.PostID, nil
}

// DeletePost removes a post owned by actor. The row goes first; the
// stored file is removed afterwards, best-effort, so a dangling row
// never outlives its file reference.
func (s *Service) DeletePost(ctx context.Context, actor string, postID int64) error {
	const op = "service.DeletePost"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}
	if postID == 0 {
		return errf(KindBadInput, op, "postid is required")
	}

	var filename string
	if err := s.transact(ctx, op, func(tx *gorm.DB) error {
		posts := db.NewPostRepository(db.NewRepository(tx))

		post, err := posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if post == nil {
			return errf(KindNotFound, op, "post %d does not exist", postID)
		}
		if post.Owner != actor {
			return errf(KindForbidden, op, "post %d is not owned by %s", postID, actor)
		}
		filename = post.Filename
		return posts.Delete(ctx, postID)
	}); err != nil {
		return err
	}

	s.uploads.Remove(filename)
	return nil
}

// Follow creates a follow edge from actor to target. An existing edge
// is a Conflict.
func (s *Service) Follow(ctx context.Context, actor, target string) error {
	const op = "service.Follow"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}
	if target == "" {
		return errf(KindBadInput, op, "username is required")
	}
	return s.transact(ctx, op, func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		follows := db.NewFollowRepository(repo)

		if err := s.requireUser(ctx, repo, op, target); err != nil {
			return err
		}

		edge, err := follows.Get(ctx, actor, target)
		if err != nil {
			return err
		}
		if edge != nil {
			return errf(KindConflict, op, "%s already follows %s", actor, target)
		}
		return insertErr(op, follows.Create(ctx, &models.Follow{Username1: actor, Username2: target}))
	})
}

// Unfollow removes the follow edge from actor to target. A missing
// edge is a Conflict.
func (s *Service) Unfollow(ctx context.Context, actor, target string) error {
	const op = "service.Unfollow"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}
	if target == "" {
		return errf(KindBadInput, op, "username is required")
	}
	return s.transact(ctx, op, func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		follows := db.NewFollowRepository(repo)

		if err := s.requireUser(ctx, repo, op, target); err != nil {
			return err
		}

		edge, err := follows.Get(ctx, actor, target)
		if err != nil {
			return err
		}
		if edge == nil {
			return errf(KindConflict, op, "%s does not follow %s", actor, target)
		}
		return follows.Delete(ctx, actor, target)
	})
}

// requireUser classifies a missing user row as NotFound
func (s *Service) requireUser(ctx context.Context, repo *db.Repository, op, username string) error {
	user, err := db.NewUserRepository(repo).GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return errf(KindNotFound, op, "user %s does not exist", username)
	}
	return nil
}

// logCleanup is a debug hook for advisory file removals
func (s *Service) logCleanup(what, name string) {
	s.logger.Debug("Removed stored file", zap.String("reason", what), zap.String("name", name))
}
