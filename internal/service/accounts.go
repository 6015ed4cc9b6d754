package service

import (
	"context"
	"io"

	"gorm.io/gorm"

	"github.com/snapfeed/snapfeed/internal/db"
	"github.com/snapfeed/snapfeed/internal/models"
	"github.com/snapfeed/snapfeed/internal/password"
	"github.com/snapfeed/snapfeed/internal/uploads"
)

// CreateAccount registers a new user and establishes a session for it.
// The avatar upload is required. Returns the new session token.
func (s *Service) CreateAccount(ctx context.Context, username, plaintext, fullname, email string, avatar io.Reader, avatarName string) (string, error) {
	const op = "service.CreateAccount"
	if username == "" || plaintext == "" || fullname == "" || email == "" {
		return "", errf(KindBadInput, op, "username, password, fullname and email are required")
	}

	// Fail fast before touching the filesystem
	existing, err := db.NewUserRepository(s.Repository()).GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", errf(KindConflict, op, "username %s is taken", username)
	}

	basename, err := s.uploads.Save(avatar, avatarName)
	if err != nil {
		if err == uploads.ErrNoFile {
			return "", errf(KindBadInput, op, "a profile photo is required")
		}
		return "", err
	}

	user := &models.User{
		Username: username,
		Password: password.Hash(plaintext),
		Fullname: fullname,
		Email:    email,
		Filename: basename,
	}
	if err := s.transact(ctx, op, func(tx *gorm.DB) error {
		return insertErr(op, db.NewUserRepository(db.NewRepository(tx)).Create(ctx, user))
	}); err != nil {
		s.uploads.Remove(basename)
		return "", err
	}

	return s.sessions.Create(ctx, username)
}

// Login verifies credentials and establishes a session. A missing user
// and a wrong password are the same Forbidden, so usernames cannot be
// enumerated.
func (s *Service) Login(ctx context.Context, username, plaintext string) (string, error) {
	const op = "service.Login"
	if username == "" || plaintext == "" {
		return "", errf(KindBadInput, op, "username and password are required")
	}

	user, err := db.NewUserRepository(s.Repository()).GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil || !password.Verify(plaintext, user.Password) {
		return "", errf(KindForbidden, op, "bad credentials")
	}

	return s.sessions.Create(ctx, user.Username)
}

// Logout discards the session. Always succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// EditAccount updates actor's profile. When a new avatar is supplied
// the order is save-new, update-row, remove-old: the row never points
// at a deleted file, and the old file is only dropped once the update
// has succeeded.
func (s *Service) EditAccount(ctx context.Context, actor, fullname, email string, avatar io.Reader, avatarName string) error {
	const op = "service.EditAccount"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}
	if fullname == "" || email == "" {
		return errf(KindBadInput, op, "fullname and email are required")
	}

	user, err := db.NewUserRepository(s.Repository()).GetByUsername(ctx, actor)
	if err != nil {
		return err
	}
	if user == nil {
		return errf(KindNotFound, op, "user %s does not exist", actor)
	}

	newBasename := ""
	if avatar != nil && avatarName != "" {
		newBasename, err = s.uploads.Save(avatar, avatarName)
		if err != nil {
			return err
		}
	}

	if err := s.transact(ctx, op, func(tx *gorm.DB) error {
		return db.NewUserRepository(db.NewRepository(tx)).
			UpdateProfile(ctx, actor, fullname, email, newBasename)
	}); err != nil {
		if newBasename != "" {
			s.uploads.Remove(newBasename)
		}
		return err
	}

	if newBasename != "" {
		s.uploads.Remove(user.Filename)
		s.logCleanup("avatar replaced", user.Filename)
	}
	return nil
}

// UpdatePassword rotates actor's credential. The old password must
// verify and the two copies of the new one must agree.
func (s *Service) UpdatePassword(ctx context.Context, actor, old, new1, new2 string) error {
	const op = "service.UpdatePassword"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}
	if old == "" || new1 == "" || new2 == "" {
		return errf(KindBadInput, op, "all password fields are required")
	}

	user, err := db.NewUserRepository(s.Repository()).GetByUsername(ctx, actor)
	if err != nil {
		return err
	}
	if user == nil || !password.Verify(old, user.Password) {
		return errf(KindForbidden, op, "bad credentials")
	}
	if new1 != new2 {
		return errf(KindMismatch, op, "new passwords do not agree")
	}

	return s.transact(ctx, op, func(tx *gorm.DB) error {
		return db.NewUserRepository(db.NewRepository(tx)).
			UpdatePassword(ctx, actor, password.Hash(new1))
	})
}

// DeleteAccount removes actor's row, which cascades to their posts,
// likes, comments and follow edges at the store level. Stored files are
// gathered first and removed only after the row delete succeeds; the
// session is cleared last.
func (s *Service) DeleteAccount(ctx context.Context, actor, token string) error {
	const op = "service.DeleteAccount"
	if actor == "" {
		return errf(KindUnauthenticated, op, "login required")
	}

	var filenames []string
	if err := s.transact(ctx, op, func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		users := db.NewUserRepository(repo)

		user, err := users.GetByUsername(ctx, actor)
		if err != nil {
			return err
		}
		if user == nil {
			return errf(KindNotFound, op, "user %s does not exist", actor)
		}

		postFiles, err := db.NewPostRepository(repo).FilenamesByOwner(ctx, actor)
		if err != nil {
			return err
		}
		filenames = append(postFiles, user.Filename)

		return users.Delete(ctx, actor)
	}); err != nil {
		return err
	}

	for _, name := range filenames {
		s.uploads.Remove(name)
		s.logCleanup("account deleted", name)
	}
	return s.sessions.Destroy(ctx, token)
}
