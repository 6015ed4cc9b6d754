// Package service implements the data-mutation core: social graph
// operations (likes, comments, posts, follows) and the account
// lifecycle. Every mutation runs inside a single database transaction,
// validates its input and the caller's authority before writing, and
// reports failures as classified errors.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/snapfeed/snapfeed/internal/db"
	"github.com/snapfeed/snapfeed/internal/session"
	"github.com/snapfeed/snapfeed/internal/uploads"
	"github.com/snapfeed/snapfeed/pkg/logging"
	"github.com/snapfeed/snapfeed/pkg/telemetry"
)

// Service holds the core's collaborators. The actor (logged-in
// username) is an explicit parameter on every operation, never ambient
// state.
type Service struct {
	db       *db.DB
	uploads  *uploads.Store
	sessions session.Store
	logger   *zap.Logger
}

// New creates the service
func New(database *db.DB, uploadStore *uploads.Store, sessions session.Store) *Service {
	return &Service{
		db:       database,
		uploads:  uploadStore,
		sessions: sessions,
		logger:   logging.WithComponent("service"),
	}
}

// Uploads exposes the upload store for the file-serving boundary
func (s *Service) Uploads() *uploads.Store {
	return s.uploads
}

// Sessions exposes the session store for the gate
func (s *Service) Sessions() session.Store {
	return s.sessions
}

// Repository returns read-side repositories over the live connection
func (s *Service) Repository() *db.Repository {
	return db.NewRepository(s.db.DB)
}

// transact runs fn inside one transaction, traced under the operation name
func (s *Service) transact(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	ctx, span := telemetry.StartSpan(ctx, op)
	defer span.End()
	return s.db.WithContext(ctx).Transaction(fn)
}

// insertErr maps a store-level duplicate-key violation to Conflict.
// The explicit pre-checks produce the friendly classification; the
// unique constraint is the correctness backstop under concurrency.
func insertErr(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errf(KindConflict, op, "already exists")
	}
	return err
}
