// Package uploads persists user-submitted files under a single root
// directory, which is treated as a trust boundary: no stored name may
// resolve to a path outside it.
package uploads

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/snapfeed/snapfeed/pkg/logging"
)

var (
	// ErrNoFile is returned by Save when no usable file was supplied
	ErrNoFile = errors.New("uploads: no file supplied")
	// ErrNotFound is returned by Resolve when the name does not map to a
	// regular file inside the root
	ErrNotFound = errors.New("uploads: file not found")
)

// Store persists files under a root directory
type Store struct {
	root   string
	logger *zap.Logger
}

// New creates a store rooted at dir
func New(dir string) *Store {
	return &Store{
		root:   dir,
		logger: logging.WithComponent("uploads"),
	}
}

// Save writes the stream to a freshly generated basename inside the
// root, preserving the lower-cased extension of originalName, and
// returns the basename. Callers never see a full path.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	if r == nil || originalName == "" {
		return "", ErrNoFile
	}

	id := uuid.New()
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	basename := hex.EncodeToString(id[:]) + ext

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload root: %w", err)
	}

	dest, err := s.contain(basename)
	if err != nil {
		return "", err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return basename, nil
}

// Remove deletes a stored file by basename. Removal is advisory
// cleanup: a missing file is ignored and other errors are logged, never
// returned.
func (s *Store) Remove(name string) {
	if name == "" {
		return
	}
	target, err := s.contain(name)
	if err != nil {
		s.logger.Warn("Refusing to remove file outside upload root",
			zap.String("name", name))
		return
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Could not remove upload",
			zap.String("name", name), zap.Error(err))
	}
}

// Resolve returns the absolute path for a stored basename, or
// ErrNotFound if the name escapes the root, does not exist, or is not a
// regular file.
func (s *Store) Resolve(name string) (string, error) {
	target, err := s.contain(name)
	if err != nil {
		return "", ErrNotFound
	}
	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return target, nil
}

// contain resolves name against the root and verifies the result stays
// strictly inside it, rejecting absolute names and ../ traversal.
func (s *Store) contain(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("uploads: invalid name %q", name)
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(root, name))
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("uploads: name %q escapes upload root", name)
	}
	return target, nil
}
