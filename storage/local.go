package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/smartcollab/utils"
)

const (
	DirAvatars = "avatars"
	DirTasks   = "tasks"
)

// Store keeps uploaded bytes; paths it returns are relative to its root
type Store interface {
	Save(ctx context.Context, dir, originalName string, r io.Reader) (string, int64, error)
	Remove(path string) error
}

// LocalStore writes uploads below a directory on disk
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory when missing
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload root %s", root)
	}
	return &LocalStore{root: root}, nil
}

// Root is the directory uploads are written to
func (s *LocalStore) Root() string {
	return s.root
}

// Save writes r to <root>/<dir>/<uuid>_<name> and returns "<dir>/<uuid>_<name>"
func (s *LocalStore) Save(ctx context.Context, dir, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	dir = utils.SanitizeFileName(dir)
	name := uuid.NewString() + "_" + utils.SanitizeFileName(originalName)

	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", 0, errors.Wrap(err, "create upload directory")
	}

	f, err := os.OpenFile(filepath.Join(target, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, errors.Wrap(err, "create upload file")
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(target, name))
		return "", 0, errors.Wrap(err, "write upload file")
	}

	return dir + "/" + name, size, nil
}

// Remove deletes a stored file; a missing file is not an error
func (s *LocalStore) Remove(path string) error {
	clean := filepath.Clean("/" + strings.TrimLeft(path, "/"))
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove upload file")
	}
	return nil
}
