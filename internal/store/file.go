// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/gofrs/flock"

	"github.com/staranto/itemctl/internal/item"
)

// lockRetry is how often a contended lock is polled.
const lockRetry = 10 * time.Millisecond

// FileStore keeps the record set in a single local file.
type FileStore struct {
	path string
	perm fs.FileMode
}

// FileOption customizes a FileStore.
type FileOption func(*FileStore)

// WithPerm sets the mode of the committed file. Defaults to 0o644.
func WithPerm(perm fs.FileMode) FileOption {
	return func(s *FileStore) { s.perm = perm }
}

// NewFileStore returns a store backed by path. Nothing is touched on disk
// until the first Load or Replace.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{
		path: path,
		perm: 0o644, //nolint:mnd
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) String() string {
	return s.path
}

// LockPath returns the sidecar file that carries the advisory write lock.
func (s *FileStore) LockPath() string {
	return s.path + ".lock"
}

// Lock takes an exclusive flock on the sidecar lock file. The lock is held
// per open file, so two FileStores on one path exclude each other even inside
// a single process.
func (s *FileStore) Lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lock %s: %w: %w", s.path, item.ErrIO, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("create %s: %w: %w", dir, item.ErrIO, err)
	}

	fl := flock.New(s.LockPath())
	ok, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w: %w", s.path, item.ErrIO, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: %w: not acquired", s.path, item.ErrIO)
	}
	log.Debugf("locked %s", fl.Path())

	return func() {
		if err := fl.Unlock(); err != nil {
			log.WithError(err).Warnf("failed to unlock %s", fl.Path())
		}
	}, nil
}

// Load reads and decodes the whole file.
func (s *FileStore) Load(ctx context.Context) ([]item.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", s.path, item.ErrIO, err)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", s.path, item.ErrIO, err)
	}

	return decode(raw, s.path)
}

// Replace commits items by writing a temp file next to the target and
// renaming it over the target. The rename is the commit point; on any earlier
// failure the temp file is removed and the target is untouched.
func (s *FileStore) Replace(ctx context.Context, items []item.Item) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w: %w", s.path, item.ErrIO, err)
	}

	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w: %w", s.path, item.ErrIO, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("create %s: %w: %w", dir, item.ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w: %w", s.path, item.ErrIO, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rmErr := os.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
				log.WithError(rmErr).Warnf("failed to remove temp file %s", tmpName)
			}
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w: %w", tmpName, item.ErrIO, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w: %w", tmpName, item.ErrIO, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w: %w", tmpName, item.ErrIO, err)
	}
	if err = os.Chmod(tmpName, s.perm); err != nil {
		return fmt.Errorf("chmod %s: %w: %w", tmpName, item.ErrIO, err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("commit %s: %w: %w", s.path, item.ErrIO, err)
	}

	log.Debugf("committed %d records to %s", len(items), s.path)
	return nil
}
