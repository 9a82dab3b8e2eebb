// Package filekv persists each key in its own file under a directory, so a session
// survives process restarts without any external service.
package filekv

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/sahayak/core"
)

const fileExt = ".json"

var keyRegex = regexp.MustCompile(`^[\w.-]+$`)

type Store struct {
	dir   string
	mutex sync.RWMutex
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

// New opens (and creates when missing) the storage directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, core.NewArgumentError("file storage needs a path")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) (string, error) {
	if !keyRegex.MatchString(key) {
		return "", core.NewArgumentError("invalid storage key: " + key)
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "reading %s", key)
	}
	return data, nil
}

// Set replaces the value atomically: readers see either the old or the new value, never a torn write.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return errors.Wrapf(err, "writing %s", key)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %s", key)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "syncing %s", key)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", key)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "writing %s", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "deleting %s", key)
	}
	return nil
}
