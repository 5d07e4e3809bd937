// Package filestore implements core.FileStore on local disk and Backblaze B2.
package filestore

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
)

// LocalStore writes files under a directory served at BaseURL (development).
type LocalStore struct {
	dir     string
	baseURL string
}

var _ core.FileStore = (*LocalStore)(nil)

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir returns the root directory, for serving the files.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", errors.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ string) (core.StoredFile, error) {
	name, err := s.path(key)
	if err != nil {
		return core.StoredFile{}, err
	}
	if err = os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return core.StoredFile{}, errors.Wrap(err, "creating directory")
	}

	f, err := os.Create(name)
	if err != nil {
		return core.StoredFile{}, errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return core.StoredFile{}, errors.Wrap(err, "writing file")
	}
	if err = f.Close(); err != nil {
		return core.StoredFile{}, errors.Wrap(err, "closing file")
	}
	return core.StoredFile{Key: key, URL: s.baseURL + "/" + strings.TrimLeft(key, "/")}, nil
}

// Delete removes the file; a missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	name, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(name); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}
