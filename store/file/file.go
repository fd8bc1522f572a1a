package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gotomicro/ekit/bean/option"

	"eserial/internal/errs"
)

const defaultExt = ".bin"

var errBadKey = errors.New("store: key must be a plain file name")

// Store keeps one file per key under a directory.
type Store struct {
	dir  string
	ext  string
	perm fs.FileMode
}

func NewStore(dir string, opts ...option.Option[Store]) (*Store, error) {
	s := &Store{dir: dir, ext: defaultExt, perm: 0o644}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return s, nil
}

// StoreWithExt sets the file name suffix, ".bin" by default.
func StoreWithExt(ext string) option.Option[Store] {
	return func(s *Store) {
		s.ext = ext
	}
}

func StoreWithPerm(perm fs.FileMode) option.Option[Store] {
	return func(s *Store) {
		s.perm = perm
	}
}

// Path returns the file that backs key.
func (s *Store) Path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", errBadKey, key)
	}
	return filepath.Join(s.dir, key+s.ext), nil
}

// Put replaces the file through a rename so readers never see half a value.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), s.perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.NotFoundErr(key)
	}
	return data, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
