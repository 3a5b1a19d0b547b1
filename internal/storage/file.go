package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileStore keeps one <key>.json file per key under dir. Writes go through a
// temp file and rename so readers never see a partial document.
type FileStore struct {
	dir  string
	mu   sync.Mutex
	subs subscribers
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileStore) Get(key string) ([]byte, bool, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (f *FileStore) Set(key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		f.mu.Unlock()
		return err
	}
	_, werr := tmp.Write(value)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmp.Name(), p)
	}
	if werr != nil {
		os.Remove(tmp.Name())
	}
	f.mu.Unlock()

	if werr != nil {
		return werr
	}
	f.subs.notify(key, copyBytes(value))
	return nil
}

func (f *FileStore) Delete(key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	err = os.Remove(p)
	f.mu.Unlock()

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	f.subs.notify(key, nil)
	return nil
}

func (f *FileStore) Subscribe(key string, fn func(value []byte)) func() {
	return f.subs.add(key, fn)
}
