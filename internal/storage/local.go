package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LocalStorage implements Storage for a directory on a filesystem.
type LocalStorage struct {
	fs  afero.Fs
	dir string
}

// NewLocalStorage creates a storage provider for a directory on the OS filesystem.
func NewLocalStorage(dir string) *LocalStorage {
	return NewLocalStorageFs(afero.NewOsFs(), dir)
}

// NewLocalStorageFs creates a storage provider backed by an arbitrary afero filesystem.
func NewLocalStorageFs(fs afero.Fs, dir string) *LocalStorage {
	return &LocalStorage{
		fs:  fs,
		dir: dir,
	}
}

// Dir returns the directory being managed.
func (l *LocalStorage) Dir() string {
	return l.dir
}

// List implements Storage.List. Subdirectories are not descended into.
func (l *LocalStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(l.fs, l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory %s: %w", l.dir, err)
	}

	objects := make([]ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		objects = append(objects, ObjectInfo{
			Key:          entry.Name(),
			Size:         entry.Size(),
			LastModified: entry.ModTime(),
		})
	}

	return objects, nil
}

// Delete implements Storage.Delete with a direct remove call.
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Keys are bare file names; anything else could escape the directory.
	if key == "" || filepath.Base(key) != key || key == "." || key == ".." {
		return fmt.Errorf("invalid backup key %q", key)
	}

	p := filepath.Join(l.dir, key)
	if err := l.fs.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}

	return nil
}
