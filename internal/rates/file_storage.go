package rates

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"currencyconverter/internal/apperrors"
)

var _ Storage = (*FileStorage)(nil)

// FileStorage keeps the snapshot in a flat JSON file.
type FileStorage struct {
	fs   afero.Fs
	path string
}

// NewFileStorage creates a FileStorage on the OS filesystem.
func NewFileStorage(path string) *FileStorage {
	return NewFileStorageFS(afero.NewOsFs(), path)
}

// NewFileStorageFS creates a FileStorage on the given filesystem.
func NewFileStorageFS(fs afero.Fs, path string) *FileStorage {
	return &FileStorage{fs: fs, path: path}
}

// Location returns the cache file path.
func (s *FileStorage) Location() string { return s.path }

// Check verifies the cache file exists and can be opened for reading.
func (s *FileStorage) Check(_ context.Context) error {
	info, err := s.fs.Stat(s.path)
	if err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "rates cache %s is not accessible", s.path)
	}
	if info.IsDir() {
		return apperrors.New(apperrors.KindStorage, "rates cache %s is a directory", s.path)
	}
	f, err := s.fs.Open(s.path)
	if err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "rates cache %s is not readable", s.path)
	}
	_ = f.Close()
	return nil
}

// Load reads and parses the whole cache file.
func (s *FileStorage) Load(_ context.Context) (*Snapshot, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.KindStorage, ErrNoSnapshot, "rates cache %s", s.path)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "read rates cache %s", s.path)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "parse rates cache %s", s.path)
	}
	return snap, nil
}

// Save writes the snapshot to a temp file next to the target and renames it
// over the target.
func (s *FileStorage) Save(_ context.Context, snap *Snapshot) (err error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "encode snapshot")
	}

	dir, name := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := afero.TempFile(s.fs, dir, "."+name+".tmp-*")
	if err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "create temp file for %s", s.path)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return apperrors.Wrap(apperrors.KindStorage, err, "write %s", tmpName)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return apperrors.Wrap(apperrors.KindStorage, err, "sync %s", tmpName)
	}
	if err = tmp.Close(); err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "close %s", tmpName)
	}
	if err = s.fs.Rename(tmpName, s.path); err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "replace %s", s.path)
	}
	return nil
}
