// Package dataset is the registry for uploaded files: it stores the
// bytes on disk, keeps the metadata rows current and enforces
// ownership before any analysis touches a file.
package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"datalens/domain/core"
	"datalens/internal/config"
	"datalens/internal/errors"
)

// LocalFileStorage writes uploads under a single directory with
// generated names so original filenames never hit the filesystem.
type LocalFileStorage struct {
	dir        string
	maxSize    int64
	extensions map[string]struct{}
}

// NewLocalFileStorage creates the storage directory if needed
func NewLocalFileStorage(cfg config.UploadConfig) (*LocalFileStorage, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	extensions := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}
	return &LocalFileStorage{
		dir:        cfg.Dir,
		maxSize:    cfg.MaxFileSize,
		extensions: extensions,
	}, nil
}

// AllowedExtensions returns the accepted extensions in no particular order
func (s *LocalFileStorage) AllowedExtensions() []string {
	out := make([]string, 0, len(s.extensions))
	for ext := range s.extensions {
		out = append(out, ext)
	}
	return out
}

// MaxFileSize returns the upload size cap in bytes
func (s *LocalFileStorage) MaxFileSize() int64 {
	return s.maxSize
}

// Validate checks the original filename's extension against the
// allow-list and the declared size against the cap
func (s *LocalFileStorage) Validate(originalFilename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if _, ok := s.extensions[ext]; !ok {
		return errors.InvalidFileType(s.AllowedExtensions())
	}
	if size > s.maxSize {
		return errors.FileTooLarge(s.maxSize)
	}
	return nil
}

// Store streams the upload to disk under a generated name, enforcing
// the size cap on the actual bytes rather than trusting the declared
// length. Returns the stored filename and absolute path.
func (s *LocalFileStorage) Store(originalFilename string, r io.Reader) (string, string, int64, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if _, ok := s.extensions[ext]; !ok {
		return "", "", 0, errors.InvalidFileType(s.AllowedExtensions())
	}

	name := core.NewID().String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", "", 0, fmt.Errorf("write upload file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", "", 0, errors.FileTooLarge(s.maxSize)
	}

	return name, path, written, nil
}

// Delete removes a stored file; a missing file is not an error
func (s *LocalFileStorage) Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
