// Package files stores uploaded task images.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"taskManager/internal/logger"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// URLPrefix is prepended to stored file names in upload responses.
const URLPrefix = "/files/images/"

var (
	ErrInvalidType = errors.New("file type not allowed")
	ErrTooLarge    = errors.New("file too large")
	ErrInvalidName = errors.New("invalid file name")
	ErrNotFound    = errors.New("file not found")
)

// allowedTypes maps each accepted content type to the extension files of
// that type are stored under.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// servedTypes is the reverse of allowedTypes. Stored names with any other
// extension are served as opaque bytes.
var servedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type Storage struct {
	fs      afero.Fs
	dir     string
	maxSize int64
}

func NewStorage(fs afero.Fs, dir string, maxSize int64) (*Storage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %s: %w", dir, err)
	}
	return &Storage{fs: fs, dir: dir, maxSize: maxSize}, nil
}

func (s *Storage) MaxSize() int64 {
	return s.maxSize
}

// Save writes r under a fresh random name whose extension follows
// contentType, and returns the stored name. originalName is only logged.
func (s *Storage) Save(originalName, contentType string, r io.Reader) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidType, contentType)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := s.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()
	if err == nil && n > s.maxSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(path)
		return "", err
	}

	logger.Info("Files: stored upload",
		zap.String("name", name),
		zap.String("original", filepath.Base(originalName)),
		zap.Int64("bytes", n))
	return name, nil
}

func (s *Storage) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Open returns the stored file and its content type.
func (s *Storage) Open(name string) (afero.File, string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, "", err
	}
	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	ct, ok := servedTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		ct = "application/octet-stream"
	}
	return f, ct, nil
}

func (s *Storage) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if _, err := s.fs.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return s.fs.Remove(path)
}
