package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

// Category selects the artifact directory and filename prefix.
type Category string

const (
	CategoryPhoto Category = "photo"
	CategoryScan  Category = "scan"
)

// Dir returns the directory holding artifacts of the category.
func (c Category) Dir() string {
	switch c {
	case CategoryPhoto:
		return "photos"
	case CategoryScan:
		return "scans"
	default:
		return ""
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c.Dir() != ""
}

// LocalStorage keeps artifacts on disk under a root directory. Stored references are
// slash-separated paths relative to the root, e.g. "photos/photo_<hex>.jpg".
type LocalStorage struct {
	root    string
	maxSize int64
}

// NewLocalStorage ensures the category directories exist and returns a handle.
func NewLocalStorage(root string, maxSize int64) (*LocalStorage, error) {
	if root == "" {
		root = "."
	}
	for _, c := range []Category{CategoryPhoto, CategoryScan} {
		if err := os.MkdirAll(filepath.Join(root, c.Dir()), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", c.Dir(), err)
		}
	}
	return &LocalStorage{root: root, maxSize: maxSize}, nil
}

// Store copies sourcePath into the category directory under a new collision-free name.
// Identical content stored twice yields two distinct artifacts.
func (s *LocalStorage) Store(ctx context.Context, sourcePath string, category Category) (ArtifactRef, error) {
	if !category.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown artifact category %q", category))
	}
	if err := ctx.Err(); err != nil {
		return "", writeError(err, "artifact store cancelled")
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", writeError(err, "failed to open artifact source")
	}
	defer src.Close() //nolint:errcheck

	info, err := src.Stat()
	if err != nil {
		return "", writeError(err, "failed to stat artifact source")
	}
	if info.IsDir() {
		return "", writeError(fmt.Errorf("%s is a directory", sourcePath), "artifact source is not a file")
	}
	if s.maxSize > 0 && info.Size() > s.maxSize {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("artifact exceeds %d bytes limit", s.maxSize))
	}

	dir := filepath.Join(s.root, category.Dir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", writeError(err, "failed to prepare artifact directory")
	}

	name := GenerateName(category, sourcePath)
	target := filepath.Join(dir, name)
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", writeError(err, "failed to create artifact file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()       //nolint:errcheck
		os.Remove(target) //nolint:errcheck
		return "", writeError(err, "failed to copy artifact")
	}
	if err := dst.Close(); err != nil {
		os.Remove(target) //nolint:errcheck
		return "", writeError(err, "failed to flush artifact")
	}

	return NewRef(category, name), nil
}

// Remove deletes the artifact if present. A missing file is not an error.
func (s *LocalStorage) Remove(ref ArtifactRef) error {
	if ref.IsZero() {
		return nil
	}
	path, err := s.Resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete artifact %s: %w", ref, err)
	}
	return nil
}

// Exists reports whether the referenced file is present on disk.
func (s *LocalStorage) Exists(ref ArtifactRef) bool {
	if ref.IsZero() {
		return false
	}
	path, err := s.Resolve(ref)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Open returns a read-only handle for the stored artifact.
func (s *LocalStorage) Open(ref ArtifactRef) (*os.File, error) {
	path, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return file, nil
}

// Resolve maps a reference onto its filesystem path, refusing anything outside the category dirs.
func (s *LocalStorage) Resolve(ref ArtifactRef) (string, error) {
	category, name, err := ref.Split()
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, category.Dir(), name), nil
}

// Root exposes the artifact root directory.
func (s *LocalStorage) Root() string {
	return s.root
}

// GenerateName returns "{category}_{random-hex}{ext}" using the source extension.
func GenerateName(category Category, sourcePath string) string {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s%s", category, hex, ext)
}

func writeError(err error, message string) error {
	return appErrors.Rewrap(appErrors.ErrArtifactWrite, err, message)
}
