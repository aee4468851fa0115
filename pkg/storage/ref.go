package storage

import (
	"fmt"
	"path"
	"strings"
)

// ArtifactRef identifies a stored artifact as "<dir>/<name>". Rows persist the reference, never
// an absolute path, so the artifact root can move with the database file.
type ArtifactRef string

// NewRef builds the reference for a stored file name.
func NewRef(category Category, name string) ArtifactRef {
	return ArtifactRef(path.Join(category.Dir(), name))
}

// IsZero reports an unset reference.
func (r ArtifactRef) IsZero() bool {
	return strings.TrimSpace(string(r)) == ""
}

func (r ArtifactRef) String() string {
	return string(r)
}

// Category returns the category implied by the directory component.
func (r ArtifactRef) Category() Category {
	c, _, err := r.Split()
	if err != nil {
		return ""
	}
	return c
}

// Split validates the reference and returns its category and file name.
func (r ArtifactRef) Split() (Category, string, error) {
	raw := strings.ReplaceAll(string(r), "\\", "/")
	dir, name := path.Split(path.Clean(raw))
	dir = strings.TrimSuffix(dir, "/")
	if name == "" || name == "." || name == ".." {
		return "", "", fmt.Errorf("invalid artifact reference %q", string(r))
	}
	for _, c := range []Category{CategoryPhoto, CategoryScan} {
		if dir == c.Dir() {
			return c, name, nil
		}
	}
	return "", "", fmt.Errorf("invalid artifact reference %q", string(r))
}

// Ptr returns a pointer to the reference or nil when unset, for nullable columns.
func (r ArtifactRef) Ptr() *ArtifactRef {
	if r.IsZero() {
		return nil
	}
	v := r
	return &v
}

// Deref returns the referenced value or the zero reference.
func Deref(r *ArtifactRef) ArtifactRef {
	if r == nil {
		return ""
	}
	return *r
}
