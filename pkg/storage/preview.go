package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var previewableExt = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

// Previewable reports whether the artifact is an image that Preview can render.
func Previewable(ref ArtifactRef) bool {
	_, ok := previewableExt[strings.ToLower(filepath.Ext(string(ref)))]
	return ok
}

// Preview renders the artifact as a JPEG fitted inside width x height.
func (s *LocalStorage) Preview(ref ArtifactRef, width, height int) ([]byte, error) {
	if !Previewable(ref) {
		return nil, fmt.Errorf("artifact %s is not an image", ref)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", width, height)
	}
	path, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", ref, err)
	}
	thumb := imaging.Fit(img, width, height, imaging.Lanczos)

	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
