package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageStore is the flat directory holding incident images extracted from
// claim PDFs. It is filename-keyed and append-only: a file is written at
// most once per distinct (document, ordinal, content) triple and never
// re-fetched if the path already exists. There is no teardown; entries
// persist across invocations as a best-effort cache.
type ImageStore struct {
	dir string
}

// NewImageStore creates an image store rooted at dir
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Dir returns the store's root directory
func (s *ImageStore) Dir() string {
	return s.dir
}

// Path derives the storage path for one embedded image. The name is a pure
// function of document ID, ordinal and raw bytes, so re-deriving it for an
// already-stored image always resolves to the same file.
func (s *ImageStore) Path(docID string, ordinal int, data []byte, fileType string) string {
	ext := strings.ToLower(strings.TrimPrefix(fileType, "."))
	if ext == "" {
		ext = "png"
	}
	name := fmt.Sprintf("%s_incident_image_%d_%s.%s", docID, ordinal, ContentHash(data), ext)
	return filepath.Join(s.dir, name)
}

// Put persists one embedded image iff it is not already stored, and returns
// its path either way. Two concurrent callers extracting the same document
// may both decide to write; both write identical bytes to the same path, so
// the race is wasteful but never corrupting.
func (s *ImageStore) Put(docID string, ordinal int, data []byte, fileType string) (string, error) {
	path := s.Path(docID, ordinal, data, fileType)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return path, nil
}
