package attach

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DirStorage keeps attachments in a local directory and links them with
// file:// URLs
type DirStorage struct {
	root string
}

var _ BlobStore = (*DirStorage)(nil)

// NewDirStorage creates a store rooted at dir
func NewDirStorage(dir string) (*DirStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve attachments dir: %w", err)
	}
	return &DirStorage{root: abs}, nil
}

func (s *DirStorage) Put(ctx context.Context, objectPath string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dest, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("object already exists: %s", objectPath)
	}
	if err := os.WriteFile(dest, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *DirStorage) PublicURL(objectPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(s.root, filepath.FromSlash(objectPath)))}
	return u.String()
}

// resolve maps an object path into the root, rejecting escapes
func (s *DirStorage) resolve(objectPath string) (string, error) {
	dest := filepath.Join(s.root, filepath.FromSlash(objectPath))
	rel, err := filepath.Rel(s.root, dest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object path: %s", objectPath)
	}
	return dest, nil
}
