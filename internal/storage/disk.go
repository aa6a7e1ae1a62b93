package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore writes attachments under a base directory, one file per
// reference. References are relative paths so the base dir can move
// between environments.
type DiskStore struct {
	baseDir string
}

func NewDiskStore(baseDir string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

func (s *DiskStore) Save(_ context.Context, up Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	ref := filepath.Join("leave-attachments", uuid.NewString()+ext)

	path := filepath.Join(s.baseDir, ref)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, up.Content); err != nil {
		os.Remove(path)
		return "", err
	}

	return ref, nil
}

func (s *DiskStore) Delete(_ context.Context, ref string) error {
	// Refuse references escaping the base dir.
	clean := filepath.Clean(ref)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid attachment reference: %s", ref)
	}
	return os.Remove(filepath.Join(s.baseDir, clean))
}
