package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

// Storage keeps uploaded documents as plain files under basePath so the PDF
// engine can open them by path.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: abs}, nil
}

// Save writes data to key atomically: readers never see a partial file.
func (s *Storage) Save(_ context.Context, key string, data io.Reader) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("commit file: %w", err)
	}
	return nil
}

func (s *Storage) LocalPath(_ context.Context, key string) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}
	return path, nil
}

func (s *Storage) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", domain.WrapError(domain.ErrInvalidInput, "storage key", fmt.Errorf("%q is not a plain file name", key))
	}
	return filepath.Join(s.basePath, key), nil
}
