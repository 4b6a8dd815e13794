package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abaevpavel/pdfer-base/config"
)

// StaticPrefix is the URL path local artifacts are served under.
const StaticPrefix = "/static"

// Storage keeps generated artifacts and hands out links to them.
type Storage interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

// NewStorage returns the Storage selected by cfg.Storage.Driver.
func NewStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageLocal:
		return NewLocalStorage(&cfg.Output), nil
	case config.StorageMinio:
		svc, err := NewMinioStorage(&cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := svc.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return svc, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// LocalStorage writes artifacts to a directory served by this process.
type LocalStorage struct {
	dir     string
	rootURL string
}

func NewLocalStorage(cfg *config.OutputConfig) *LocalStorage {
	return &LocalStorage{
		dir:     cfg.OutputDir,
		rootURL: strings.TrimRight(cfg.RootURL, "/"),
	}
}

// Put writes data to the output directory and returns its public URL
func (s *LocalStorage) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return s.URL(name), nil
}

// Delete removes an artifact; a missing file is not an error.
func (s *LocalStorage) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

// URL returns the link for an artifact name
func (s *LocalStorage) URL(name string) string {
	return s.rootURL + StaticPrefix + "/" + name
}

func (s *LocalStorage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
