// Package artifact persists trained ranking bundles and serves the active
// one to the inference path.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/pictodeck/ranker/internal/domain/bundle"
	"github.com/pictodeck/ranker/pkg/logger"
	"github.com/pictodeck/ranker/pkg/metrics"
)

// Store keeps the active bundle in memory and mirrors it to disk. Publish
// swaps the in-memory pointer only after the file is durably in place, so
// readers always observe either the previous complete bundle or the new one.
type Store struct {
	path    string
	current atomic.Pointer[bundle.Bundle]
	logger  logger.Logger
}

// NewStore creates a bundle store persisting at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: logger.Named("artifact"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Publish atomically replaces the active bundle. The bundle is written to a
// temporary file in the destination directory and renamed over the target,
// so a crash mid-write never leaves a partial artifact behind.
func (s *Store) Publish(ctx context.Context, b *bundle.Bundle) error {
	if b == nil {
		return fmt.Errorf("%w: nil bundle", ErrInvalidBundle)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish artifact: %w", err)
	}

	s.current.Store(b)
	metrics.UpdateBundlePublished(b.TrainedAt)
	s.logger.Info(ctx, "bundle published",
		logger.String("path", s.path),
		logger.Int("bytes", len(data)),
		logger.Any("trained_at", b.TrainedAt))
	return nil
}

// Current returns the active bundle, or ErrNoArtifact when none has been
// published or loaded yet.
func (s *Store) Current() (*bundle.Bundle, error) {
	b := s.current.Load()
	if b == nil {
		return nil, ErrNoArtifact
	}
	return b, nil
}

// Exists reports whether a bundle file is present on disk.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads the bundle file from disk into memory. Missing files return
// ErrNoArtifact so callers can start cold without special-casing.
func (s *Store) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoArtifact
		}
		return fmt.Errorf("read artifact: %w", err)
	}

	var b bundle.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	s.current.Store(&b)
	metrics.UpdateBundlePublished(b.TrainedAt)
	s.logger.Info(ctx, "bundle loaded",
		logger.String("path", s.path),
		logger.Any("trained_at", b.TrainedAt))
	return nil
}
