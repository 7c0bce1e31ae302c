package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localStorage struct {
	root string
}

// NewLocalStorage stores files under root. References are slash separated
// paths relative to root.
func NewLocalStorage(root string) (FileStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &localStorage{root: abs}, nil
}

func (s *localStorage) Put(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		if tempPath != "" {
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(tempFile, contextReader{ctx: ctx, r: r}); err != nil {
		_ = tempFile.Close()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("finalize file: %w", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		return "", fmt.Errorf("move file into place: %w", err)
	}
	tempPath = ""

	return filepath.ToSlash(key), nil
}

func (s *localStorage) Delete(_ context.Context, ref string) error {
	target, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *localStorage) Locate(_ context.Context, ref string) (Location, error) {
	target, err := s.resolve(ref)
	if err != nil {
		return Location{}, err
	}
	if _, err := os.Stat(target); err != nil {
		return Location{}, fmt.Errorf("stat file: %w", err)
	}
	return Location{Path: target}, nil
}

// resolve maps a reference to an absolute path that must stay inside root.
func (s *localStorage) resolve(ref string) (string, error) {
	if ref == "" || filepath.IsAbs(ref) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, ref)
	}
	target := filepath.Join(s.root, filepath.FromSlash(ref))
	relative, err := filepath.Rel(s.root, target)
	if err != nil || relative == "." || strings.HasPrefix(relative, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, ref)
	}
	return target, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
