package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	commissionapp "github.com/ceemowww/comtrack2/internal/application/commission"
)

// LocalReportArchive writes report files below a directory
type LocalReportArchive struct {
	dir string
}

var _ commissionapp.ReportArchive = (*LocalReportArchive)(nil)

// NewLocalReportArchive creates dir if needed and returns an archive rooted there
func NewLocalReportArchive(dir string) (*LocalReportArchive, error) {
	if dir == "" {
		return nil, errors.New("archive directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", abs, err)
	}
	return &LocalReportArchive{dir: abs}, nil
}

// Dir returns the absolute archive root
func (a *LocalReportArchive) Dir() string {
	return a.dir
}

// Put writes body to dir/key and returns its file:// location. Keys that
// would escape the root are rejected.
func (a *LocalReportArchive) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if key == "" {
		return "", errors.New("archive key is required")
	}
	target := filepath.Join(a.dir, filepath.FromSlash(key))
	if target != a.dir && !strings.HasPrefix(target, a.dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive key %q escapes %s", key, a.dir)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return "file://" + filepath.ToSlash(target), nil
}
