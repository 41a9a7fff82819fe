// Package staging manages the temporary directories splice renders segment
// parts into. A render removes its own directory when it finishes; the
// helpers here sweep directories left behind by interrupted runs.
package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuesplice/internal/logging"
)

// PartsPrefix names the per-render work directories created beside outputs.
const PartsPrefix = ".cuesplice-parts-"

// CleanResult contains the outcome of a stale directory cleanup operation.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes work directories in dir older than maxAge. A missing
// dir is not an error.
func CleanStale(ctx context.Context, dir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	logger = logging.NewComponentLogger(logger, "staging")

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), PartsPrefix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnEvent(logger, "failed to remove stale render directory", "staging_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale render directory",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}
	return result
}

// DirInfo contains metadata about a work directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListDirectories returns the work directories in dir.
func ListDirectories(dir string) ([]DirInfo, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), PartsPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		size, _ := dirSize(path)
		dirs = append(dirs, DirInfo{Name: entry.Name(), Path: path, ModTime: info.ModTime(), Size: size})
	}
	return dirs, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size, err
}
