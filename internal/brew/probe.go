package brew

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
)

// isHidden reports whether a directory entry name is a dotfile.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ListEntries returns the immediate children of root, skipping dotfiles and
// symlinks. Homebrew keeps symlinked aliases (e.g. python -> python@3.12)
// next to real package folders; only the real folders are packages.
func ListEntries(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &LoadError{Kind: AccessError, Path: root, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if isHidden(entry.Name()) {
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// IsDirectory reports whether path is a directory. Symlinks are not followed.
func IsDirectory(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CreationTime returns the creation (birth) time of path, or the zero time
// if it cannot be determined.
func CreationTime(path string) time.Time {
	info, err := os.Lstat(path)
	if err != nil {
		return time.Time{}
	}
	return creationTime(path, info)
}

// RecursiveSize sums the sizes of all regular files below path without
// following symlinks. It returns nil when path cannot be walked or ctx is
// cancelled before the walk finishes.
func RecursiveSize(ctx context.Context, path string) *int64 {
	if _, err := os.Lstat(path); err != nil {
		return nil
	}

	var total atomic.Int64
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, path, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable subtrees are skipped; the size stays best-effort.
			if d != nil && d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total.Add(info.Size())
		return nil
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			logger().Debug("size walk failed", "path", path, "error", err)
		}
		return nil
	}

	size := total.Load()
	return &size
}
