//go:build linux

package brew

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// creationTime asks statx(2) for the birth time. Filesystems that do not
// record it (or kernels older than 4.11) fall back to the modification time.
func creationTime(path string, info os.FileInfo) time.Time {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil || stx.Mask&unix.STATX_BTIME == 0 {
		return info.ModTime()
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
}
