//go:build darwin

package brew

import (
	"os"
	"syscall"
	"time"
)

// creationTime uses the birth time recorded by APFS/HFS+.
func creationTime(_ string, info os.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
}
