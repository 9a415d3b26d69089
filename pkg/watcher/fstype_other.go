//go:build !linux

package watcher

// Without statfs magic numbers every filesystem is treated as local; set
// CANDLE_FORCE_POLL=1 for network mounts.
func statFilesystemType(string) FilesystemType {
	return FSTypeLocal
}
