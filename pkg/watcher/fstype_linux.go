//go:build linux

package watcher

import "golang.org/x/sys/unix"

// Superblock magic numbers from statfs(2).
const (
	magicNFS   = 0x6969
	magicSMB   = 0x517b
	magicCIFS  = 0xff534d42
	magicSMB2  = 0xfe534d42
	magicFUSE  = 0x65735546
	magicV9FS  = 0x01021997 // WSL and VM shared folders
	magicCEPH  = 0x00c36400
	magicAFS   = 0x5346414f
	magicCODA  = 0x73757245
	magicLUSTR = 0x0bd00bd0
)

func statFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	return classifyMagic(int64(st.Type))
}

func classifyMagic(magic int64) FilesystemType {
	switch uint32(magic) {
	case magicNFS, magicCEPH, magicAFS, magicCODA, magicLUSTR, magicV9FS:
		return FSTypeNFS
	case magicSMB, magicCIFS, magicSMB2:
		return FSTypeSMB
	case magicFUSE:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
