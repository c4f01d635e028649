package efivars

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

func getInodeFlags(fd uintptr) (inodeFlags, error) {
	flags, err := unix.IoctlGetInt(int(fd), unix.FS_IOC_GETFLAGS)
	return inodeFlags(flags), err
}

func setInodeFlags(fd uintptr, flags inodeFlags) error {
	return unix.IoctlSetPointerInt(int(fd), unix.FS_IOC_SETFLAGS, int(flags))
}

// Filesystems without inode flags answer with ENOTTY
func ignoreUnsupported(err error) error {
	if errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
