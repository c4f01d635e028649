//go:build !linux

package efivars

// Inode flags only exist on Linux
func getInodeFlags(fd uintptr) (inodeFlags, error) {
	return 0, nil
}

func setInodeFlags(fd uintptr, flags inodeFlags) error {
	return nil
}

func ignoreUnsupported(err error) error {
	return err
}
