package efivars

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Determines whether the operating system has been booted in UEFI mode
func Available(dir string) (bool, error) {

	// Determine whether the firmware directory that hosts efivarfs exists
	_, err := os.Stat(filepath.Dir(dir))
	notExist := errors.Is(err, os.ErrNotExist)

	// If the query failed then propagate the error
	if err != nil && !notExist {
		return false, err
	} else {
		return !notExist, nil
	}
}

// Returns the store for the variables of the running system
func NewSystemStore(dir string) (Store, error) {

	// efivarfs is usually mounted by the init system, but not always
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("efivarfs is not available at %s: %v", dir, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("efivarfs is not available at %s: not a directory", dir)
	}

	return NewEfivarfsStore(dir), nil
}
