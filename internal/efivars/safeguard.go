package efivars

import (
	"errors"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

const fsImmutableFlag = 0x00000010

type inodeFlags uint32

func (f inodeFlags) IsSet(flags inodeFlags) bool {
	return f&flags != 0
}

func (f inodeFlags) Clear(flags inodeFlags) inodeFlags {
	return f &^ flags
}

func (f inodeFlags) Set(flags inodeFlags) inodeFlags {
	return f | flags
}

// safeguard holds an open variable file so its immutable flag can be lifted and restored
type safeguard struct {
	*os.File
	flags inodeFlags
}

// Opens the variable file and reads its inode flags.
// Returns nil when the file does not exist yet or is not backed by the operating system.
func openSafeguard(fs afero.Fs, filePath string) (*safeguard, error) {

	file, err := fs.OpenFile(filePath, os.O_RDONLY, 0o644)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	osFile, ok := resolveOsFile(file)
	if !ok {
		return nil, file.Close()
	}

	guard := &safeguard{File: osFile}
	err = withFileDescriptor(osFile, func(fd uintptr) (err error) {
		guard.flags, err = getInodeFlags(fd)
		return
	})
	if err != nil {
		return nil, multierr.Append(err, osFile.Close())
	}
	return guard, nil
}

func resolveOsFile(file afero.File) (*os.File, bool) {

	// Unwrap afero.BasePathFile instances
	for {
		if baseFile, ok := file.(*afero.BasePathFile); ok {
			file = baseFile.File
			continue
		}
		break
	}

	osFile, ok := file.(*os.File)
	return osFile, ok
}

func withFileDescriptor(file *os.File, cb func(fd uintptr) error) (err error) {
	rawConn, err := file.SyscallConn()
	if err != nil {
		return err
	}

	controlErr := rawConn.Control(func(fd uintptr) {
		err = ignoreUnsupported(cb(fd))
	})
	return multierr.Append(err, controlErr)
}

func (g *safeguard) disable() (wasProtected bool, err error) {
	err = withFileDescriptor(g.File, func(fd uintptr) error {
		wasProtected = g.flags.IsSet(fsImmutableFlag)
		if !wasProtected {
			return nil
		}
		g.flags = g.flags.Clear(fsImmutableFlag)
		return setInodeFlags(fd, g.flags)
	})
	return
}

func (g *safeguard) enable() error {
	return withFileDescriptor(g.File, func(fd uintptr) error {
		g.flags = g.flags.Set(fsImmutableFlag)
		return setInodeFlags(fd, g.flags)
	})
}
