package efivars

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// Mount point of the Linux efivarfs filesystem
const DefaultEfivarsDir = "/sys/firmware/efi/efivars"

// Length of the "-xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" suffix of efivarfs file names
const guidSuffixLength = 37

// EfivarfsStore reads and writes variables through efivarfs, where each variable is a file named
// "<Name>-<GUID>" whose contents are the 4-byte attributes followed by the variable data
type EfivarfsStore struct {
	fs     afero.Fs
	vendor uuid.UUID

	// efivarfs replaces the whole variable on each write and does not support truncation
	efivarfs bool
}

// Creates a store for the efivarfs filesystem mounted at the specified directory
func NewEfivarfsStore(dir string) *EfivarfsStore {
	store := NewEfivarfsStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
	store.efivarfs = true
	return store
}

// Creates a store over an arbitrary filesystem laid out like efivarfs
func NewEfivarfsStoreFs(fs afero.Fs) *EfivarfsStore {
	return &EfivarfsStore{fs: fs, vendor: GlobalVariable}
}

func (s *EfivarfsStore) path(name string) string {
	return path.Join("/", name+"-"+s.vendor.String())
}

func (s *EfivarfsStore) ListNames() ([]string, error) {

	entries, err := afero.ReadDir(s.fs, "/")
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || len(fileName) <= guidSuffixLength {
			continue
		}

		// Only variables in our vendor namespace are of interest
		split := len(fileName) - guidSuffixLength
		guid, err := uuid.Parse(fileName[split+1:])
		if err != nil || fileName[split] != '-' || guid != s.vendor {
			continue
		}
		names = append(names, fileName[:split])
	}

	sort.Strings(names)
	return names, nil
}

func (s *EfivarfsStore) Read(name string, buf []byte) (int, error) {

	raw, err := afero.ReadFile(s.fs, s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	} else if err != nil {
		return 0, err
	}

	// The first four bytes hold the attributes
	if len(raw) < 4 {
		return 0, fmt.Errorf("%s contains %d bytes of data, it should have at least 4", name, len(raw))
	}

	n := copy(buf, raw[4:])
	if n < len(raw)-4 {
		return n, io.ErrShortBuffer
	}
	return n, nil
}

// Returns the attributes of an existing variable
func (s *EfivarfsStore) Attributes(name string) (Attributes, error) {

	file, err := s.fs.Open(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	} else if err != nil {
		return 0, err
	}
	defer file.Close()

	var attrs uint32
	if err := binary.Read(file, binary.LittleEndian, &attrs); err != nil {
		return 0, fmt.Errorf("failed to read attributes of %s: %v", name, err)
	}
	return Attributes(attrs), nil
}

func (s *EfivarfsStore) Write(name string, attrs Attributes, payload []byte) (err error) {
	filePath := s.path(name)

	// The kernel marks most variables immutable, lift the flag for the duration of the write
	guard, err := openSafeguard(s.fs, filePath)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %v", name, err)
	}
	if guard != nil {
		defer func() { err = multierr.Append(err, guard.Close()) }()

		var wasProtected bool
		if wasProtected, err = guard.disable(); err != nil {
			return fmt.Errorf("failed to make %s writable: %v", name, err)
		}
		if wasProtected {
			defer func() { err = multierr.Append(err, guard.enable()) }()
		}
	}

	// The attributes and data must reach the kernel in a single write
	raw := make([]byte, 4, 4+len(payload))
	binary.LittleEndian.PutUint32(raw, uint32(attrs))
	raw = append(raw, payload...)

	flags := os.O_WRONLY | os.O_CREATE
	if !s.efivarfs {
		flags |= os.O_TRUNC
	}
	file, err := s.fs.OpenFile(filePath, flags, 0o644)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, file.Close()) }()

	if _, err := file.Write(raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
