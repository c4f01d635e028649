package efivars

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unsafe"

	"github.com/R-ARM/GamepadTools/internal/process"
	"github.com/google/uuid"
	"golang.org/x/sys/windows"
)

var (
	kernel32                                 = windows.NewLazySystemDLL("kernel32.dll")
	ntdll                                    = windows.NewLazySystemDLL("ntdll.dll")
	procGetFirmwareEnvironmentVariableExW    = kernel32.NewProc("GetFirmwareEnvironmentVariableExW")
	procSetFirmwareEnvironmentVariableExW    = kernel32.NewProc("SetFirmwareEnvironmentVariableExW")
	procNtEnumerateSystemEnvironmentValuesEx = ntdll.NewProc("NtEnumerateSystemEnvironmentValuesEx")
)

const (

	// Information class returning names, GUIDs, attributes and values
	_SystemEnvironmentValueInformation = 2

	// NTSTATUS returned when the enumeration buffer is too small
	_STATUS_BUFFER_TOO_SMALL = 0xC0000023

	// Largest variable we are prepared to read in full
	maxVariableSize = 64 * 1024
)

// Determines whether the operating system has been booted in UEFI mode
func Available(dir string) (bool, error) {

	// Use PowerShell to query the system firmware type
	output, err := process.CaptureOutput([]string{
		"powershell.exe",
		"-ExecutionPolicy", "Bypass",
		"-Command", "Write-Host $env:firmware_type",
	})
	if err != nil {
		return false, err
	}

	// Determine whether the reported firmware type is legacy BIOS or UEFI
	return strings.TrimSpace(strings.ToUpper(output)) == "UEFI", nil
}

// WindowsStore accesses variables through the Windows firmware environment API
type WindowsStore struct {
	vendor uuid.UUID
}

// Returns the store for the variables of the running system (the directory is ignored under Windows)
func NewSystemStore(dir string) (Store, error) {
	if err := enableSystemEnvironmentPrivilege(); err != nil {
		return nil, fmt.Errorf("failed to enable SeSystemEnvironmentPrivilege: %v", err)
	}
	return &WindowsStore{vendor: GlobalVariable}, nil
}

// The firmware environment API requires SeSystemEnvironmentPrivilege, which is present but disabled for administrators
func enableSystemEnvironmentPrivilege() error {

	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token); err != nil {
		return err
	}
	defer token.Close()

	name, err := windows.UTF16PtrFromString("SeSystemEnvironmentPrivilege")
	if err != nil {
		return err
	}
	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, name, &luid); err != nil {
		return err
	}

	privileges := windows.Tokenprivileges{
		PrivilegeCount: 1,
		Privileges: [1]windows.LUIDAndAttributes{
			{Luid: luid, Attributes: windows.SE_PRIVILEGE_ENABLED},
		},
	}
	return windows.AdjustTokenPrivileges(token, false, &privileges, 0, nil, nil)
}

// Formats the vendor GUID the way the firmware environment API expects it
func (s *WindowsStore) guid() (*uint16, error) {
	return windows.UTF16PtrFromString("{" + strings.ToUpper(s.vendor.String()) + "}")
}

// Converts the mixed-endian GUID layout used by the firmware into a uuid.UUID
func guidFromBytes(data []byte) (uuid.UUID, error) {
	if len(data) < 16 {
		return uuid.Nil, errors.New("not enough data for GUID")
	}
	swapped := make([]byte, 16)
	copy(swapped, data[:16])
	binary.BigEndian.PutUint32(swapped[0:4], binary.LittleEndian.Uint32(data[0:4]))
	binary.BigEndian.PutUint16(swapped[4:6], binary.LittleEndian.Uint16(data[4:6]))
	binary.BigEndian.PutUint16(swapped[6:8], binary.LittleEndian.Uint16(data[6:8]))
	return uuid.FromBytes(swapped)
}

func (s *WindowsStore) ListNames() ([]string, error) {

	// Query the required buffer size, then retrieve the full list
	var size uint32
	status, _, _ := procNtEnumerateSystemEnvironmentValuesEx.Call(_SystemEnvironmentValueInformation, 0, uintptr(unsafe.Pointer(&size)))
	if status != 0 && status != _STATUS_BUFFER_TOO_SMALL {
		return nil, fmt.Errorf("NtEnumerateSystemEnvironmentValuesEx failed with status 0x%x", status)
	}
	if size == 0 {
		return []string{}, nil
	}
	buffer := make([]byte, size)
	status, _, _ = procNtEnumerateSystemEnvironmentValuesEx.Call(
		_SystemEnvironmentValueInformation,
		uintptr(unsafe.Pointer(&buffer[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if status != 0 {
		return nil, fmt.Errorf("NtEnumerateSystemEnvironmentValuesEx failed with status 0x%x", status)
	}

	// Each record is laid out as:
	// DWORD NextEntryOffset, DWORD ValueOffset, DWORD ValueLength, DWORD Attributes, GUID VendorGuid, WCHAR Name[]
	names := []string{}
	offset := 0
	for offset+32 <= len(buffer) {
		next := int(binary.LittleEndian.Uint32(buffer[offset:]))
		valueOffset := int(binary.LittleEndian.Uint32(buffer[offset+4:]))
		if valueOffset < 32 || offset+valueOffset > len(buffer) {
			return nil, fmt.Errorf("malformed variable record at offset %d", offset)
		}

		guid, err := guidFromBytes(buffer[offset+16 : offset+32])
		if err != nil {
			return nil, err
		}
		if guid == s.vendor {
			nameBytes := buffer[offset+32 : offset+valueOffset]
			units := make([]uint16, len(nameBytes)/2)
			for i := range units {
				units[i] = binary.LittleEndian.Uint16(nameBytes[i*2:])
			}
			names = append(names, windows.UTF16ToString(units))
		}

		if next == 0 {
			break
		}
		offset += next
	}

	sort.Strings(names)
	return names, nil
}

func (s *WindowsStore) Read(name string, buf []byte) (int, error) {

	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	guidPtr, err := s.guid()
	if err != nil {
		return 0, err
	}

	// Grow the buffer until the whole variable fits so truncation can be reported accurately
	scratch := make([]byte, max(len(buf), 1))
	for {
		var attrs uint32
		n, _, lastErr := procGetFirmwareEnvironmentVariableExW.Call(
			uintptr(unsafe.Pointer(namePtr)),
			uintptr(unsafe.Pointer(guidPtr)),
			uintptr(unsafe.Pointer(&scratch[0])),
			uintptr(len(scratch)),
			uintptr(unsafe.Pointer(&attrs)),
		)
		if n != 0 {
			copied := copy(buf, scratch[:n])
			if copied < int(n) {
				return copied, io.ErrShortBuffer
			}
			return copied, nil
		}

		switch {
		case errors.Is(lastErr, windows.ERROR_ENVVAR_NOT_FOUND):
			return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
		case errors.Is(lastErr, windows.ERROR_INSUFFICIENT_BUFFER) && len(scratch) < maxVariableSize:
			scratch = make([]byte, len(scratch)*2)
		default:
			return 0, fmt.Errorf("failed to read %s: %v", name, lastErr)
		}
	}
}

func (s *WindowsStore) Write(name string, attrs Attributes, payload []byte) error {

	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	guidPtr, err := s.guid()
	if err != nil {
		return err
	}

	var data uintptr
	if len(payload) > 0 {
		data = uintptr(unsafe.Pointer(&payload[0]))
	}
	result, _, lastErr := procSetFirmwareEnvironmentVariableExW.Call(
		uintptr(unsafe.Pointer(namePtr)),
		uintptr(unsafe.Pointer(guidPtr)),
		data,
		uintptr(len(payload)),
		uintptr(attrs),
	)
	if result == 0 {
		return fmt.Errorf("failed to write %s: %v", name, lastErr)
	}
	return nil
}
