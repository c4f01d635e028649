package efi

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ccoveille/go-safecast"
)

// Load option attribute bits
const (
	LOAD_OPTION_ACTIVE          uint32 = 0x00000001
	LOAD_OPTION_FORCE_RECONNECT uint32 = 0x00000002
	LOAD_OPTION_HIDDEN          uint32 = 0x00000008
	LOAD_OPTION_CATEGORY        uint32 = 0x00001F00
	LOAD_OPTION_CATEGORY_BOOT   uint32 = 0x00000000
	LOAD_OPTION_CATEGORY_APP    uint32 = 0x00000100
)

// Size of the attributes and file path list length fields
const loadOptionHeaderSize = 6

// LoadOption is the decoded payload of a Boot#### variable.
// All slices are owned copies and never alias the buffer the option was decoded from.
type LoadOption struct {
	Attributes         uint32
	FilePathListLength uint16
	Description        string
	FilePathList       []byte
	OptionalData       []byte
}

// Decodes a load option from the raw contents of a boot variable
func DecodeLoadOption(data []byte) (*LoadOption, error) {

	if len(data) < loadOptionHeaderSize {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncatedHeader, len(data), loadOptionHeaderSize)
	}

	option := &LoadOption{
		Attributes:         binary.LittleEndian.Uint32(data[0:4]),
		FilePathListLength: binary.LittleEndian.Uint16(data[4:6]),
	}

	// The description immediately follows the header
	description, consumed, err := DecodeUTF16(data[loadOptionHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnterminatedDescription, err)
	}
	option.Description = description

	// The device path region starts right after the description's terminator
	pathStart := loadOptionHeaderSize + consumed
	remaining := len(data) - pathStart
	if int(option.FilePathListLength) > remaining {
		return nil, fmt.Errorf(
			"%w: declared %d bytes at offset %d, only %d remain",
			ErrPathListSizeMismatch,
			option.FilePathListLength,
			pathStart,
			remaining,
		)
	}

	pathEnd := pathStart + int(option.FilePathListLength)
	option.FilePathList = bytes.Clone(data[pathStart:pathEnd])
	option.OptionalData = bytes.Clone(data[pathEnd:])

	return option, nil
}

// Encodes the load option into its firmware byte layout.
// The path list length field is derived from FilePathList.
func (o *LoadOption) MarshalBinary() ([]byte, error) {
	pathLength, err := safecast.ToUint16(len(o.FilePathList))
	if err != nil {
		return nil, fmt.Errorf("file path list of %d bytes does not fit the length field: %w", len(o.FilePathList), err)
	}

	raw := binary.LittleEndian.AppendUint32(nil, o.Attributes)
	raw = binary.LittleEndian.AppendUint16(raw, pathLength)
	raw = append(raw, EncodeUTF16(o.Description)...)
	raw = append(raw, o.FilePathList...)
	return append(raw, o.OptionalData...), nil
}

// Active reports whether the firmware will consider the option for booting
func (o *LoadOption) Active() bool {
	return o.Attributes&LOAD_OPTION_ACTIVE != 0
}

// Hidden reports whether the firmware hides the option from its own boot menu
func (o *LoadOption) Hidden() bool {
	return o.Attributes&LOAD_OPTION_HIDDEN != 0
}

// Category returns the category bits of the attributes
func (o *LoadOption) Category() uint32 {
	return o.Attributes & LOAD_OPTION_CATEGORY
}
