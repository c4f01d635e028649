package efi_test

import (
	"testing"

	"github.com/R-ARM/GamepadTools/internal/efi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUTF16(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected string
		consumed int
	}{
		{
			name:     "Simple ASCII",
			data:     []byte{0x4C, 0x00, 0x69, 0x00, 0x6E, 0x00, 0x75, 0x00, 0x78, 0x00, 0x00, 0x00},
			expected: "Linux",
			consumed: 12,
		},
		{
			name:     "Empty String",
			data:     []byte{0x00, 0x00, 0xAA, 0xBB},
			expected: "",
			consumed: 2,
		},
		{
			name:     "Trailing Data Ignored",
			data:     []byte{0x41, 0x00, 0x00, 0x00, 0x42, 0x00, 0x00, 0x00},
			expected: "A",
			consumed: 4,
		},
		{
			name:     "Non-ASCII Replaced",
			data:     []byte{0x41, 0x00, 0xC4, 0x00, 0x60, 0x4F, 0x42, 0x00, 0x00, 0x00},
			expected: "A  B",
			consumed: 10,
		},
		{
			name:     "Surrogate Pair Replaced With One Space",
			data:     []byte{0x3D, 0xD8, 0x00, 0xDE, 0x41, 0x00, 0x00, 0x00},
			expected: " A",
			consumed: 8,
		},
		{
			name:     "Unpaired Surrogate Replaced",
			data:     []byte{0x00, 0xDC, 0x41, 0x00, 0x00, 0x00},
			expected: " A",
			consumed: 6,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text, consumed, err := efi.DecodeUTF16(tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, text)
			assert.Equal(t, tc.consumed, consumed)
		})
	}
}

func TestDecodeUTF16Unterminated(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"Empty", []byte{}},
		{"No Terminator", []byte{0x41, 0x00, 0x42, 0x00}},
		{"Odd Trailing Byte", []byte{0x41, 0x00, 0x00}},
		{"Single Zero Byte", []byte{0x00}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := efi.DecodeUTF16(tc.data)
			assert.Error(t, err)
		})
	}
}

func TestEncodeUTF16(t *testing.T) {
	assert.Equal(t, []byte{0x48, 0x00, 0x69, 0x00, 0x00, 0x00}, efi.EncodeUTF16("Hi"))
	assert.Equal(t, []byte{0x00, 0x00}, efi.EncodeUTF16(""))

	text, consumed, err := efi.DecodeUTF16(efi.EncodeUTF16(`\EFI\BOOT\BOOTX64.EFI`))
	require.NoError(t, err)
	assert.Equal(t, `\EFI\BOOT\BOOTX64.EFI`, text)
	assert.Equal(t, 44, consumed)
}
