package efi

import (
	"encoding/binary"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Firmware strings are UTF-16LE without a byte order mark
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

var errUnterminated = errors.New("no null code unit before end of data")

// Decodes a null-terminated UTF-16LE string from the start of the supplied bytes,
// returning the text and the number of bytes consumed (including the terminator)
func DecodeUTF16(data []byte) (string, int, error) {

	// Locate the first 0x0000 code unit
	for offset := 0; offset+1 < len(data); offset += 2 {
		if binary.LittleEndian.Uint16(data[offset:]) == 0 {
			return decodeCodeUnits(data[:offset]), offset + 2, nil
		}
	}

	// Either the data ran out or an odd trailing byte was left over
	return "", 0, errUnterminated
}

// Decodes a sequence of UTF-16LE code units with no terminator
func decodeCodeUnits(data []byte) string {

	// The decoder replaces unpaired surrogates with U+FFFD rather than failing
	decoded, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		return strings.Repeat(" ", len(data)/2)
	}

	// The display surface is a fixed-width ASCII console
	return strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf {
			return ' '
		}
		return r
	}, string(decoded))
}

// Encodes a string as null-terminated UTF-16LE
func EncodeUTF16(s string) []byte {
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		encoded = nil
	}
	return append(encoded, 0, 0)
}
