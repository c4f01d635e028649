package boot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/R-ARM/GamepadTools/internal/efivars"
)

// The variable naming the boot option to use on the next startup only
const BootNextVariable = "BootNext"

// The attributes BootNext is written with
const BootNextAttributes = efivars.NonVolatile | efivars.BootServiceAccess | efivars.RuntimeAccess

var ErrNoSuchEntry = errors.New("no such boot entry")

// Returns the entry with the specified ID
func Find(entries []Entry, id uint16) (Entry, error) {
	for _, entry := range entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %04X", ErrNoSuchEntry, id)
}

// Encodes a boot option number as the BootNext payload
func EncodeBootNext(id uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, id)
}

// Validates the selected ID against the entries and produces the BootNext payload
func Select(entries []Entry, id uint16) (Entry, []byte, error) {
	entry, err := Find(entries, id)
	if err != nil {
		return Entry{}, nil, err
	}
	return entry, EncodeBootNext(entry.ID), nil
}

// Selects the entry with the specified ID and writes it to BootNext.
// Nothing is written when the ID is not in the catalog.
func SetBootNext(store efivars.Store, entries []Entry, id uint16) (Entry, error) {
	entry, payload, err := Select(entries, id)
	if err != nil {
		return Entry{}, err
	}

	if err := store.Write(BootNextVariable, BootNextAttributes, payload); err != nil {
		return Entry{}, fmt.Errorf("failed to write %s: %w", BootNextVariable, err)
	}
	return entry, nil
}

// Parses a boot option number given as hexadecimal digits, optionally prefixed with "Boot"
func ParseID(s string) (uint16, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "Boot")
	if digits == "" || len(digits) > 4 {
		return 0, fmt.Errorf("invalid boot entry ID %q: expected up to four hexadecimal digits", s)
	}

	id, err := strconv.ParseUint(digits, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid boot entry ID %q: expected up to four hexadecimal digits", s)
	}
	return uint16(id), nil
}

// Returns the first entry whose description matches the regular expression (case insensitive)
func Match(entries []Entry, pattern string) (Entry, error) {

	// Compile the regular expression pattern supplied by the user, enabling case-insensitive matching
	regex, err := regexp.Compile(fmt.Sprintf("(?i)%s", pattern))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to compile regular expression \"%s\": %v", pattern, err)
	}

	for _, entry := range entries {
		if regex.MatchString(entry.Description) {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: nothing matches the pattern \"%s\"", ErrNoSuchEntry, pattern)
}
