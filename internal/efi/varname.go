package efi

import (
	"fmt"
	"regexp"
	"strconv"
)

// Boot option variables are named "Boot" followed by exactly four uppercase hexadecimal digits
var bootOptionName = regexp.MustCompile(`^Boot([0-9A-F]{4})$`)

// Extracts the numeric boot ID and its verbatim suffix from a boot option variable name
func ParseBootVariableName(name string) (uint16, string, error) {
	groups := bootOptionName.FindStringSubmatch(name)
	if groups == nil {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidVariableName, name)
	}

	id, err := strconv.ParseUint(groups[1], 16, 16)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q: %v", ErrInvalidVariableName, name, err)
	}

	return uint16(id), groups[1], nil
}

// Returns the variable name for the boot option with the specified ID
func BootVariableName(id uint16) string {
	return fmt.Sprintf("Boot%04X", id)
}
