// Package boot builds the catalog of UEFI boot entries and selects the entry to boot next.
package boot

import (
	"fmt"
	"strings"
)

// Entry is the presentation form of one decoded Boot#### variable
type Entry struct {

	// The boot option number, parsed from the variable name's hexadecimal suffix
	ID uint16 `json:"id"`

	// The four digit suffix exactly as it appears in the variable name
	RawSuffix string `json:"name"`

	// The description stored in the load option
	Description string `json:"description"`

	// One label per device path node that produces one
	PathSummary []string `json:"path"`

	// The last media file path in the device path, if any
	FilePath string `json:"file_path,omitempty"`

	// The load option attributes, not interpreted by the catalog
	Attributes uint32 `json:"attributes"`
}

// Formats the entry for display, joining the path labels with the specified separator
func (e Entry) Format(separator string) string {
	return fmt.Sprintf("%s: %s, at: %s", e.RawSuffix, e.Description, strings.Join(e.PathSummary, separator))
}

func (e Entry) String() string {
	return e.Format(" ")
}
