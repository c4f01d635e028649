// Package elevate re-launches the current process with the privileges needed to write UEFI variables.
package elevate

import (
	"strings"

	"github.com/R-ARM/GamepadTools/internal/constants"
)

// Returns the entries of environ that configure bootmgr, so they can be carried across elevation
func forwardedEnvironment(environ []string) []string {
	prefix := strings.ToUpper(constants.APPLICATION) + "_"
	forwarded := []string{}
	for _, entry := range environ {
		if strings.HasPrefix(entry, prefix) {
			forwarded = append(forwarded, entry)
		}
	}
	return forwarded
}
