// Package reboot restarts the machine so the firmware picks up BootNext.
package reboot

import (
	"fmt"

	"github.com/R-ARM/GamepadTools/internal/process"
)

// Attempts to reboot the system
func Reboot() error {
	command := rebootCommand()
	if _, err := process.CaptureOutput(command); err != nil {
		return fmt.Errorf("%s: %w", command[0], err)
	}
	return nil
}
