package elevate

import (
	"os"

	"github.com/R-ARM/GamepadTools/internal/process"
	"golang.org/x/sys/unix"
)

// Determines whether the current process is running with elevated privileges
func IsElevated() bool {
	return unix.Geteuid() == 0
}

// Builds the `sudo` command line that re-runs the executable.
// sudo resets the environment, so configuration variables are passed through `env`.
func elevatedCommand(executable string, args []string, environ []string) []string {
	command := []string{"sudo"}
	if forwarded := forwardedEnvironment(environ); len(forwarded) > 0 {
		command = append(command, "env")
		command = append(command, forwarded...)
	}
	command = append(command, executable)
	return append(command, args...)
}

// Re-launches the current process with elevated privileges
func RunElevated() (int, error) {

	// Retrieve the path to the executable for the current process
	executable, err := os.Executable()
	if err != nil {
		return -1, err
	}

	// Attempt to re-run the executable using `sudo`, ensuring it inherits the standard streams from the parent
	return process.RunWithInheritedHandles(elevatedCommand(executable, os.Args[1:], os.Environ()))
}
