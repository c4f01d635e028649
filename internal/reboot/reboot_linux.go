package reboot

import "os/exec"

// Prefers systemd when it is installed
func rebootCommand() []string {
	if _, err := exec.LookPath("systemctl"); err == nil {
		return []string{"systemctl", "reboot"}
	}
	return []string{"reboot", "now"}
}
