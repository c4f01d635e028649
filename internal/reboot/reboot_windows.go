package reboot

func rebootCommand() []string {
	return []string{"shutdown", "/r", "/t", "0"}
}
