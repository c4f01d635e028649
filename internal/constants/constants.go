package constants

// The application version, overridden at release time with -ldflags "-X"
var VERSION = "0.1.0"

// The application name, used for the config directory and the environment variable prefix
const APPLICATION = "bootmgr"
