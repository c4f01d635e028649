package boot

import "strings"

// The removable media loaders the firmware falls back to when no boot option matches
var DefaultFallbackLoaders = []string{
	`\EFI\BOOT\BOOTX64.EFI`,
	`\EFI\BOOT\BOOTAA64.EFI`,
	`\EFI\BOOT\BOOTIA32.EFI`,
	`\EFI\BOOT\BOOTARM.EFI`,
	`\EFI\BOOT\BOOTRISCV64.EFI`,
}

// Policy decides which decoded entries are presented
type Policy struct {

	// Drop entries that only point at a default removable media loader
	HideFallbackLoaders bool

	// The loader paths treated as fallbacks, compared case-insensitively
	FallbackLoaders []string
}

// Returns the policy that presents every decodable entry
func DefaultPolicy() Policy {
	return Policy{FallbackLoaders: DefaultFallbackLoaders}
}

// Determines whether the policy admits the entry
func (p Policy) Includes(entry Entry) bool {
	if !p.HideFallbackLoaders || entry.FilePath == "" {
		return true
	}
	for _, loader := range p.FallbackLoaders {
		if strings.EqualFold(entry.FilePath, loader) {
			return false
		}
	}
	return true
}
