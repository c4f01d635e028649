package boot_test

import (
	"testing"

	"github.com/R-ARM/GamepadTools/internal/boot"
	"github.com/stretchr/testify/assert"
)

func TestPolicyIncludes(t *testing.T) {
	hiding := boot.DefaultPolicy()
	hiding.HideFallbackLoaders = true

	testCases := []struct {
		name     string
		policy   boot.Policy
		filePath string
		expected bool
	}{
		{"Disabled", boot.DefaultPolicy(), `\EFI\BOOT\BOOTX64.EFI`, true},
		{"No File Path", hiding, "", true},
		{"x64 Fallback", hiding, `\EFI\BOOT\BOOTX64.EFI`, false},
		{"ARM64 Fallback Lowercase", hiding, `\efi\boot\bootaa64.efi`, false},
		{"Regular Loader", hiding, `\EFI\ubuntu\shimx64.efi`, true},
		{"Custom List", boot.Policy{HideFallbackLoaders: true, FallbackLoaders: []string{`\loader.efi`}}, `\LOADER.EFI`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.policy.Includes(boot.Entry{FilePath: tc.filePath}))
		})
	}
}
