// SPDX-License-Identifier: MPL-2.0

package platform

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// HostName returns the name users know a GOOS value by.
func HostName(goos string) string {
	switch goos {
	case Darwin:
		return "macOS"
	case Windows:
		return "Windows"
	case Linux:
		return "Linux"
	default:
		return goos
	}
}
