// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// Sandbox type constants.
const (
	SandboxNone    SandboxType = ""
	SandboxFlatpak SandboxType = "flatpak"
	SandboxSnap    SandboxType = "snap"
)

// SandboxType identifies the application sandbox satchel runs in, if any.
type SandboxType string

// detectOnce caches detection for the process lifetime. detectSandboxFrom
// must not panic: sync.OnceValue repeats a panic on every call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// DetectSandbox returns the sandbox the current process runs in.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// String returns the sandbox name shown to users.
func (s SandboxType) String() string {
	switch s {
	case SandboxFlatpak:
		return "Flatpak"
	case SandboxSnap:
		return "Snap"
	default:
		return "none"
	}
}

// detectSandboxFrom takes its lookups as parameters so tests need not touch
// process-wide state. Flatpak wins over Snap.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
