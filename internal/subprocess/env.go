// SPDX-License-Identifier: MPL-2.0

package subprocess

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

type (
	// Environ supplies the baseline environment for an invocation. It is
	// consulted once per call.
	Environ interface {
		Environ() map[string]string
	}

	// OSEnviron reads the environment of the current process.
	OSEnviron struct{}

	// StaticEnviron is a fixed environment snapshot.
	StaticEnviron map[string]string
)

// Environ returns a fresh snapshot of os.Environ().
func (OSEnviron) Environ() map[string]string {
	return ParseEnv(os.Environ())
}

// Environ returns the snapshot itself.
func (e StaticEnviron) Environ() map[string]string {
	return e
}

// Merge layers overrides onto baseline. Keys in overrides win. When overrides
// is nil the baseline is returned as-is; otherwise a new map is returned and
// baseline is left untouched.
func Merge(baseline, overrides map[string]string) map[string]string {
	if overrides == nil {
		return baseline
	}
	merged := make(map[string]string, len(baseline)+len(overrides))
	maps.Copy(merged, baseline)
	maps.Copy(merged, overrides)
	return merged
}

// ParseEnv converts KEY=VALUE entries into a map. Windows per-drive entries
// such as "=C:=C:\\" keep their leading '='.
func ParseEnv(entries []string) map[string]string {
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		// Search from index 1 so a leading '=' stays part of the key.
		idx := strings.IndexByte(entry[1:], '=')
		if idx < 0 {
			env[entry] = ""
			continue
		}
		env[entry[:idx+1]] = entry[idx+2:]
	}
	return env
}

// EnvSlice renders env as KEY=VALUE entries sorted by key.
func EnvSlice(env map[string]string) []string {
	keys := slices.Sorted(maps.Keys(env))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// NormalizeDir converts a path-like working directory to its canonical text
// form. A nil or empty value means "inherit the current directory".
func NormalizeDir(dir any) string {
	if dir == nil {
		return ""
	}
	s := Stringify(dir)
	if s == "" {
		return ""
	}
	return filepath.Clean(s)
}
