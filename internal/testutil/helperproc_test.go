// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHelperArgs(t *testing.T) {
	t.Parallel()

	got := HelperArgs("echo", "hi")
	want := []string{os.Args[0], "-test.run=TestHelperProcess", "--", "echo", "hi"}
	if !slices.Equal(got, want) {
		t.Errorf("HelperArgs() = %v, want %v", got, want)
	}
	if HelperEnviron()[HelperEnv] != "1" {
		t.Errorf("HelperEnviron() = %v", HelperEnviron())
	}
}

func TestHelperMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		argv       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"echo", []string{"bin", "--", "echo", "a", "b"}, 0, "a b\n", ""},
		{"fail", []string{"bin", "--", "fail"}, 3, "partial\n", "boom\n"},
		{"warn", []string{"bin", "--", "warn", "ok"}, 0, "ok\n", "careful\n"},
		{"exit", []string{"bin", "-x", "--", "exit", "7"}, 7, "", ""},
		{"bad exit", []string{"bin", "--", "exit", "seven"}, 2, "", ""},
		{"no command", []string{"bin", "--"}, 2, "", "no helper command\n"},
		{"unknown", []string{"bin", "--", "dance"}, 2, "", "unknown helper command \"dance\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var stdout, stderr bytes.Buffer
			if code := helperMain(tt.argv, &stdout, &stderr); code != tt.wantCode {
				t.Errorf("helperMain() = %d, want %d", code, tt.wantCode)
			}
			if stdout.String() != tt.wantStdout || stderr.String() != tt.wantStderr {
				t.Errorf("helperMain() stdout = %q, stderr = %q", stdout.String(), stderr.String())
			}
		})
	}
}

func TestHelperMainTouch(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "artifact")
	if code := helperMain([]string{"bin", "--", "touch", file}, &bytes.Buffer{}, &bytes.Buffer{}); code != 0 {
		t.Fatalf("helperMain(touch) = %d", code)
	}
	if data, err := os.ReadFile(file); err != nil || string(data) != "artifact" {
		t.Errorf("touched file = %q, %v", data, err)
	}
}
