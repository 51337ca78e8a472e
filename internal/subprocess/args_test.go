// SPDX-License-Identifier: MPL-2.0

package subprocess

import (
	"slices"
	"testing"
)

// pathLike stands in for any path type that renders itself as text.
type pathLike string

func (p pathLike) String() string { return string(p) }

func TestStrings(t *testing.T) {
	t.Parallel()

	got := Strings([]any{"pip", 42, 1.5, pathLike("/tmp/app"), []byte("raw"), true, nil})
	want := []string{"pip", "42", "1.5", "/tmp/app", "raw", "true", "<nil>"}
	if !slices.Equal(got, want) {
		t.Errorf("Strings() = %q, want %q", got, want)
	}
}

func TestCommandLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		argv []string
		want string
	}{
		{name: "plain words", argv: []string{"git", "status"}, want: "git status"},
		{name: "space", argv: []string{"pip", "install", "hello world"}, want: "pip install 'hello world'"},
		{name: "empty word", argv: []string{"echo", ""}, want: "echo ''"},
		{name: "dollar", argv: []string{"echo", "$HOME"}, want: "echo '$HOME'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CommandLine(tt.argv); got != tt.want {
				t.Errorf("CommandLine(%q) = %q, want %q", tt.argv, got, tt.want)
			}
		})
	}
}
