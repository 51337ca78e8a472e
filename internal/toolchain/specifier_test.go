// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"testing"
)

func TestSpecifierAllows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		version string
		want    bool
	}{
		{"", "2.7.18", true},
		{">=3.10", "3.10.0", true},
		{">=3.10", "3.9.18", false},
		{">=3.10", "3.10", true},
		{">3.10", "3.10.0", false},
		{"<3.13", "3.12.8", true},
		{"<=3.12", "3.12.0", true},
		{"<=3.12", "3.12.1", false},
		{"==3.11.4", "3.11.4", true},
		{"==3.11.*", "3.11.9", true},
		{"==3.11.*", "3.12.0", false},
		{"!=3.11.*", "3.11.2", false},
		{"!=3.11.*", "3.12.2", true},
		{"~=3.10", "3.13.1", true},
		{"~=3.10", "4.0.0", false},
		{"~=3.10.2", "3.10.5", true},
		{"~=3.10.2", "3.11.0", false},
		{">=3.10, <3.14", "3.13.0", true},
		{">=3.10, <3.14", "3.14.0", false},
		{">=3.13", "3.13.0rc1", false},
		{">=3.12", "3.13.0rc1", true},
		{">=3.10", "not-a-version", false},
	}

	for _, tt := range tests {
		spec, err := ParseSpecifier(tt.spec)
		if err != nil {
			t.Fatalf("ParseSpecifier(%q) error = %v", tt.spec, err)
		}
		if got := spec.Allows(tt.version); got != tt.want {
			t.Errorf("%q.Allows(%q) = %v, want %v", tt.spec, tt.version, got, tt.want)
		}
	}
}

func TestParseSpecifierErrors(t *testing.T) {
	t.Parallel()

	for _, spec := range []string{"3.10", ">= three", ">=3.*", "~=3", ">=3.10,"} {
		if _, err := ParseSpecifier(spec); !errors.Is(err, ErrInvalidSpecifier) {
			t.Errorf("ParseSpecifier(%q) error = %v, want ErrInvalidSpecifier", spec, err)
		}
	}
}

func TestSpecifierString(t *testing.T) {
	t.Parallel()

	spec, err := ParseSpecifier("  >=3.10, <4 ")
	if err != nil {
		t.Fatal(err)
	}
	if spec.String() != ">=3.10, <4" {
		t.Errorf("String() = %q", spec.String())
	}
}
