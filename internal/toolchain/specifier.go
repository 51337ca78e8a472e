// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidSpecifier is returned for a version specifier that cannot be parsed.
var ErrInvalidSpecifier = errors.New("invalid version specifier")

var (
	clausePattern  = regexp.MustCompile(`^(~=|==|!=|<=|>=|<|>)\s*(\d+(?:\.\d+)*)(\.\*)?$`)
	versionPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)([0-9A-Za-z.]*)$`)
)

type (
	// Specifier is a comma-separated list of interpreter version clauses such
	// as ">=3.10, !=3.11.*". A version must satisfy every clause.
	Specifier struct {
		raw     string
		clauses []clause
	}

	clause struct {
		op       string
		parts    []string
		wildcard bool
	}
)

// ParseSpecifier parses s. An empty specifier allows every version.
func ParseSpecifier(s string) (Specifier, error) {
	spec := Specifier{raw: strings.TrimSpace(s)}
	if spec.raw == "" {
		return spec, nil
	}
	for part := range strings.SplitSeq(spec.raw, ",") {
		m := clausePattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return Specifier{}, fmt.Errorf("%w: %q", ErrInvalidSpecifier, part)
		}
		c := clause{op: m[1], parts: strings.Split(m[2], "."), wildcard: m[3] != ""}
		if c.wildcard && c.op != "==" && c.op != "!=" {
			return Specifier{}, fmt.Errorf("%w: %q: wildcards need == or !=", ErrInvalidSpecifier, part)
		}
		if c.op == "~=" && len(c.parts) < 2 {
			return Specifier{}, fmt.Errorf("%w: %q: ~= needs at least two components", ErrInvalidSpecifier, part)
		}
		spec.clauses = append(spec.clauses, c)
	}
	return spec, nil
}

// String returns the specifier as written.
func (s Specifier) String() string { return s.raw }

// Allows reports whether version (e.g. "3.12.1" or "3.13.0rc1") satisfies
// every clause. Unparseable versions are never allowed by a non-empty
// specifier.
func (s Specifier) Allows(version string) bool {
	if len(s.clauses) == 0 {
		return true
	}
	parts, canon, ok := canonicalVersion(version)
	if !ok {
		return false
	}
	for _, c := range s.clauses {
		if !c.allows(parts, canon) {
			return false
		}
	}
	return true
}

func (c clause) allows(parts []string, canon string) bool {
	target := canonical(c.parts, "")
	switch c.op {
	case "==":
		if c.wildcard {
			return hasPrefix(parts, c.parts)
		}
		return semver.Compare(canon, target) == 0
	case "!=":
		if c.wildcard {
			return !hasPrefix(parts, c.parts)
		}
		return semver.Compare(canon, target) != 0
	case "~=":
		return semver.Compare(canon, target) >= 0 && hasPrefix(parts, c.parts[:len(c.parts)-1])
	case ">=":
		return semver.Compare(canon, target) >= 0
	case "<=":
		return semver.Compare(canon, target) <= 0
	case ">":
		return semver.Compare(canon, target) > 0
	case "<":
		return semver.Compare(canon, target) < 0
	default:
		return false
	}
}

// canonicalVersion splits an interpreter version into its numeric release
// components and a semver string for comparison.
func canonicalVersion(version string) ([]string, string, bool) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(version))
	if m == nil {
		return nil, "", false
	}
	parts := strings.Split(m[1], ".")
	pre := strings.TrimLeft(m[2], ".")
	canon := canonical(parts, pre)
	if !semver.IsValid(canon) {
		return nil, "", false
	}
	return parts, canon, true
}

// canonical builds vMAJOR.MINOR.PATCH[-pre] from release components; missing
// components are zero and components past the third are dropped.
func canonical(parts []string, pre string) string {
	p := [3]string{"0", "0", "0"}
	for i := 0; i < len(parts) && i < 3; i++ {
		p[i] = strings.TrimLeft(parts[i], "0")
		if p[i] == "" {
			p[i] = "0"
		}
	}
	v := "v" + p[0] + "." + p[1] + "." + p[2]
	if pre != "" {
		v += "-" + pre
	}
	return v
}

func hasPrefix(parts, prefix []string) bool {
	if len(prefix) > len(parts) {
		return false
	}
	for i := range prefix {
		if strings.TrimLeft(parts[i], "0") != strings.TrimLeft(prefix[i], "0") {
			return false
		}
	}
	return true
}
