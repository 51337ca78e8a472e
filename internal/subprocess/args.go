// SPDX-License-Identifier: MPL-2.0

package subprocess

import (
	"fmt"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Stringify coerces a single argument to text. Strings and byte slices are
// used verbatim, fmt.Stringer values use String, and everything else is
// formatted with fmt.Sprint.
func Stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Strings coerces every argument to text, preserving order.
func Strings(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = Stringify(a)
	}
	return out
}

// Quote shell-quotes a single word using bash quoting rules. Words that need
// no quoting are returned unchanged.
func Quote(word string) string {
	q, err := syntax.Quote(word, syntax.LangBash)
	if err != nil {
		// Only NUL bytes are unquotable; they cannot reach exec either.
		return strconv.Quote(word)
	}
	return q
}

// CommandLine renders argv as a single shell-quoted, space-joined line.
func CommandLine(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}
