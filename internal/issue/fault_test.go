// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewFaultNil(t *testing.T) {
	t.Parallel()

	if f := NewFault("build", nil); f != nil {
		t.Errorf("NewFault(nil) = %v, want nil", f)
	}
}

func TestFaultChain(t *testing.T) {
	t.Parallel()

	root := errors.New("unexpected EOF")
	f := NewFault("package macOS app", fmt.Errorf("reading manifest: %w", root))

	chain := f.Chain()
	if len(chain) != 2 {
		t.Fatalf("Chain() = %v, want 2 entries", chain)
	}
	if chain[1] != "unexpected EOF" {
		t.Errorf("Chain()[1] = %q", chain[1])
	}
	if !errors.Is(f, root) {
		t.Error("errors.Is did not reach the root cause")
	}
	if got := f.Error(); got != "unexpected error running package macOS app: reading manifest: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFaultMarkdown(t *testing.T) {
	t.Parallel()

	f := NewFault("build", errors.New("boom"))
	f.LogFile = "logs/satchel.log"

	md := f.Markdown()
	for _, want := range []string{"While running `build`", "1. boom", "`logs/satchel.log`"} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() lacks %q:\n%s", want, md)
		}
	}

	noLog := NewFault("", errors.New("boom")).Markdown()
	if strings.Contains(noLog, "Log file") || strings.Contains(noLog, "While running") {
		t.Errorf("Markdown() without command or log file:\n%s", noLog)
	}
}

// Tests below swap renderMarkdown and must not run in parallel.

func TestFaultRender(t *testing.T) {
	original := renderMarkdown
	defer func() { renderMarkdown = original }()

	renderMarkdown = func(in, stylePath string) (string, error) {
		return "styled:" + stylePath + ":" + in, nil
	}

	f := NewFault("build", errors.New("boom"))
	out, err := f.Render("dark")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(out, "styled:dark:") || !strings.Contains(out, "1. boom") {
		t.Errorf("Render() = %q", out)
	}
}

func TestFaultRenderFallsBackToMarkdown(t *testing.T) {
	original := renderMarkdown
	defer func() { renderMarkdown = original }()

	renderErr := errors.New("no such style")
	renderMarkdown = func(string, string) (string, error) { return "", renderErr }

	f := NewFault("build", errors.New("boom"))
	out, err := f.Render("missing")
	if !errors.Is(err, renderErr) {
		t.Errorf("Render() error = %v, want %v", err, renderErr)
	}
	if out != f.Markdown() {
		t.Errorf("Render() fallback = %q, want the plain markdown", out)
	}
}
