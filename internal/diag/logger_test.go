// SPDX-License-Identifier: MPL-2.0

package diag

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		verbosity int
		want      [3]bool
	}{
		{verbosity: 0, want: [3]bool{false, false, false}},
		{verbosity: 1, want: [3]bool{true, false, false}},
		{verbosity: 2, want: [3]bool{true, true, false}},
		{verbosity: 3, want: [3]bool{true, true, true}},
		{verbosity: 7, want: [3]bool{true, true, true}},
		{verbosity: -2, want: [3]bool{false, false, false}},
	}

	for _, tt := range tests {
		l := New(&bytes.Buffer{}, tt.verbosity)
		for i, tier := range []Tier{Tier1, Tier2, Tier3} {
			if got := l.Enabled(tier); got != tt.want[i] {
				t.Errorf("New(%d).Enabled(%d) = %v, want %v", tt.verbosity, tier, got, tt.want[i])
			}
		}
	}
}

func TestLoggerLazySkipsDisabledTier(t *testing.T) {
	t.Parallel()

	l := New(&bytes.Buffer{}, 1)
	called := false
	l.Lazy(Tier3, func() []string {
		called = true
		return []string{"expensive"}
	})
	if called {
		t.Error("Lazy() invoked producer for a disabled tier")
	}
	if strings.Contains(l.Transcript(), "expensive") {
		t.Error("disabled tier reached the transcript")
	}

	l.Lazy(Tier1, func() []string { return []string{"cheap"} })
	if !strings.Contains(l.Transcript(), "cheap") {
		t.Errorf("enabled tier missing from transcript: %q", l.Transcript())
	}
}

func TestLoggerFlushWritesBlockOnce(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	l := New(&out, 1)

	var b Block
	b.Add("Running Command:", "    ls -l")
	l.Flush(&b)

	if got := strings.Count(out.String(), "Running Command:"); got != 1 {
		t.Errorf("terminal got %d copies of the block, want 1: %q", got, out.String())
	}
	if !strings.Contains(out.String(), "Running Command:\n    ls -l") {
		t.Errorf("block lines were split: %q", out.String())
	}
}

func TestLoggerFlushAtBaseTierOnlyRecords(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	l := New(&out, 0)

	var b Block
	b.Add("Return code: 3")
	l.Flush(&b)

	if out.Len() != 0 {
		t.Errorf("terminal output at base tier = %q, want none", out.String())
	}
	if !strings.Contains(l.Transcript(), "Return code: 3") {
		t.Errorf("transcript = %q, want return code line", l.Transcript())
	}
}

func TestLoggerFlushEmptyBlock(t *testing.T) {
	t.Parallel()

	l := New(&bytes.Buffer{}, 3)
	l.Flush(&Block{})
	l.Flush(nil)
	if l.Transcript() != "" {
		t.Errorf("empty block produced output: %q", l.Transcript())
	}
}

func TestLoggerSaveTranscript(t *testing.T) {
	t.Parallel()

	l := New(&bytes.Buffer{}, 0)
	l.Info("packaging started")

	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	path, err := l.SaveTranscript(dir, "build macOS", now)
	if err != nil {
		t.Fatalf("SaveTranscript() error = %v", err)
	}

	if want := filepath.Join(dir, "satchel.2024_03_09-14_05_06.build_macOS.log"); path != want {
		t.Errorf("SaveTranscript() path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "packaging started") {
		t.Errorf("log file = %q, want recorded message", data)
	}
}

func TestBlockLinesIsCopy(t *testing.T) {
	t.Parallel()

	var b Block
	b.Add("a", "b")
	lines := b.Lines()
	lines[0] = "mutated"
	if b.String() != "a\nb" {
		t.Errorf("Block.String() = %q after mutating Lines() copy", b.String())
	}
	if b.Len() != 2 {
		t.Errorf("Block.Len() = %d, want 2", b.Len())
	}
}
