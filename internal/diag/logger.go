// SPDX-License-Identifier: MPL-2.0

package diag

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MaxVerbosity is the highest diagnostic tier.
const MaxVerbosity = Tier3

const (
	// Tier1 echoes the command line of each invocation.
	Tier1 Tier = iota + 1
	// Tier2 echoes captured output after each invocation.
	Tier2
	// Tier3 dumps the merged environment before each invocation.
	Tier3
)

type (
	// Tier is a diagnostic verbosity level. Zero is the base informational tier.
	Tier int

	// Logger is the tiered diagnostic sink. The verbosity is fixed at
	// construction; a Logger is safe for concurrent use.
	Logger struct {
		verbosity  Tier
		term       *log.Logger
		record     *log.Logger
		transcript *syncBuffer
	}

	// Block collects the lines of one lifecycle stage so they can be emitted
	// as a single write.
	Block struct {
		lines []string
	}

	syncBuffer struct {
		mu  sync.Mutex
		buf bytes.Buffer
	}
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// New creates a Logger that writes to out. Verbosity values outside 0..3 are
// clamped.
func New(out io.Writer, verbosity int) *Logger {
	v := Tier(min(max(verbosity, 0), int(MaxVerbosity)))

	level := log.InfoLevel
	if v >= Tier1 {
		level = log.DebugLevel
	}
	term := log.NewWithOptions(out, log.Options{
		Level:  level,
		Prefix: "satchel",
	})

	transcript := &syncBuffer{}
	record := log.NewWithOptions(transcript, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	return &Logger{
		verbosity:  v,
		term:       term,
		record:     record,
		transcript: transcript,
	}
}

// Discard returns a Logger that records a transcript but prints nothing.
func Discard() *Logger {
	return New(io.Discard, 0)
}

// Verbosity returns the configured tier.
func (l *Logger) Verbosity() Tier {
	return l.verbosity
}

// Enabled reports whether lines of tier t are emitted.
func (l *Logger) Enabled(t Tier) bool {
	return l.verbosity >= t
}

// Flush emits all lines in b as a single log entry. Empty blocks are dropped.
func (l *Logger) Flush(b *Block) {
	if b == nil || len(b.lines) == 0 {
		return
	}
	msg := b.String()
	l.record.Debug(msg)
	l.term.Debug(msg)
}

// Lazy emits the lines returned by produce when tier t is enabled. produce is
// not called otherwise.
func (l *Logger) Lazy(t Tier, produce func() []string) {
	if !l.Enabled(t) {
		return
	}
	var b Block
	b.Add(produce()...)
	l.Flush(&b)
}

// Info logs at the base informational tier.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.record.Info(msg, keyvals...)
	l.term.Info(msg, keyvals...)
}

// Warn logs a warning.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.record.Warn(msg, keyvals...)
	l.term.Warn(msg, keyvals...)
}

// Error logs an error.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.record.Error(msg, keyvals...)
	l.term.Error(msg, keyvals...)
}

// Record writes msg to the transcript only.
func (l *Logger) Record(msg string, keyvals ...any) {
	l.record.Debug(msg, keyvals...)
}

// Transcript returns everything recorded so far.
func (l *Logger) Transcript() string {
	return l.transcript.String()
}

// SaveTranscript writes the transcript to dir and returns the file path.
// The file is named satchel.<timestamp>.<command>.log.
func (l *Logger) SaveTranscript(dir, command string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	name := "satchel." + now.UTC().Format("2006_01_02-15_04_05")
	if command = unsafeFileChars.ReplaceAllString(command, "_"); command != "" {
		name += "." + command
	}
	path := filepath.Join(dir, name+".log")

	if err := os.WriteFile(path, []byte(l.Transcript()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write log file: %w", err)
	}
	return path, nil
}

// Add appends lines to the block.
func (b *Block) Add(lines ...string) {
	b.lines = append(b.lines, lines...)
}

// Len returns the number of lines in the block.
func (b *Block) Len() int {
	return len(b.lines)
}

// Lines returns a copy of the block's lines.
func (b *Block) Lines() []string {
	return append([]string(nil), b.lines...)
}

// String joins the block's lines with newlines.
func (b *Block) String() string {
	return strings.Join(b.lines, "\n")
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
