// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Fault describes an error that escaped translation into an Error. It is
// reported as a markdown document holding the whole error chain.
type Fault struct {
	// Command is the satchel invocation that failed (e.g. "build macOS app").
	Command string

	// LogFile is where the transcript was saved, if it was.
	LogFile string

	// Cause is the untranslated error.
	Cause error
}

var renderMarkdown = glamour.Render

// NewFault wraps err for reporting. It returns nil for a nil error.
func NewFault(command string, err error) *Fault {
	if err == nil {
		return nil
	}
	return &Fault{Command: command, Cause: err}
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Command == "" {
		return "unexpected error: " + f.Cause.Error()
	}
	return fmt.Sprintf("unexpected error running %s: %s", f.Command, f.Cause.Error())
}

// Unwrap returns the untranslated error.
func (f *Fault) Unwrap() error { return f.Cause }

// Chain lists the messages of every error in the cause chain, outermost first.
func (f *Fault) Chain() []string {
	var out []string
	for err := f.Cause; err != nil; err = errors.Unwrap(err) {
		out = append(out, err.Error())
	}
	return out
}

// Markdown returns the report before styling.
func (f *Fault) Markdown() string {
	var md strings.Builder
	md.WriteString("# Satchel hit an unexpected error\n\n")
	if f.Command != "" {
		fmt.Fprintf(&md, "While running `%s`.\n\n", f.Command)
	}
	md.WriteString("## Error chain\n")
	for i, msg := range f.Chain() {
		fmt.Fprintf(&md, "%d. %s\n", i+1, msg)
	}
	if f.LogFile != "" {
		md.WriteString("\n## Log file\n")
		fmt.Fprintf(&md, "The full transcript was saved to `%s`.\n", f.LogFile)
		md.WriteString("Include it when reporting this problem.\n")
	}
	return md.String()
}

// Render styles the report with glamour. On a rendering failure the plain
// markdown is returned together with the error.
func (f *Fault) Render(stylePath string) (string, error) {
	md := f.Markdown()
	out, err := renderMarkdown(md, stylePath)
	if err != nil {
		return md, err
	}
	return out, nil
}
