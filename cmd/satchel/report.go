// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/satchel-build/satchel/internal/config"
	"github.com/satchel-build/satchel/internal/issue"
)

// finish is the top-level error boundary. It prints collected warnings and
// the command's outcome, saves the transcript when required and converts the
// outcome into an *ExitError carrying the process exit status.
//
//   - nil and warnings: exit 0, transcript only with --log or save_log.
//   - classified entries: the message alone; transcript unless the entry
//     skips it.
//   - cancellation: "Aborted by user.", InterruptedStatus.
//   - anything else is an internal fault: full report, transcript always.
func (a *App) finish(ctx context.Context, s *session, err error) error {
	for _, w := range s.warnings {
		fmt.Fprintln(a.stderr, WarningStyle.Render(w.Error()))
	}
	force := a.flags.saveLog || (s.cfg != nil && s.cfg.SaveLog)

	if err == nil {
		a.saveLog(s, force)
		return nil
	}

	if e, ok := issue.As(err); ok {
		s.log.Record("outcome", "kind", e.Kind().String(), "code", e.Code(), "message", e.Error())
		if e.IsWarning() {
			fmt.Fprintln(a.stderr, WarningStyle.Render(e.Error()))
			a.saveLog(s, force)
			return nil
		}
		fmt.Fprintln(a.stderr, ErrorStyle.Render(e.Error()))
		a.saveLog(s, force || !e.SkipLogfile())
		return &ExitError{Code: issue.ExitStatus(e), Err: e}
	}

	if ctx.Err() != nil {
		s.log.Record("outcome", "aborted", true, "error", err.Error())
		fmt.Fprintln(a.stderr, WarningStyle.Render("Aborted by user."))
		a.saveLog(s, force)
		return &ExitError{Code: InterruptedStatus, Err: err}
	}

	fault := issue.NewFault(s.command, err)
	s.log.Record("internal fault", "chain", fault.Chain())
	fault.LogFile = a.saveLog(s, true)
	out, renderErr := fault.Render(s.style())
	fmt.Fprint(a.stderr, out)
	if renderErr != nil {
		fmt.Fprintln(a.stderr, SubtitleStyle.Render("(report styling failed: "+renderErr.Error()+")"))
	}
	return &ExitError{Code: issue.ExitStatus(fault), Err: fault}
}

// saveLog writes the transcript when want is set and returns its path. A
// failure to save is reported but never changes the outcome.
func (a *App) saveLog(s *session, want bool) string {
	if !want {
		return ""
	}
	dir := config.DefaultLogDir
	if s.cfg != nil && s.cfg.LogDir != "" {
		dir = s.cfg.LogDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(a.projectDir(), dir)
	}

	path, err := s.log.SaveTranscript(dir, s.command, a.now())
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Unable to save log file: "+err.Error()))
		return ""
	}
	fmt.Fprintln(a.stderr, SubtitleStyle.Render("Log saved to "+path))
	return path
}

// style picks the glamour style for fault reports.
func (s *session) style() string {
	if s.cfg == nil {
		return config.DefaultStyle
	}
	if s.cfg.UI.Style != "" && s.cfg.UI.Style != config.DefaultStyle {
		return s.cfg.UI.Style
	}
	if s.cfg.UI.ColorScheme != config.ColorSchemeAuto {
		return s.cfg.UI.ColorScheme.String()
	}
	return config.DefaultStyle
}
