// SPDX-License-Identifier: MPL-2.0

package subprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/satchel-build/satchel/internal/diag"

	"github.com/creack/pty"
)

// ErrEmptyCommand is returned when an invocation has no arguments.
var ErrEmptyCommand = errors.New("empty command")

type (
	// Sink receives the diagnostics of each invocation. *diag.Logger is the
	// production implementation.
	Sink interface {
		Enabled(t diag.Tier) bool
		Flush(b *diag.Block)
	}

	// Options mirrors the settings of exec.Cmd. Dir and Env are the only
	// fields the runner interprets; everything else is passed through.
	Options struct {
		// Dir is the working directory. Any path-like value is accepted.
		Dir any
		// Env is merged onto the inherited environment; it never replaces it.
		Env map[string]string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		// Capture records stdout and stderr in the Result of Run, in addition
		// to any writers supplied above.
		Capture bool
		// Check makes Run return the *exec.ExitError of a non-zero exit.
		Check bool
		// Shell runs the first argument as a command line of the system shell
		// (sh -c, or cmd /C on Windows). Further arguments become the
		// script's positional parameters ($1, $2, ...).
		Shell bool
		// Timeout kills the process once elapsed. Zero means no timeout.
		Timeout time.Duration
		// TTY starts a spawned process on a pseudo-terminal. Spawn only.
		TTY bool

		// Configure is called with the prepared command before it starts, for
		// settings not covered above (SysProcAttr, ExtraFiles, WaitDelay, ...).
		Configure func(cmd *exec.Cmd)
	}

	// Result describes a completed invocation.
	Result struct {
		// Args is the dispatched argument list.
		Args     []string
		ExitCode int
		// Stdout and Stderr are only populated when Options.Capture is set.
		Stdout []byte
		Stderr []byte
	}

	// Process is a live handle returned by Spawn. The caller owns it and must
	// call Wait.
	Process struct {
		*exec.Cmd
		// TTY is the controlling side of the pseudo-terminal when the process
		// was spawned with Options.TTY.
		TTY *os.File

		cancel context.CancelFunc
	}

	// Runner executes external processes with consistent environment handling
	// and diagnostics.
	Runner struct {
		env Environ
		log Sink
	}

	// DirError reports an Options.Dir that does not name an existing
	// directory. It is returned before the process is started.
	DirError struct {
		Dir string
		Err error
	}

	invocation struct {
		argv   []string
		shell  bool
		env    map[string]string
		cmd    *exec.Cmd
		ctx    context.Context
		cancel context.CancelFunc
	}
)

// New creates a Runner. A nil env uses the current process environment and a
// nil sink discards diagnostics.
func New(env Environ, sink Sink) *Runner {
	if env == nil {
		env = OSEnviron{}
	}
	if sink == nil {
		sink = diag.Discard()
	}
	return &Runner{env: env, log: sink}
}

// Run executes args and waits for completion. With Options.Check a non-zero
// exit is returned as the original *exec.ExitError alongside the Result.
// Errors starting the process are returned unchanged.
func (r *Runner) Run(ctx context.Context, opts Options, args ...any) (*Result, error) {
	inv, err := r.prepare(ctx, opts, args)
	if err != nil {
		return nil, err
	}
	defer inv.cancel()

	var stdout, stderr bytes.Buffer
	if opts.Capture {
		inv.cmd.Stdout = tee(&stdout, inv.cmd.Stdout)
		inv.cmd.Stderr = tee(&stderr, inv.cmd.Stderr)
	}

	err = inv.cmd.Run()

	res := &Result{Args: inv.argv, ExitCode: exitCode(inv.cmd)}
	if opts.Capture {
		res.Stdout = stdout.Bytes()
		res.Stderr = stderr.Bytes()
	}
	r.logPostExec(res.Stdout, res.Stderr, res.ExitCode)

	if err != nil {
		var exitErr *exec.ExitError
		if !opts.Check && errors.As(err, &exitErr) && inv.ctx.Err() == nil {
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// CheckOutput executes args and returns its standard output. Standard error
// is logged whether or not the command succeeds. A non-zero exit is returned
// as the original *exec.ExitError, whose Stderr holds the captured standard
// error unless Options.Stderr was set. Options.Stdout must be nil.
func (r *Runner) CheckOutput(ctx context.Context, opts Options, args ...any) ([]byte, error) {
	inv, err := r.prepare(ctx, opts, args)
	if err != nil {
		return nil, err
	}
	defer inv.cancel()

	var stderr bytes.Buffer
	own := inv.cmd.Stderr == nil
	inv.cmd.Stderr = tee(&stderr, inv.cmd.Stderr)

	out, err := inv.cmd.Output()

	var exitErr *exec.ExitError
	if own && errors.As(err, &exitErr) {
		exitErr.Stderr = stderr.Bytes()
	}
	r.logPostExec(out, stderr.Bytes(), exitCode(inv.cmd))

	return out, err
}

// Spawn starts args and returns immediately. Completion is not observed by
// the Runner; the caller must Wait on the returned Process.
func (r *Runner) Spawn(ctx context.Context, opts Options, args ...any) (*Process, error) {
	inv, err := r.prepare(ctx, opts, args)
	if err != nil {
		return nil, err
	}

	p := &Process{Cmd: inv.cmd, cancel: inv.cancel}
	if opts.TTY {
		p.TTY, err = pty.Start(inv.cmd)
	} else {
		err = inv.cmd.Start()
	}
	if err != nil {
		inv.cancel()
		return nil, err
	}
	return p, nil
}

// Wait waits for the process to exit and releases its resources.
func (p *Process) Wait() error {
	defer p.cancel()
	err := p.Cmd.Wait()
	if p.TTY != nil {
		_ = p.TTY.Close()
	}
	return err
}

// prepare builds the command and emits the pre-exec diagnostics.
func (r *Runner) prepare(ctx context.Context, opts Options, args []any) (*invocation, error) {
	argv := Strings(args)
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	env := Merge(r.env.Environ(), opts.Env)

	inv := &invocation{argv: argv, shell: opts.Shell, env: env, ctx: ctx, cancel: func() {}}
	if opts.Timeout > 0 {
		inv.ctx, inv.cancel = context.WithTimeout(ctx, opts.Timeout)
	}

	var cmd *exec.Cmd
	if opts.Shell {
		cmd = shellCommand(inv.ctx, argv[0], argv[1:])
	} else {
		cmd = exec.CommandContext(inv.ctx, argv[0], argv[1:]...)
	}
	cmd.Dir = NormalizeDir(opts.Dir)
	if cmd.Dir != "" {
		if err := checkDir(cmd.Dir); err != nil {
			inv.cancel()
			return nil, err
		}
	}
	cmd.Env = EnvSlice(env)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if opts.Configure != nil {
		opts.Configure(cmd)
	}
	inv.cmd = cmd

	r.logPreExec(inv)
	return inv, nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return &DirError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return &DirError{Dir: dir, Err: errors.New("not a directory")}
	}
	return nil
}

func (e *DirError) Error() string {
	return "working directory " + e.Dir + ": " + e.Err.Error()
}

func (e *DirError) Unwrap() error { return e.Err }

// NotFound reports whether err means the program could not be found. A
// missing working directory is not reported, although it also fails with
// ENOENT.
func NotFound(err error) bool {
	var dirErr *DirError
	if errors.As(err, &dirErr) {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func (r *Runner) logPreExec(inv *invocation) {
	var b diag.Block
	if r.log.Enabled(diag.Tier1) {
		b.Add("", "Running Command:", "    "+displayLine(inv.argv, inv.shell))
	}
	if r.log.Enabled(diag.Tier3) {
		b.Add("Environment:")
		for _, kv := range EnvSlice(inv.env) {
			b.Add("    " + kv)
		}
	}
	r.log.Flush(&b)
}

// displayLine renders argv for the log. A shell command line is shown as
// written, followed by its quoted positional arguments.
func displayLine(argv []string, shell bool) string {
	if !shell {
		return CommandLine(argv)
	}
	if len(argv) == 1 {
		return argv[0]
	}
	return argv[0] + " " + CommandLine(argv[1:])
}

func (r *Runner) logPostExec(stdout, stderr []byte, code int) {
	var b diag.Block
	if r.log.Enabled(diag.Tier2) {
		addOutput(&b, "Command Output:", stdout)
		addOutput(&b, "Command Error Output (stderr):", stderr)
	}
	b.Add(fmt.Sprintf("Return code: %d", code))
	r.log.Flush(&b)
}

func addOutput(b *diag.Block, title string, output []byte) {
	if len(output) == 0 {
		return
	}
	b.Add(title)
	for _, line := range strings.Split(strings.TrimRight(string(output), "\r\n"), "\n") {
		b.Add("    " + strings.TrimRight(line, "\r"))
	}
}

// exitCode reports the exit status, or -1 when the process never ran to
// completion (start failure or termination by signal).
func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
