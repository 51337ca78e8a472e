// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/satchel-build/satchel/internal/issue"
	"github.com/satchel-build/satchel/internal/subprocess"
)

type execFlags struct {
	cwd     string
	env     []string
	capture bool
	shell   bool
	tty     bool
	timeout time.Duration
}

func newExecCommand(app *App) *cobra.Command {
	var f execFlags
	c := &cobra.Command{
		Use:   "exec [flags] -- program [args...]",
		Short: "Run a program with satchel's environment and diagnostics",
		Long: `Run a program the way satchel runs its build tools.

The program inherits the current environment plus any --env overrides. Use
-v to echo the command line, -vv to echo its output and -vvv to dump the
environment it was started with.`,
		Args: cobra.MinimumNArgs(1),
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run("exec", func(ctx context.Context, s *session) error {
			return runExec(ctx, s, args, f)
		})(cmd, args)
	}

	flags := c.Flags()
	flags.StringVar(&f.cwd, "cwd", "", "working directory for the program")
	flags.StringArrayVarP(&f.env, "env", "e", nil, "set an environment variable (KEY=VALUE); repeatable")
	flags.BoolVar(&f.capture, "capture", false, "capture output into the log as well as printing it")
	flags.BoolVar(&f.shell, "shell", false, "run the first argument as a system shell command line; further arguments become $1, $2, ...")
	flags.BoolVar(&f.tty, "tty", false, "run the program on a pseudo-terminal")
	flags.DurationVar(&f.timeout, "timeout", 0, "kill the program after this long (0 means no limit)")
	return c
}

func runExec(ctx context.Context, s *session, argv []string, f execFlags) error {
	for _, entry := range f.env {
		if !strings.Contains(entry, "=") || strings.HasPrefix(entry, "=") {
			return issue.Commandf("Invalid --env value %q; expected KEY=VALUE.", entry)
		}
	}
	opts := subprocess.Options{
		Dir:     f.cwd,
		Env:     subprocess.ParseEnv(f.env),
		Shell:   f.shell,
		Timeout: f.timeout,
		Capture: f.capture,
		Stdout:  s.app.stdout,
		Stderr:  s.app.stderr,
	}
	if !s.noInput {
		opts.Stdin = s.app.stdin
	}

	if f.tty {
		if s.noInput {
			return issue.New(issue.InputDisabled{
				Message: fmt.Sprintf("Input is disabled; cannot attach a terminal to %s.", filepath.Base(argv[0])),
			})
		}
		return runOnTTY(ctx, s, argv, opts)
	}

	res, err := s.tools.Invoke(ctx, argv, opts)
	if err != nil {
		return err
	}
	s.log.Record("exec finished", "program", argv[0], "status", res.ExitCode)
	return nil
}

// runOnTTY spawns argv on a pseudo-terminal and relays it to the session's
// streams until the program exits.
func runOnTTY(ctx context.Context, s *session, argv []string, opts subprocess.Options) error {
	opts.TTY = true
	opts.Stdin, opts.Stdout, opts.Stderr = nil, nil, nil

	args := make([]any, len(argv))
	for i, a := range argv {
		args[i] = a
	}
	prog := filepath.Base(argv[0])

	p, err := s.runner.Spawn(ctx, opts, args...)
	if err != nil {
		var dirErr *subprocess.DirError
		if errors.As(err, &dirErr) {
			return issue.New(issue.CommandFailed{
				Message: fmt.Sprintf("Working directory %s does not exist.", dirErr.Dir),
			}, issue.WithCause(err))
		}
		if subprocess.NotFound(err) {
			return issue.New(issue.MissingTool{Tool: prog}, issue.WithCause(err))
		}
		return err
	}
	stop, _ := relayInput(p.TTY, s.app.stdin)
	// Reading the terminal fails with EIO once the program exits.
	_, _ = io.Copy(s.app.stdout, p.TTY)

	err = p.Wait()
	stop()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return issue.New(issue.CommandFailed{
			Message: fmt.Sprintf("%s exited with status %d", prog, exitErr.ExitCode()),
		}, issue.WithCause(err))
	}
	return err
}

// relayInput forwards in to the terminal on its own goroutine until stop is
// called or either side fails. Input read after stop is dropped. A read that
// is already blocked when stop is called ends the goroutine once it returns.
// done is closed when the goroutine exits.
func relayInput(tty io.Writer, in io.Reader) (stop func(), done <-chan struct{}) {
	var stopped atomic.Bool
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		buf := make([]byte, 32*1024)
		for {
			n, err := in.Read(buf)
			if stopped.Load() {
				return
			}
			if n > 0 {
				if _, werr := tty.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return func() { stopped.Store(true) }, finished
}
