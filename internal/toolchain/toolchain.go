// SPDX-License-Identifier: MPL-2.0

// Package toolchain drives the external tools satchel builds with and turns
// their failures into reportable issues.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/satchel-build/satchel/internal/issue"
	"github.com/satchel-build/satchel/internal/platform"
	"github.com/satchel-build/satchel/internal/subprocess"
)

type (
	// Executor runs external processes. *subprocess.Runner implements it.
	Executor interface {
		Run(ctx context.Context, opts subprocess.Options, args ...any) (*subprocess.Result, error)
		CheckOutput(ctx context.Context, opts subprocess.Options, args ...any) ([]byte, error)
	}

	// Tool describes how to probe a host tool for its version.
	Tool struct {
		Name string
		// Probe is the command that prints the version.
		Probe []string
		// Pattern extracts the version from the probe's output; the first
		// submatch is the version.
		Pattern *regexp.Regexp
	}

	// Report is the outcome of verifying one tool.
	Report struct {
		Tool    string
		Version string
	}

	// Toolchain verifies and invokes host tools.
	Toolchain struct {
		exec      Executor
		python    string
		tools     map[string]Tool
		deepDebug bool
	}

	// Option configures a Toolchain.
	Option func(*Toolchain)
)

// WithPython sets the interpreter used for pip and version checks.
func WithPython(path string) Option {
	return func(t *Toolchain) {
		if path != "" {
			t.python = path
		}
	}
}

// WithTools adds or replaces catalog entries.
func WithTools(tools ...Tool) Option {
	return func(t *Toolchain) {
		for _, tool := range tools {
			t.tools[tool.Name] = tool
		}
	}
}

// WithDeepDebug makes pip log verbosely.
func WithDeepDebug(on bool) Option {
	return func(t *Toolchain) { t.deepDebug = on }
}

// New creates a Toolchain over exec with the default tool catalog.
func New(exec Executor, opts ...Option) *Toolchain {
	t := &Toolchain{exec: exec, python: DefaultPython(), tools: map[string]Tool{}}
	for _, opt := range opts {
		opt(t)
	}
	for _, tool := range Catalog(t.python) {
		if _, ok := t.tools[tool.Name]; !ok {
			t.tools[tool.Name] = tool
		}
	}
	return t
}

// DefaultPython returns the interpreter command used when none is configured.
func DefaultPython() string {
	if runtime.GOOS == platform.Windows {
		return "python"
	}
	return "python3"
}

// Catalog returns the built-in tool probes.
func Catalog(python string) []Tool {
	return []Tool{
		{Name: "python", Probe: []string{python, "--version"}, Pattern: regexp.MustCompile(`Python (\S+)`)},
		{Name: "git", Probe: []string{"git", "--version"}, Pattern: regexp.MustCompile(`git version (\S+)`)},
		{Name: "xcrun", Probe: []string{"xcrun", "--version"}, Pattern: regexp.MustCompile(`xcrun version (\d+(?:\.\d+)*)`)},
		{Name: "xcodebuild", Probe: []string{"xcodebuild", "-version"}, Pattern: regexp.MustCompile(`Xcode (\S+)`)},
		{Name: "dpkg-deb", Probe: []string{"dpkg-deb", "--version"}, Pattern: regexp.MustCompile(`version (\d+(?:\.\d+)+)`)},
		{Name: "docker", Probe: []string{"docker", "--version"}, Pattern: regexp.MustCompile(`Docker version ([^,\s]+)`)},
		{Name: "flatpak", Probe: []string{"flatpak", "--version"}, Pattern: regexp.MustCompile(`Flatpak (\S+)`)},
		{Name: "flatpak-builder", Probe: []string{"flatpak-builder", "--version"}, Pattern: regexp.MustCompile(`flatpak-builder (\S+)`)},
		{Name: "wix", Probe: []string{"wix", "--version"}, Pattern: regexp.MustCompile(`(?m)^(\d+\.\d+\S*)`)},
		{Name: "msbuild", Probe: []string{"msbuild", "-version", "-nologo"}, Pattern: regexp.MustCompile(`(?m)^(\d+\.\d+\.\d+(?:\.\d+)?)\s*$`)},
		{Name: "javac", Probe: []string{"javac", "-version"}, Pattern: regexp.MustCompile(`javac (\S+)`)},
	}
}

// Python returns the configured interpreter command.
func (t *Toolchain) Python() string { return t.python }

// Verify runs the tool's probe and returns its version. A tool that cannot be
// found is a MissingTool entry, a probe that fails is a CorruptTool entry and
// output without a version is a CommandOutputParse entry.
func (t *Toolchain) Verify(ctx context.Context, name string) (Report, error) {
	tool, ok := t.tools[name]
	if !ok {
		return Report{}, issue.Commandf("Satchel does not know how to verify %q.", name)
	}
	out, err := t.exec.CheckOutput(ctx, subprocess.Options{}, toArgs(tool.Probe)...)
	if err != nil {
		if subprocess.NotFound(err) {
			return Report{}, issue.New(issue.MissingTool{Tool: name}, issue.WithCause(err))
		}
		if ctx.Err() != nil {
			return Report{}, err
		}
		return Report{}, issue.New(issue.CorruptTool{Tool: name}, issue.WithCause(err))
	}
	m := tool.Pattern.FindSubmatch(out)
	if m == nil {
		return Report{}, issue.New(issue.CommandOutputParse{
			Detail: fmt.Sprintf("no version found in the output of %s", strings.Join(tool.Probe, " ")),
		})
	}
	return Report{Tool: name, Version: string(m[1])}, nil
}

// VerifyAll verifies tools in order and stops at the first failure.
func (t *Toolchain) VerifyAll(ctx context.Context, names []string) ([]Report, error) {
	reports := make([]Report, 0, len(names))
	for _, name := range names {
		r, err := t.Verify(ctx, name)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// InterpreterVersion returns the version of the configured interpreter.
func (t *Toolchain) InterpreterVersion(ctx context.Context) (string, error) {
	out, err := t.exec.CheckOutput(ctx, subprocess.Options{},
		t.python, "-c", "import platform; print(platform.python_version())")
	if err != nil {
		if subprocess.NotFound(err) {
			return "", issue.New(issue.MissingTool{Tool: t.python}, issue.WithCause(err))
		}
		return "", err
	}
	version := strings.TrimSpace(string(out))
	if version == "" {
		return "", issue.New(issue.CommandOutputParse{Detail: t.python + " reported no version"})
	}
	return version, nil
}

// CheckInterpreter fails with an UnsupportedInterpreterVersion entry when the
// interpreter does not satisfy specifier. An empty specifier always passes.
func (t *Toolchain) CheckInterpreter(ctx context.Context, specifier string) error {
	spec, err := ParseSpecifier(specifier)
	if err != nil {
		return issue.Config(err, "requires_python: %v", err)
	}
	if spec.String() == "" {
		return nil
	}
	version, err := t.InterpreterVersion(ctx)
	if err != nil {
		return err
	}
	if !spec.Allows(version) {
		return issue.New(issue.UnsupportedInterpreterVersion{Specifier: spec.String(), Running: version})
	}
	return nil
}

// InstallRequest describes one pip install.
type InstallRequest struct {
	Requirements []string
	// Target is the directory packages are installed into.
	Target string
	// Hint is appended to the failure message.
	Hint string
	// ExtraArgs are passed to pip before the requirements.
	ExtraArgs []string
}

// InstallRequirements installs req.Requirements into req.Target with pip.
// Nothing runs when there are no requirements.
func (t *Toolchain) InstallRequirements(ctx context.Context, req InstallRequest) error {
	if len(req.Requirements) == 0 {
		return nil
	}
	args := []any{
		t.python, "-u", "-X", "utf8", "-m", "pip", "install",
		"--disable-pip-version-check",
		"--no-python-version-warning",
		"--upgrade",
		"--no-user",
		"--target=" + filepath.Clean(req.Target),
	}
	if t.deepDebug {
		args = append(args, "-vv")
	}
	args = append(args, toArgs(req.ExtraArgs)...)
	args = append(args, toArgs(req.Requirements)...)

	_, err := t.exec.Run(ctx, subprocess.Options{Check: true, Env: map[string]string{"PYTHONUTF8": "1"}}, args...)
	if err == nil {
		return nil
	}
	if subprocess.NotFound(err) {
		return issue.New(issue.MissingTool{Tool: t.python}, issue.WithCause(err))
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return issue.New(issue.RequirementsInstall{Hint: req.Hint}, issue.WithCause(err))
	}
	return err
}

// Invoke runs argv and translates failures: a missing program is a
// MissingTool entry. A missing working directory, a non-zero exit and an
// expired timeout are CommandFailed entries.
func (t *Toolchain) Invoke(ctx context.Context, argv []string, opts subprocess.Options) (*subprocess.Result, error) {
	if len(argv) == 0 {
		return nil, subprocess.ErrEmptyCommand
	}
	opts.Check = true
	res, err := t.exec.Run(ctx, opts, toArgs(argv)...)
	if err == nil {
		return res, nil
	}
	prog := filepath.Base(argv[0])
	if dirErr := noDir(err); dirErr != nil {
		return res, dirErr
	}
	if subprocess.NotFound(err) {
		return res, issue.New(issue.MissingTool{Tool: prog}, issue.WithCause(err))
	}
	if opts.Timeout > 0 && ctx.Err() == nil && res != nil && res.ExitCode == -1 {
		return res, issue.New(issue.CommandFailed{
			Message: fmt.Sprintf("%s did not finish within %s", prog, opts.Timeout),
		}, issue.WithCause(err))
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return res, issue.New(issue.CommandFailed{
			Message: fmt.Sprintf("%s exited with status %d", prog, exitErr.ExitCode()),
		}, issue.WithCause(err))
	}
	return res, err
}

// RunTests runs a test command. A non-zero exit is a TestSuiteFailure entry.
func (t *Toolchain) RunTests(ctx context.Context, argv []string, opts subprocess.Options) error {
	if len(argv) == 0 {
		return subprocess.ErrEmptyCommand
	}
	opts.Check = true
	_, err := t.exec.Run(ctx, opts, toArgs(argv)...)
	if err == nil {
		return nil
	}
	if dirErr := noDir(err); dirErr != nil {
		return dirErr
	}
	if subprocess.NotFound(err) {
		return issue.New(issue.MissingTool{Tool: filepath.Base(argv[0])}, issue.WithCause(err))
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return issue.New(issue.TestSuiteFailure{}, issue.WithCause(err))
	}
	return err
}

// Names lists the catalog's tool names in sorted order.
func (t *Toolchain) Names() []string {
	names := make([]string, 0, len(t.tools))
	for name := range t.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// noDir maps a missing working directory to a command failure; it returns
// nil for any other error.
func noDir(err error) error {
	var dirErr *subprocess.DirError
	if !errors.As(err, &dirErr) {
		return nil
	}
	return issue.New(issue.CommandFailed{
		Message: fmt.Sprintf("Working directory %s does not exist.", dirErr.Dir),
	}, issue.WithCause(err))
}

func toArgs(argv []string) []any {
	args := make([]any, len(argv))
	for i, a := range argv {
		args[i] = a
	}
	return args
}
