// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/satchel-build/satchel/internal/config"
	"github.com/satchel-build/satchel/internal/diag"
	"github.com/satchel-build/satchel/internal/platform"
	"github.com/satchel-build/satchel/internal/subprocess"
	"github.com/satchel-build/satchel/internal/support"
	"github.com/satchel-build/satchel/internal/toolchain"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every command handler receives it.
	App struct {
		Config   ConfigProvider
		Registry *platform.Registry

		environ    subprocess.Environ
		httpClient *http.Client
		goos       string
		sandbox    func() platform.SandboxType
		now        func() time.Time
		stdin      io.Reader
		stdout     io.Writer
		stderr     io.Writer

		flags globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		Registry   *platform.Registry
		Environ    subprocess.Environ
		HTTPClient *http.Client
		// GOOS overrides the host operating system used for host checks.
		GOOS    string
		Sandbox func() platform.SandboxType
		Now     func() time.Time
		Stdin   io.Reader
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	globalFlags struct {
		verbosity  int
		saveLog    bool
		configPath string
		noInput    bool
		projectDir string
	}

	// session is the per-invocation state shared by a command's handler and
	// the top-level reporting.
	session struct {
		app     *App
		command string
		cfg     *config.Config
		log     *diag.Logger
		runner  *subprocess.Runner
		tools   *toolchain.Toolchain
		noInput bool
		// warnings collects non-terminal warnings for the final report.
		warnings []error
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:     deps.Config,
		Registry:   deps.Registry,
		environ:    deps.Environ,
		httpClient: deps.HTTPClient,
		goos:       deps.GOOS,
		sandbox:    deps.Sandbox,
		now:        deps.Now,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Registry == nil {
		app.Registry = platform.DefaultRegistry()
	}
	if app.environ == nil {
		app.environ = subprocess.OSEnviron{}
	}
	if app.httpClient == nil {
		app.httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if app.goos == "" {
		app.goos = runtime.GOOS
	}
	if app.sandbox == nil {
		app.sandbox = platform.DetectSandbox
	}
	if app.now == nil {
		app.now = time.Now
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// newSession loads configuration and builds the logger, runner and
// toolchain for one command.
func (a *App) newSession(ctx context.Context, command string) (*session, error) {
	s := &session{app: a, command: command}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		ProjectDir:     a.projectDir(),
	})
	if err != nil {
		// The failure is still reported through a logger so the run has a
		// transcript if one is requested.
		s.log = diag.New(a.stderr, a.flags.verbosity)
		return s, err
	}
	s.cfg = cfg

	s.log = diag.New(a.stderr, max(a.flags.verbosity, cfg.Verbosity))
	s.log.Lazy(diag.Tier3, func() []string {
		lines := []string{"Effective configuration:"}
		for _, line := range strings.Split(strings.TrimRight(config.GenerateCUE(cfg), "\n"), "\n") {
			lines = append(lines, "    "+line)
		}
		return lines
	})
	s.runner = subprocess.New(a.environ, s.log)
	s.tools = toolchain.New(s.runner,
		toolchain.WithPython(cfg.Python),
		toolchain.WithDeepDebug(s.log.Enabled(diag.Tier2)),
	)
	s.noInput = a.flags.noInput || cfg.NoInput
	return s, nil
}

// run adapts a session handler to a cobra RunE, routing its outcome through
// the top-level report.
func (a *App) run(command string, fn func(ctx context.Context, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		s, err := a.newSession(ctx, command)
		if err == nil {
			err = fn(ctx, s)
		}
		return a.finish(ctx, s, err)
	}
}

// projectDir returns the absolute project directory.
func (a *App) projectDir() string {
	dir := a.flags.projectDir
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// installer builds a support package installer over the session's cache.
func (s *session) installer() (*support.Installer, error) {
	cacheDir, err := config.CacheDir(s.cfg)
	if err != nil {
		return nil, err
	}
	return support.NewInstaller(cacheDir,
		support.WithHTTPClient(s.app.httpClient),
		support.WithUserAgent("satchel/"+Version),
		support.WithLogger(s.log),
	), nil
}

// warn records a non-terminal warning; it is printed with the final report.
func (s *session) warn(err error) {
	s.warnings = append(s.warnings, err)
	s.log.Record("warning", "message", err.Error())
}
