// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for satchel.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/satchel-build/satchel/internal/issue"
	"github.com/satchel-build/satchel/internal/platform"
	"github.com/satchel-build/satchel/internal/project"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the satchel command tree over app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "satchel",
		Short: "Package Python projects as native apps",
		Long: TitleStyle.Render("satchel") + SubtitleStyle.Render(" - package Python projects as native apps") + `

satchel drives the platform tools (pip, xcodebuild, dpkg-deb, flatpak,
WiX, ...) that turn a project described by satchel.toml into an
installable app, and reports their failures in plain language.

` + SubtitleStyle.Render("Examples:") + `
  satchel verify linux system      Check the tools a Debian package needs
  satchel create macOS app         Create the macOS app scaffold
  satchel build linux flatpak      Run the configured build step
  satchel exec -- git status       Run a tool with satchel's diagnostics`,
		Args: cobra.ArbitraryArgs,
	}
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run("", func(context.Context, *session) error {
			return issue.New(issue.NoCommand{Message: noCommandMessage(cmd, args)})
		})(cmd, args)
	}

	flags := root.PersistentFlags()
	flags.CountVarP(&app.flags.verbosity, "verbose", "v", "increase diagnostic output (-v commands, -vv output, -vvv environment)")
	flags.BoolVar(&app.flags.saveLog, "log", false, "save a log file even if the command succeeds")
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/satchel/config.cue)")
	flags.BoolVar(&app.flags.noInput, "no-input", false, "never prompt; fail if input would be required")
	flags.StringVarP(&app.flags.projectDir, "project", "C", ".", "project directory containing "+project.FileName)

	root.AddCommand(newExecCommand(app))
	root.AddCommand(newVerifyCommand(app))
	root.AddCommand(newRequirementsCommand(app))
	root.AddCommand(newTestCommand(app))
	for _, c := range []platform.Command{
		platform.CreateCommand,
		platform.BuildCommand,
		platform.RunCommand,
		platform.PackageCommand,
		platform.PublishCommand,
	} {
		root.AddCommand(newLifecycleCommand(app, c))
	}
	root.AddCommand(newConfigCommand(app))

	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	return root
}

// noCommandMessage explains what to run instead when no subcommand matched.
func noCommandMessage(root *cobra.Command, args []string) string {
	var b strings.Builder
	if len(args) > 0 {
		fmt.Fprintf(&b, "Unknown command %q.\n\n", args[0])
	}
	b.WriteString("Usage: satchel <command> [flags]\n\nAvailable commands:\n")
	for _, c := range root.Commands() {
		if c.IsAvailableCommand() {
			fmt.Fprintf(&b, "  %-14s %s\n", c.Name(), c.Short)
		}
	}
	b.WriteString("\nRun 'satchel <command> --help' for details.")
	return b.String()
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// cancelSignals cancel the command context, so a running tool is stopped
// and the failure is reported like any other.
var cancelSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// Execute runs satchel and exits with the outcome's status.
func Execute() {
	app := NewApp(Dependencies{})
	os.Exit(run(context.Background(), app, os.Args[1:]))
}

// run executes the command tree with args and returns the exit status.
// Errors the commands already reported arrive as *ExitError; anything else
// comes from cobra itself (unknown command or flag) and is a usage error.
func run(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)

	err := fang.Execute(ctx, root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(cancelSignals...),
		fang.WithErrorHandler(func(io.Writer, fang.Styles, error) {}),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	usage := issue.New(issue.NoCommand{Message: strings.TrimSpace(err.Error())})
	fmt.Fprintln(app.stderr, ErrorStyle.Render(usage.Error()))
	fmt.Fprintln(app.stderr, SubtitleStyle.Render("Run 'satchel --help' for usage."))
	return issue.ExitStatus(usage)
}
