// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satchel-build/satchel/internal/project"
	"github.com/satchel-build/satchel/internal/subprocess"
	"github.com/satchel-build/satchel/internal/toolchain"
)

func newRequirementsCommand(app *App) *cobra.Command {
	var (
		appName string
		target  string
		test    bool
	)
	c := &cobra.Command{
		Use:   "requirements",
		Short: "Install an app's requirements with pip",
		Args:  cobra.NoArgs,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run("requirements", func(ctx context.Context, s *session) error {
			proj, a, err := loadApp(s, appName)
			if err != nil {
				return err
			}
			if _, err := a.SourcePaths(proj.Dir(), test); err != nil {
				return err
			}
			if err := s.tools.CheckInterpreter(ctx, a.RequiresPython); err != nil {
				return err
			}
			dest := target
			if dest == "" {
				dest = filepath.Join(proj.Dir(), "build", a.Name, "app_packages")
			}
			s.log.Info("installing requirements", "app", a.Name, "target", dest)
			return s.tools.InstallRequirements(ctx, toolchain.InstallRequest{
				Requirements: a.Requirements(proj.Dir(), test),
				Target:       dest,
			})
		})(cmd, args)
	}

	flags := c.Flags()
	flags.StringVarP(&appName, "app", "a", "", "app to install requirements for")
	flags.StringVar(&target, "target", "", "directory to install into (default build/<app>/app_packages)")
	flags.BoolVar(&test, "test", false, "include test requirements and check test sources")
	return c
}

func newTestCommand(app *App) *cobra.Command {
	var appName string
	c := &cobra.Command{
		Use:   "test [--app NAME] [-- program args...]",
		Short: "Run an app's test suite",
		Long: `Run an app's test suite.

The command comes from the app's test_command in satchel.toml unless one is
given after --. A failing suite exits with status 232.`,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run("test", func(ctx context.Context, s *session) error {
			proj, a, err := loadApp(s, appName)
			if err != nil {
				return err
			}
			if _, err := a.SourcePaths(proj.Dir(), true); err != nil {
				return err
			}
			argv := args
			if len(argv) == 0 {
				argv = a.TestCommand
			}
			if len(argv) == 0 {
				argv = []string{s.tools.Python(), "-m", "pytest"}
			}
			opts := subprocess.Options{
				Dir:    proj.Dir(),
				Env:    map[string]string{"SATCHEL_APP": a.Name},
				Stdout: s.app.stdout,
				Stderr: s.app.stderr,
			}
			return s.tools.RunTests(ctx, argv, opts)
		})(cmd, args)
	}
	c.Flags().StringVarP(&appName, "app", "a", "", "app to test")
	return c
}

// loadApp loads the project and selects the named app.
func loadApp(s *session, name string) (*project.Project, *project.App, error) {
	proj, err := project.Load(s.app.projectDir())
	if err != nil {
		return nil, nil, err
	}
	a, err := proj.Select(name)
	if err != nil {
		return nil, nil, err
	}
	return proj, a, nil
}
