// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satchel-build/satchel/internal/issue"
	"github.com/satchel-build/satchel/internal/platform"
	"github.com/satchel-build/satchel/internal/subprocess"
	"github.com/satchel-build/satchel/internal/support"
)

var lifecycleShort = map[platform.Command]string{
	platform.CreateCommand:  "Create the app scaffold for a platform",
	platform.BuildCommand:   "Build the app for a platform",
	platform.RunCommand:     "Run the built app",
	platform.PackageCommand: "Package the app for distribution",
	platform.PublishCommand: "Publish the packaged app",
}

func newLifecycleCommand(app *App, command platform.Command) *cobra.Command {
	var appName string
	c := &cobra.Command{
		Use:   string(command) + " <platform> [format]",
		Short: lifecycleShort[command],
		Args:  cobra.RangeArgs(1, 2),
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run(string(command), func(ctx context.Context, s *session) error {
			return runLifecycle(ctx, s, command, args, appName)
		})(cmd, args)
	}
	c.Flags().StringVarP(&appName, "app", "a", "", "app to operate on when the project has several")
	return c
}

// runLifecycle runs one lifecycle step: it checks the platform, format and
// host, verifies the tools, prepares the support package on create and runs
// the app's configured step.
func runLifecycle(ctx context.Context, s *session, command platform.Command, args []string, appName string) error {
	var formatName string
	if len(args) > 1 {
		formatName = args[1]
	}
	p, f, err := s.app.Registry.Resolve(args[0], formatName)
	if err != nil {
		return err
	}
	if err := platform.CheckCommand(p, f, command); err != nil {
		return err
	}

	proj, a, err := loadApp(s, appName)
	if err != nil {
		return err
	}
	if err := a.CheckSupported(p.Name); err != nil {
		return err
	}
	if _, _, err := verifyTarget(ctx, s, []string{p.Name, f.Name}); err != nil {
		return err
	}
	if a.RequiresPython != "" {
		if err := s.tools.CheckInterpreter(ctx, a.RequiresPython); err != nil {
			return err
		}
	}

	bundle := filepath.Join(proj.Dir(), "build", a.Name, p.Name, f.Name)
	if command == platform.CreateCommand && a.SupportPackage != "" {
		inst, err := s.installer()
		if err != nil {
			return err
		}
		pkg := support.Package{URL: a.SupportPackage, SHA256: a.SupportSHA256}
		if !support.IsURL(pkg.URL) && !filepath.IsAbs(pkg.URL) {
			pkg.URL = filepath.Join(proj.Dir(), pkg.URL)
		}
		if err := inst.Install(ctx, pkg, filepath.Join(bundle, "support")); err != nil {
			return err
		}
	}

	argv, ok := a.Step(command)
	if !ok {
		s.log.Info("no step configured", "app", a.Name, "command", string(command))
	} else {
		opts := subprocess.Options{
			Dir: proj.Dir(),
			Env: map[string]string{
				"SATCHEL_APP":      a.Name,
				"SATCHEL_PLATFORM": p.Name,
				"SATCHEL_FORMAT":   f.Name,
				"SATCHEL_BUNDLE":   bundle,
			},
			Stdout: s.app.stdout,
			Stderr: s.app.stderr,
		}
		if _, err := s.tools.Invoke(ctx, argv, opts); err != nil {
			return err
		}
	}

	if command == platform.PackageCommand {
		checkDistribution(s, proj.Dir(), a.Distribution, a.FormalName)
	}
	return nil
}

// checkDistribution warns when packaging left no artifact behind.
func checkDistribution(s *session, dir, artifact, formalName string) {
	if artifact == "" {
		s.warn(issue.New(issue.NoDistributionArtifact{
			Message: fmt.Sprintf("No distribution artifact is configured for %s.", formalName),
		}))
		return
	}
	path := artifact
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	if _, err := os.Stat(path); err != nil {
		s.warn(issue.New(issue.NoDistributionArtifact{
			Message: fmt.Sprintf("No distribution artifact was found at %s.", path),
		}))
		return
	}
	fmt.Fprintf(s.app.stdout, "%s %s\n", SuccessStyle.Render("Packaged"), CmdStyle.Render(path))
}
