// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchel-build/satchel/internal/platform"
)

func newVerifyCommand(app *App) *cobra.Command {
	c := &cobra.Command{
		Use:   "verify <platform> [format]",
		Short: "Check that the host can build a platform and format",
		Args:  cobra.RangeArgs(1, 2),
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run("verify", func(ctx context.Context, s *session) error {
			_, _, err := verifyTarget(ctx, s, args)
			return err
		})(cmd, args)
	}
	return c
}

// verifyTarget resolves the platform and format named by args, checks the
// host can build them and verifies every tool the format needs.
func verifyTarget(ctx context.Context, s *session, args []string) (platform.Platform, platform.Format, error) {
	var formatName string
	if len(args) > 1 {
		formatName = args[1]
	}
	p, f, err := s.app.Registry.Resolve(args[0], formatName)
	if err != nil {
		return p, f, err
	}
	if err := platform.CheckHost(p, f, s.app.goos, s.app.sandbox()); err != nil {
		return p, f, err
	}

	reports, err := s.tools.VerifyAll(ctx, f.Tools)
	for _, r := range reports {
		fmt.Fprintf(s.app.stdout, "%s %s %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(r.Tool), SubtitleStyle.Render(r.Version))
	}
	return p, f, err
}
