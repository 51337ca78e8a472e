// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satchel-build/satchel/internal/config"
	"github.com/satchel-build/satchel/internal/issue"
)

// newConfigCommand creates the `satchel config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage satchel configuration",
		Long: `Manage satchel configuration.

Configuration is stored in:
  - Linux: ~/.config/satchel/config.cue
  - macOS: ~/Library/Application Support/satchel/config.cue
  - Windows: %APPDATA%\satchel\config.cue

Every key can be overridden with a SATCHEL_ environment variable, for
example SATCHEL_VERBOSITY=2 or SATCHEL_UI_COLOR_SCHEME=dark.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
	}
	show.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run("config", func(_ context.Context, s *session) error {
			showConfig(s)
			return nil
		})(cmd, args)
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
	}
	path.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run("config", func(context.Context, *session) error {
			return showConfigPath(app)
		})(cmd, args)
	}

	var (
		initDir string
		force   bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a config file",
		Args:  cobra.NoArgs,
	}
	initCmd.Flags().StringVar(&initDir, "dir", "", "directory to write config.cue into (default: the user config directory)")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	initCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run("config", func(_ context.Context, s *session) error {
			return initConfig(s, initDir, force)
		})(cmd, args)
	}

	cfgCmd.AddCommand(show, path, initCmd)
	return cfgCmd
}

func showConfig(s *session) {
	out := s.app.stdout
	cfg := s.cfg

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if cfg.Source != "" {
		fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("Config file"), cfg.Source)
	} else {
		fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, config.GenerateCUE(cfg))
}

// initConfig saves the session's effective configuration, so defaults and
// SATCHEL_ overrides in force become the file's contents.
func initConfig(s *session, dir string, force bool) error {
	if dir == "" {
		var err error
		if dir, err = config.ConfigDir(); err != nil {
			return err
		}
	}
	target := filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
	if _, err := os.Stat(target); err == nil && !force {
		return issue.Commandf("Configuration file %s already exists. Use --force to overwrite it.", target)
	}

	written, err := config.Save(s.cfg, dir)
	if err != nil {
		return err
	}
	s.log.Info("Wrote configuration", "path", written)
	fmt.Fprintln(s.app.stdout, written)
	return nil
}

func showConfigPath(app *App) error {
	if app.flags.configPath != "" {
		fmt.Fprintln(app.stdout, app.flags.configPath)
		return nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
