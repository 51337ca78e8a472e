// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/satchel-build/satchel/internal/issue"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.cue"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := DefaultConfig()
	if cfg.Verbosity != want.Verbosity || cfg.LogDir != want.LogDir || cfg.UI != want.UI || cfg.Source != "" {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
verbosity: 2
save_log:  true
python:    "/opt/python3.12/bin/python3"
ui: color_scheme: "dark"
`)
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Verbosity != 2 || !cfg.SaveLog || cfg.Python != "/opt/python3.12/bin/python3" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark || cfg.UI.Style != DefaultStyle {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.LogDir != DefaultLogDir {
		t.Errorf("LogDir = %q, want the default to survive a partial file", cfg.LogDir)
	}
	if cfg.Source != filepath.Join(dir, "config.cue") {
		t.Errorf("Source = %q", cfg.Source)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `log_dir: "build/logs"`)
	path := filepath.Join(dir, "config.cue")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogDir != "build/logs" || cfg.Source != path {
		t.Errorf("Load() = %+v", cfg)
	}

	_, err = NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(dir, "missing.cue")})
	if !issue.IsKind(err, issue.BadConfigKind) || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"out of range verbosity", "verbosity: 7", "verbosity"},
		{"wrong type", `save_log: "yes"`, "save_log"},
		{"unknown color scheme", `ui: color_scheme: "neon"`, "color_scheme"},
		{"unknown field", `verbose: true`, "verbose"},
		{"syntax error", `verbosity: [`, "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := writeConfig(t, tt.content)
			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
			if !issue.IsKind(err, issue.BadConfigKind) {
				t.Fatalf("Load() error = %v, want a config error", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want it to mention %q", err.Error(), tt.want)
			}
			if issue.ExitStatus(err) != 100 {
				t.Errorf("ExitStatus() = %d", issue.ExitStatus(err))
			}
		})
	}
}

func TestLoadProjectDirFallback(t *testing.T) {
	t.Parallel()

	project := writeConfig(t, "save_log: true\n")
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		ProjectDir:    project,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.SaveLog || cfg.Source != filepath.Join(project, "config.cue") {
		t.Errorf("Load() = %+v, want the project's config.cue", cfg)
	}

	user := writeConfig(t, "save_log: false\n")
	cfg, err = NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: user, ProjectDir: project})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SaveLog || cfg.Source != filepath.Join(user, "config.cue") {
		t.Errorf("Load() = %+v, want the config directory to win", cfg)
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	got, err := LoadOptions{ConfigDirPath: "cfg", ProjectDir: "proj"}.Candidates()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != filepath.Join("cfg", "config.cue") || got[1] != filepath.Join("proj", "config.cue") {
		t.Errorf("Candidates() = %v", got)
	}

	got, err = LoadOptions{ConfigFilePath: "explicit.cue", ConfigDirPath: "cfg"}.Candidates()
	if err != nil || len(got) != 1 || got[0] != "explicit.cue" {
		t.Errorf("Candidates() with a file = %v, %v", got, err)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

//nolint:paralleltest // mutates the process environment
func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SATCHEL_VERBOSITY", "1")
	t.Setenv("SATCHEL_UI_COLOR_SCHEME", "light")

	dir := writeConfig(t, "verbosity: 3\n")
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Verbosity != 1 || cfg.UI.ColorScheme != ColorSchemeLight {
		t.Errorf("Load() = %+v, want environment overrides", cfg)
	}

	t.Setenv("SATCHEL_VERBOSITY", "9")
	_, err = NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if !issue.IsKind(err, issue.BadConfigKind) || !errors.Is(err, ErrInvalidVerbosity) {
		t.Errorf("Load() with SATCHEL_VERBOSITY=9 error = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Verbosity = 1
	cfg.CacheDir = "/var/cache/satchel"
	cfg.UI.ColorScheme = ColorSchemeLight

	dir := t.TempDir()
	path, err := Save(cfg, dir)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() of saved config error = %v", err)
	}
	if loaded.Verbosity != 1 || loaded.CacheDir != "/var/cache/satchel" || loaded.UI.ColorScheme != ColorSchemeLight {
		t.Errorf("round trip = %+v", loaded)
	}
}

func TestCacheDir(t *testing.T) {
	t.Parallel()

	if got, err := CacheDir(&Config{CacheDir: "/tmp/c"}); err != nil || got != "/tmp/c" {
		t.Errorf("CacheDir(explicit) = %q, %v", got, err)
	}
	if got, err := CacheDir(nil); err == nil && filepath.Base(got) != AppName {
		t.Errorf("CacheDir(nil) = %q", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Verbosity = -1
	cfg.UI.ColorScheme = "neon"
	err := cfg.Validate()

	var ice *InvalidConfigError
	if !errors.As(err, &ice) || len(ice.FieldErrors) != 2 {
		t.Fatalf("Validate() = %v", err)
	}
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(ice.FieldErrors[1], ErrInvalidColorScheme) {
		t.Errorf("Validate() does not wrap the sentinels: %v", err)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	if got := formatPath([]string{"ui", "color_scheme"}); got != "ui.color_scheme" {
		t.Errorf("formatPath() = %q", got)
	}
	if got := formatPath([]string{"apps", "0", "name"}); got != "apps[0].name" {
		t.Errorf("formatPath() = %q", got)
	}
}

//nolint:paralleltest // mutates the process environment
func TestConfigDirHonorsXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != filepath.Join(base, AppName) {
		t.Errorf("ConfigDir() = %q", dir)
	}
}
