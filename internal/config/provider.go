// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"

	"github.com/satchel-build/satchel/internal/issue"
)

type (
	// LoadOptions selects where configuration is read from.
	LoadOptions struct {
		// ConfigFilePath names a file that must exist. It replaces the lookup.
		ConfigFilePath string
		// ConfigDirPath replaces the platform configuration directory.
		ConfigDirPath string
		// ProjectDir is searched for config.cue when the configuration
		// directory has none. Empty means the working directory.
		ProjectDir string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// ProviderFunc adapts a function to Provider.
	ProviderFunc func(ctx context.Context, opts LoadOptions) (*Config, error)
)

// Load calls f.
func (f ProviderFunc) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return f(ctx, opts)
}

// NewProvider returns the Provider that layers defaults, the config file and
// SATCHEL_ environment overrides.
func NewProvider() Provider {
	return ProviderFunc(loadWithOptions)
}

// Candidates lists the files a load with opts would consider, in order.
func (opts LoadOptions) Candidates() ([]string, error) {
	if opts.ConfigFilePath != "" {
		return []string{opts.ConfigFilePath}, nil
	}
	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return nil, err
		}
	}
	name := ConfigFileName + "." + ConfigFileExt
	return []string{filepath.Join(dir, name), filepath.Join(opts.ProjectDir, name)}, nil
}

// resolvePath picks the first existing candidate. An explicit file must
// exist; finding no file otherwise is not an error.
func resolvePath(opts LoadOptions) (string, error) {
	candidates, err := opts.Candidates()
	if err != nil {
		return "", issue.Config(err, "unable to locate the configuration directory: %v", err)
	}
	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	if opts.ConfigFilePath != "" {
		return "", issue.Config(nil, "config file not found: %s", opts.ConfigFilePath)
	}
	return "", nil
}
