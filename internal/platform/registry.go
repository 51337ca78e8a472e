// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"slices"
	"strings"

	"github.com/satchel-build/satchel/internal/issue"
)

// Lifecycle commands, in the order a release runs them.
const (
	CreateCommand  Command = "create"
	BuildCommand   Command = "build"
	RunCommand     Command = "run"
	PackageCommand Command = "package"
	PublishCommand Command = "publish"
)

type (
	// Command names one lifecycle step.
	Command string

	// Format is one output format of a platform.
	Format struct {
		Name string
		// Hosts lists the GOOS values that can build this format. Empty means
		// the platform's hosts apply.
		Hosts []string
		// Tools names the toolchain entries the format needs on the host.
		Tools []string
		// Commands lists the lifecycle commands implemented for the format.
		Commands []Command
	}

	// Platform is a deployment target.
	Platform struct {
		Name string
		// Hosts lists the GOOS values that can build for the platform. Empty
		// means any host.
		Hosts         []string
		DefaultFormat string
		Formats       []Format
	}

	// Registry resolves user-supplied platform and format names.
	Registry struct {
		platforms []Platform
	}
)

var allButPublish = []Command{CreateCommand, BuildCommand, RunCommand, PackageCommand}

// NewRegistry returns a registry over the given platforms.
func NewRegistry(platforms ...Platform) *Registry {
	return &Registry{platforms: slices.Clone(platforms)}
}

// DefaultRegistry returns the platforms satchel ships with.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Platform{
			Name:          "macOS",
			Hosts:         []string{Darwin},
			DefaultFormat: "app",
			Formats: []Format{
				{Name: "app", Tools: []string{"python", "xcrun"}, Commands: allButPublish},
				{Name: "xcode", Tools: []string{"python", "xcodebuild"}, Commands: allButPublish},
			},
		},
		Platform{
			Name:          "iOS",
			Hosts:         []string{Darwin},
			DefaultFormat: "xcode",
			Formats: []Format{
				{Name: "xcode", Tools: []string{"python", "xcodebuild"}, Commands: allButPublish},
			},
		},
		Platform{
			Name:          "linux",
			Hosts:         []string{Linux},
			DefaultFormat: "system",
			Formats: []Format{
				{Name: "system", Tools: []string{"python", "dpkg-deb"}, Commands: allButPublish},
				{Name: "appimage", Hosts: []string{Linux, Darwin}, Tools: []string{"docker"}, Commands: allButPublish},
				{Name: "flatpak", Tools: []string{"flatpak", "flatpak-builder"}, Commands: allButPublish},
			},
		},
		Platform{
			Name:          "windows",
			Hosts:         []string{Windows},
			DefaultFormat: "app",
			Formats: []Format{
				{Name: "app", Tools: []string{"python", "wix"}, Commands: allButPublish},
				{Name: "visualstudio", Tools: []string{"python", "msbuild"}, Commands: allButPublish},
			},
		},
		Platform{
			Name:          "android",
			DefaultFormat: "gradle",
			Formats: []Format{
				{Name: "gradle", Tools: []string{"javac"}, Commands: allButPublish},
			},
		},
		Platform{
			Name:          "web",
			DefaultFormat: "static",
			Formats: []Format{
				{Name: "static", Tools: []string{"python"}, Commands: allButPublish},
			},
		},
	)
}

// Names lists the platform names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.platforms))
	for _, p := range r.platforms {
		names = append(names, p.Name)
	}
	return names
}

// Resolve looks up a platform and one of its formats. An empty format name
// selects the platform's default format.
func (r *Registry) Resolve(platformName, formatName string) (Platform, Format, error) {
	idx := slices.IndexFunc(r.platforms, func(p Platform) bool { return p.Name == platformName })
	if idx < 0 {
		return Platform{}, Format{}, issue.New(issue.InvalidPlatform{Requested: platformName, Choices: r.Names()})
	}
	p := r.platforms[idx]
	if formatName == "" {
		formatName = p.DefaultFormat
	}
	f, ok := p.Format(formatName)
	if !ok {
		return Platform{}, Format{}, issue.New(issue.InvalidFormat{Requested: formatName, Choices: p.FormatNames()})
	}
	return p, f, nil
}

// Format returns the named format.
func (p Platform) Format(name string) (Format, bool) {
	idx := slices.IndexFunc(p.Formats, func(f Format) bool { return f.Name == name })
	if idx < 0 {
		return Format{}, false
	}
	return p.Formats[idx], true
}

// FormatNames lists the platform's format names.
func (p Platform) FormatNames() []string {
	names := make([]string, 0, len(p.Formats))
	for _, f := range p.Formats {
		names = append(names, f.Name)
	}
	return names
}

// Supports reports whether cmd is implemented for the format.
func (f Format) Supports(cmd Command) bool {
	return slices.Contains(f.Commands, cmd)
}

// CheckCommand returns an UnsupportedCommand entry when cmd is not
// implemented for the platform and format.
func CheckCommand(p Platform, f Format, cmd Command) error {
	if f.Supports(cmd) {
		return nil
	}
	return issue.New(issue.UnsupportedCommand{Platform: p.Name, Format: f.Name, Command: string(cmd)})
}

// CheckHost returns an UnsupportedHost entry when the host described by goos
// and sandbox cannot build the platform and format.
func CheckHost(p Platform, f Format, goos string, sandbox SandboxType) error {
	hosts := f.Hosts
	if len(hosts) == 0 {
		hosts = p.Hosts
	}
	if len(hosts) > 0 && !slices.Contains(hosts, goos) {
		names := make([]string, 0, len(hosts))
		for _, h := range hosts {
			names = append(names, HostName(h))
		}
		return issue.New(issue.UnsupportedHost{
			Reason: p.Name + " " + f.Name + " apps can only be built on " + strings.Join(names, " or ") + ".",
		})
	}
	if sandbox != SandboxNone {
		return issue.New(issue.UnsupportedHost{
			Reason: "Satchel cannot build " + p.Name + " apps from inside a " + sandbox.String() +
				" sandbox; the build tools it needs are not visible there. Run satchel on the host instead.",
		})
	}
	return nil
}
