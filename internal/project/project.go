// SPDX-License-Identifier: MPL-2.0

// Package project loads satchel.toml, the file that describes a project and
// the apps it packages.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/satchel-build/satchel/internal/issue"
	"github.com/satchel-build/satchel/internal/platform"
)

// FileName is the project file looked up in the project directory.
const FileName = "satchel.toml"

var appNamePattern = regexp.MustCompile(`^(?i:[a-z0-9]|[a-z0-9][a-z0-9._-]*[a-z0-9])$`)

type (
	// Project is a decoded satchel.toml.
	Project struct {
		Name    string          `toml:"project_name"`
		Version string          `toml:"version"`
		Apps    map[string]*App `toml:"app"`

		dir string
	}

	// App is one [app.<name>] table.
	App struct {
		Name         string              `toml:"-"`
		FormalName   string              `toml:"formal_name"`
		Sources      []string            `toml:"sources"`
		TestSources  []string            `toml:"test_sources"`
		Requires     []string            `toml:"requires"`
		TestRequires []string            `toml:"test_requires"`
		TestCommand  []string            `toml:"test_command"`
		Supported    *bool               `toml:"supported"`
		Steps        map[string][]string `toml:"steps"`
		Distribution string              `toml:"distribution"`

		// RequiresPython is a version specifier such as ">=3.10".
		RequiresPython string `toml:"requires_python"`
		// SupportPackage is a URL or path to the support archive unpacked by
		// create.
		SupportPackage string `toml:"support_package"`
		SupportSHA256  string `toml:"support_sha256"`
	}
)

// Load reads dir/satchel.toml. Every failure is a BadConfig entry.
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, issue.Config(err, "%s does not contain a %s file; is this a satchel project?", dirLabel(dir), FileName)
		}
		return nil, issue.Config(err, "unable to read %s: %v", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p.dir = dir
	return p, nil
}

// Parse decodes and validates project file content. Unknown keys are
// rejected.
func Parse(data []byte) (*Project, error) {
	var p Project
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, decodeIssue(err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func decodeIssue(err error) error {
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		keys := make([]string, 0, len(strict.Errors))
		for _, e := range strict.Errors {
			keys = append(keys, strings.Join(e.Key(), "."))
		}
		return issue.Config(err, "unknown key(s) in %s: %s", FileName, strings.Join(keys, ", "))
	}
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return issue.Config(err, "unable to parse %s (line %d, column %d): %v", FileName, row, col, decodeErr)
	}
	return issue.Config(err, "unable to parse %s: %v", FileName, err)
}

func (p *Project) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return issue.Config(nil, "%s does not define a project_name", FileName)
	}
	if strings.TrimSpace(p.Version) == "" {
		return issue.Config(nil, "%s does not define a version", FileName)
	}
	if len(p.Apps) == 0 {
		return issue.Config(nil, "%s does not define any [app.<name>] sections", FileName)
	}
	for name, app := range p.Apps {
		if app == nil {
			app = &App{}
			p.Apps[name] = app
		}
		if !appNamePattern.MatchString(name) {
			return issue.Config(nil, "%q is not a valid app name; use letters, digits, '.', '_' and '-', starting and ending with a letter or digit", name)
		}
		if platform.IsWindowsReservedName(name) {
			return issue.Config(nil, "%q is a reserved name on Windows and cannot be used as an app name", name)
		}
		app.Name = name
		if app.FormalName == "" {
			app.FormalName = name
		}
		for step := range app.Steps {
			if !slices.Contains(Steps(), platform.Command(step)) {
				return issue.Config(nil, "app %q defines an unknown step %q", name, step)
			}
			if len(app.Steps[step]) == 0 {
				return issue.Config(nil, "app %q defines an empty command for step %q", name, step)
			}
		}
	}
	return nil
}

// Steps lists the lifecycle commands an app may define a command for.
func Steps() []platform.Command {
	return []platform.Command{
		platform.CreateCommand,
		platform.BuildCommand,
		platform.RunCommand,
		platform.PackageCommand,
		platform.PublishCommand,
	}
}

// Dir returns the directory the project was loaded from.
func (p *Project) Dir() string { return p.dir }

// SortedApps returns the apps ordered by name.
func (p *Project) SortedApps() []*App {
	names := make([]string, 0, len(p.Apps))
	for name := range p.Apps {
		names = append(names, name)
	}
	slices.Sort(names)
	apps := make([]*App, 0, len(names))
	for _, name := range names {
		apps = append(apps, p.Apps[name])
	}
	return apps
}

// Select picks the app a command acts on. An empty name is accepted only
// when the project holds a single app.
func (p *Project) Select(name string) (*App, error) {
	if name == "" {
		if len(p.Apps) == 1 {
			return p.SortedApps()[0], nil
		}
		return nil, issue.Commandf("Project specifies more than one application; use --app to specify which one to use.")
	}
	app, ok := p.Apps[name]
	if !ok {
		return nil, issue.Commandf("App %q does not exist in this project.", name)
	}
	return app, nil
}

// IsSupported reports whether the app can be deployed at all. Apps are
// supported unless they opt out.
func (a *App) IsSupported() bool {
	return a.Supported == nil || *a.Supported
}

// CheckSupported returns an UnsupportedPlatform entry for apps that opted out.
func (a *App) CheckSupported(platformName string) error {
	if a.IsSupported() {
		return nil
	}
	return issue.New(issue.UnsupportedPlatform{Platform: platformName})
}

// SourcePaths resolves the app's sources against base. Test sources are
// included when test is set. A missing source is a MissingAppSources entry.
func (a *App) SourcePaths(base string, test bool) ([]string, error) {
	sources := slices.Clone(a.Sources)
	if test {
		sources = append(sources, a.TestSources...)
	}
	paths := make([]string, 0, len(sources))
	for _, src := range sources {
		path := filepath.Join(base, src)
		if _, err := os.Stat(path); err != nil {
			return nil, issue.New(issue.MissingAppSources{Source: src}, issue.WithCause(err))
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Requirements returns the app's requirements, with test requirements when
// test is set. Local path requirements are made absolute against base.
func (a *App) Requirements(base string, test bool) []string {
	reqs := slices.Clone(a.Requires)
	if test {
		reqs = append(reqs, a.TestRequires...)
	}
	for i, req := range reqs {
		if IsLocalRequirement(req) {
			abs, err := filepath.Abs(filepath.Join(base, req))
			if err == nil {
				reqs[i] = abs
			}
		}
	}
	return reqs
}

// Step returns the command configured for a lifecycle step.
func (a *App) Step(cmd platform.Command) ([]string, bool) {
	argv, ok := a.Steps[string(cmd)]
	return slices.Clone(argv), ok
}

var urlSchemes = []string{
	"http", "https", "file", "ftp",
	"git+file", "git+https", "git+ssh", "git+http", "git+git", "git",
	"hg+file", "hg+http", "hg+https", "hg+ssh", "hg+static-http",
	"svn", "svn+svn", "svn+http", "svn+https", "svn+ssh",
	"bzr+http", "bzr+https", "bzr+ssh", "bzr+sftp", "bzr+ftp", "bzr+lp",
}

// HasURL reports whether a requirement is given as a URL pip understands.
func HasURL(req string) bool {
	return slices.ContainsFunc(urlSchemes, func(scheme string) bool {
		return strings.Contains(req, scheme+":")
	})
}

// IsLocalRequirement reports whether a requirement names a local path.
// Both separators count on Windows.
func IsLocalRequirement(req string) bool {
	hasSep := strings.ContainsRune(req, filepath.Separator) ||
		(filepath.Separator != '/' && strings.ContainsRune(req, '/'))
	return hasSep && !HasURL(req)
}

func dirLabel(dir string) string {
	if dir == "" || dir == "." {
		return "The current directory"
	}
	return fmt.Sprintf("Directory %s", dir)
}
