// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// DefaultNetworkHint is used when a NetworkFailure carries no hint.
	DefaultNetworkHint = "is your computer offline?"

	// DefaultInputDisabledMessage is used when InputDisabled carries no message.
	DefaultInputDisabledMessage = "Input is disabled; cannot request user input without a default"

	// MetadataFile is the file name looked up inside an app bundle.
	MetadataFile = "satchel.toml"
)

// message produces the user-facing message for a payload. It depends on the
// payload alone.
func message(p Payload) string {
	switch p := p.(type) {
	case NoCommand:
		return p.Message
	case InvalidPlatform:
		return fmt.Sprintf("Invalid platform %s; (choose from: %s)", quote(p.Requested), joinChoices(p.Choices))
	case InvalidFormat:
		return fmt.Sprintf("Invalid format %s; (choose from: %s)", quote(p.Requested), joinChoices(p.Choices))
	case UnsupportedCommand:
		return fmt.Sprintf("The %s command for the %s %s format has not been implemented (yet!).", p.Command, p.Platform, p.Format)
	case InputDisabled:
		if p.Message == "" {
			return DefaultInputDisabledMessage
		}
		return p.Message
	case BadConfig:
		return "Satchel configuration error: " + p.Message
	case UnsupportedHost:
		return p.Reason
	case CommandFailed:
		return p.Message
	case NetworkFailure:
		hint := p.Hint
		if hint == "" {
			hint = DefaultNetworkHint
		}
		return fmt.Sprintf("Unable to %s; %s", p.Action, hint)
	case MissingNetworkResource:
		return fmt.Sprintf("Unable to download %s; is the URL correct?", p.URL)
	case BadNetworkResource:
		return fmt.Sprintf("Unable to download %s (status code %d)", p.URL, p.StatusCode)
	case MissingTool:
		return fmt.Sprintf("Unable to locate %s. Has it been installed?", quote(p.Tool))
	case IncompatibleTool:
		return fmt.Sprintf("Satchel cannot install %s on this machine.\n\n"+
			"Install %s manually and specify the installation directory in the %s environment variable.",
			p.Tool, p.Tool, p.EnvVar)
	case NonManagedTool:
		return fmt.Sprintf("%s is using an install that is user managed.", quote(p.Tool))
	case UpgradeTool:
		return p.Message
	case InvalidTemplateBranch:
		return fmt.Sprintf("Could not find a branch named %s in template repository %s.", quote(p.Branch), quote(p.Repository))
	case InvalidTemplateRepository:
		return fmt.Sprintf("Unable to clone application template; is the template path %s correct?", quote(p.Template))
	case UnsupportedPlatform:
		return fmt.Sprintf("App cannot be deployed on %s. This is probably because one or more\n"+
			"requirements (e.g., the GUI library) doesn't support %s.\n", p.Platform, p.Platform)
	case InvalidSupportPackage:
		return fmt.Sprintf("Unable to unpack support package %s.", quote(p.Filename))
	case InvalidStubBinary:
		return fmt.Sprintf("Unable to unpack or copy stub binary %s.", quote(p.Filename))
	case MissingAppMetadata:
		return fmt.Sprintf("Unable to find %s", quote(filepath.Join(p.BundlePath, MetadataFile)))
	case MissingSupportPackage:
		return missingDownload("support package", "Compile your own custom support package.",
			p.InterpreterVersion, p.Platform, p.HostArch, p.Is32Bit)
	case MissingStubBinary:
		return missingDownload("stub binary", "Compile your own stub binary.",
			p.InterpreterVersion, p.Platform, p.HostArch, p.Is32Bit)
	case RequirementsInstall:
		return "Unable to install requirements. This may be because one of your\n" +
			"requirements is invalid, or because pip was unable to connect\n" +
			"to the PyPI server." + p.Hint + "\n"
	case UnsupportedInterpreterVersion:
		return fmt.Sprintf("Unable to run Satchel command. The project configuration requires\n"+
			"Python versions %s, but the environment's Python\n"+
			"version is %s. Please run Satchel using a Python\n"+
			"version that satisfies the project's requirements.\n", p.Specifier, p.Running)
	case MissingAppSources:
		return fmt.Sprintf("Application source %s does not exist.", quote(p.Source))
	case InvalidDevice:
		return fmt.Sprintf("Invalid device %s %s", p.IDType, quote(p.Device))
	case CorruptTool:
		return fmt.Sprintf("%s found, but it appears to be corrupted.", quote(p.Tool))
	case CommandOutputParse:
		return "Unable to parse command output: " + p.Detail
	case TestSuiteFailure:
		return "Test suite failed."
	case NoDistributionArtifact:
		return p.Message
	case NotarizationInterrupted:
		return p.Message
	default:
		return fmt.Sprintf("unknown issue %T", p)
	}
}

func missingDownload(what, remedy, version, platformName, arch string, is32Bit bool) string {
	if is32Bit {
		platformName = "32 bit " + platformName
	}
	return fmt.Sprintf("Unable to download %s %s for Python %s on %s.\n\n"+
		"This is likely because either Python %s and/or %s is not yet\n"+
		"supported on %s. You will need to:\n"+
		"    * Use an older version of Python; or\n"+
		"    * %s\n",
		platformName, what, version, arch, version, arch, platformName, remedy)
}

// joinChoices lists choices sorted case-insensitively, keeping the input
// order of entries that differ only in case.
func joinChoices(choices []string) string {
	sorted := slices.Clone(choices)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return strings.Join(sorted, ", ")
}

// quote wraps s in single quotes, switching to double quotes when s holds a
// single quote but no double quote. Backslashes and the chosen quote are
// escaped.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' || c == q:
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String()
}
