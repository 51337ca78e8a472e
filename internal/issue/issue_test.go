// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// samplePayloads holds one payload per kind.
func samplePayloads() []Payload {
	return []Payload{
		NoCommand{Message: "usage: satchel <command>"},
		InvalidPlatform{Requested: "bsd", Choices: []string{"macOS", "iOS"}},
		InvalidFormat{Requested: "dmg2", Choices: []string{"xcode", "app"}},
		UnsupportedCommand{Platform: "macOS", Format: "xcode", Command: "publish"},
		InputDisabled{},
		BadConfig{Message: "missing project_name"},
		UnsupportedHost{Reason: "macOS apps can only be built on macOS."},
		CommandFailed{Message: "git exited with status 1"},
		NetworkFailure{Action: "download support package"},
		MissingNetworkResource{URL: "https://example.com/x.zip"},
		BadNetworkResource{URL: "https://example.com/x.zip", StatusCode: 404},
		MissingTool{Tool: "git"},
		IncompatibleTool{Tool: "Java JDK", EnvVar: "JAVA_HOME"},
		NonManagedTool{Tool: "android-sdk"},
		UpgradeTool{Message: "Java cannot be upgraded in place."},
		InvalidTemplateBranch{Repository: "https://example.com/tmpl", Branch: "v0.1"},
		InvalidTemplateRepository{Template: "https://example.com/tmpl"},
		UnsupportedPlatform{Platform: "iOS"},
		InvalidSupportPackage{Filename: "support.tar.gz"},
		InvalidStubBinary{Filename: "stub.zip"},
		MissingAppMetadata{BundlePath: "build/app"},
		MissingSupportPackage{InterpreterVersion: "3.14", Platform: "linux", HostArch: "riscv64"},
		MissingStubBinary{InterpreterVersion: "3.14", Platform: "windows", HostArch: "x86", Is32Bit: true},
		RequirementsInstall{},
		UnsupportedInterpreterVersion{Specifier: ">=3.10", Running: "3.9.1"},
		MissingAppSources{Source: "src/app"},
		InvalidDevice{IDType: "udid", Device: "ABCD"},
		CorruptTool{Tool: "adb"},
		CommandOutputParse{Detail: "no version line"},
		TestSuiteFailure{},
		NoDistributionArtifact{Message: "No distribution artifact was produced."},
		NotarizationInterrupted{Message: "Notarization was interrupted."},
	}
}

func TestEveryKindHasAPayload(t *testing.T) {
	t.Parallel()

	seen := map[Kind]bool{}
	for _, p := range samplePayloads() {
		if seen[p.Kind()] {
			t.Errorf("kind %s appears twice in the samples", p.Kind())
		}
		seen[p.Kind()] = true
	}
	for _, k := range Kinds() {
		if !seen[k] {
			t.Errorf("kind %s has no sample payload", k)
		}
		if strings.HasPrefix(k.String(), "kind(") {
			t.Errorf("kind %d has no name", int(k))
		}
	}
}

func TestMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload Payload
		want    string
	}{
		{
			name:    "invalid platform sorts choices ignoring case",
			payload: InvalidPlatform{Requested: "bsd", Choices: []string{"macOS", "iOS"}},
			want:    "Invalid platform 'bsd'; (choose from: iOS, macOS)",
		},
		{
			name:    "invalid format",
			payload: InvalidFormat{Requested: "msi2", Choices: []string{"zip", "app", "MSI"}},
			want:    "Invalid format 'msi2'; (choose from: app, MSI, zip)",
		},
		{
			name:    "unsupported command",
			payload: UnsupportedCommand{Platform: "macOS", Format: "xcode", Command: "publish"},
			want:    "The publish command for the macOS xcode format has not been implemented (yet!).",
		},
		{
			name:    "bad network resource",
			payload: BadNetworkResource{URL: "https://example.com/x.zip", StatusCode: 404},
			want:    "Unable to download https://example.com/x.zip (status code 404)",
		},
		{
			name:    "missing network resource",
			payload: MissingNetworkResource{URL: "https://example.com/x.zip"},
			want:    "Unable to download https://example.com/x.zip; is the URL correct?",
		},
		{
			name:    "network failure default hint",
			payload: NetworkFailure{Action: "download support package"},
			want:    "Unable to download support package; is your computer offline?",
		},
		{
			name:    "network failure custom hint",
			payload: NetworkFailure{Action: "reach the index", Hint: "check your proxy"},
			want:    "Unable to reach the index; check your proxy",
		},
		{
			name:    "config error",
			payload: BadConfig{Message: "missing project_name"},
			want:    "Satchel configuration error: missing project_name",
		},
		{
			name:    "input disabled default",
			payload: InputDisabled{},
			want:    DefaultInputDisabledMessage,
		},
		{
			name:    "missing tool",
			payload: MissingTool{Tool: "git"},
			want:    "Unable to locate 'git'. Has it been installed?",
		},
		{
			name:    "corrupt tool with a quote in the name",
			payload: CorruptTool{Tool: "Xcode's clang"},
			want:    `"Xcode's clang" found, but it appears to be corrupted.`,
		},
		{
			name:    "missing app metadata",
			payload: MissingAppMetadata{BundlePath: filepath.Join("build", "app")},
			want:    "Unable to find '" + filepath.Join("build", "app", "satchel.toml") + "'",
		},
		{
			name:    "test suite failure",
			payload: TestSuiteFailure{},
			want:    "Test suite failed.",
		},
		{
			name:    "invalid device",
			payload: InvalidDevice{IDType: "udid", Device: "ABCD"},
			want:    "Invalid device udid 'ABCD'",
		},
		{
			name:    "requirements install appends the hint",
			payload: RequirementsInstall{Hint: "\n\nIs the index reachable?"},
			want: "Unable to install requirements. This may be because one of your\n" +
				"requirements is invalid, or because pip was unable to connect\n" +
				"to the PyPI server.\n\nIs the index reachable?\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := New(tt.payload).Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMissingDownloadNamesThe32BitPlatform(t *testing.T) {
	t.Parallel()

	msg := New(MissingStubBinary{InterpreterVersion: "3.14", Platform: "windows", HostArch: "x86", Is32Bit: true}).Error()
	if !strings.HasPrefix(msg, "Unable to download 32 bit windows stub binary for Python 3.14 on x86.") {
		t.Errorf("unexpected message: %q", msg)
	}
	if !strings.Contains(msg, "Compile your own stub binary.") {
		t.Errorf("message lacks the remedy: %q", msg)
	}
}

func TestMessagesAreIdempotent(t *testing.T) {
	t.Parallel()

	for _, p := range samplePayloads() {
		a, b := New(p), New(p)
		first := a.Error()
		if first == "" || strings.HasPrefix(first, "unknown issue") {
			t.Errorf("%s has no message: %q", p.Kind(), first)
		}
		if again := a.Error(); again != first {
			t.Errorf("%s rendered differently on a second call: %q vs %q", p.Kind(), first, again)
		}
		if other := b.Error(); other != first {
			t.Errorf("%s rendered differently for an equal payload: %q vs %q", p.Kind(), first, other)
		}
	}
}

func TestChoicesAreNotReordered(t *testing.T) {
	t.Parallel()

	choices := []string{"macOS", "iOS"}
	e := New(InvalidPlatform{Requested: "bsd", Choices: choices})
	_ = e.Error()
	choices[0] = "changed"

	if got := e.Error(); got != "Invalid platform 'bsd'; (choose from: iOS, macOS)" {
		t.Errorf("payload aliased the caller's slice: %q", got)
	}
	p := e.Payload().(InvalidPlatform)
	p.Choices[0] = "mutated"
	if got := e.Error(); strings.Contains(got, "mutated") {
		t.Errorf("Payload() exposed internal state: %q", got)
	}
}

func TestSkipLogfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want bool
	}{
		{"usage", New(InvalidPlatform{Requested: "x"}), true},
		{"no command", New(NoCommand{Message: "help"}), true},
		{"config", New(BadConfig{Message: "bad"}), true},
		{"host", New(UnsupportedHost{Reason: "no"}), true},
		{"test suite", New(TestSuiteFailure{}), true},
		{"command default", New(CommandFailed{Message: "boom"}), false},
		{"command opted in", New(CommandFailed{Message: "boom"}, WithSkipLogfile(true)), true},
		{"specific command kind", New(MissingTool{Tool: "git"}), false},
		{"upgrade tool", New(UpgradeTool{Message: "no"}), true},
		{"upgrade tool opted out", New(UpgradeTool{Message: "no"}, WithSkipLogfile(false)), false},
		{"input disabled", New(InputDisabled{}), false},
		{"config ignores the option", New(BadConfig{Message: "bad"}, WithSkipLogfile(false)), true},
		{"warning", New(NoDistributionArtifact{Message: "none"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.SkipLogfile(); got != tt.want {
				t.Errorf("SkipLogfile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		code int
	}{
		{NoCommandKind, -10},
		{InvalidPlatformKind, -20},
		{InvalidFormatKind, -21},
		{UnsupportedCommandKind, -30},
		{InputDisabledKind, 99},
		{BadConfigKind, 100},
		{UnsupportedHostKind, 110},
		{CommandFailedKind, 200},
		{MissingToolKind, 200},
		{UpgradeToolKind, 200},
		{TestSuiteFailureKind, 1000},
		{NoDistributionArtifactKind, 0},
		{NotarizationInterruptedKind, 0},
	}

	for _, tt := range tests {
		if got := tt.kind.Code(); got != tt.code {
			t.Errorf("%s.Code() = %d, want %d", tt.kind, got, tt.code)
		}
	}
}

func TestExitStatusesAreDistinct(t *testing.T) {
	t.Parallel()

	byCode := map[int]int{}
	for _, p := range samplePayloads() {
		e := New(p)
		status := ExitStatus(e)
		if status < 0 || status > 255 {
			t.Errorf("%s exit status %d out of range", e.Kind(), status)
		}
		if e.IsWarning() {
			if status != 0 {
				t.Errorf("warning %s exit status = %d, want 0", e.Kind(), status)
			}
			continue
		}
		if status == 0 {
			t.Errorf("%s exit status is 0", e.Kind())
		}
		if prev, ok := byCode[status]; ok && prev != e.Code() {
			t.Errorf("codes %d and %d share exit status %d", prev, e.Code(), status)
		}
		byCode[status] = e.Code()
	}
	if _, ok := byCode[InternalFaultStatus]; ok {
		t.Errorf("an entry shares the internal fault status %d", InternalFaultStatus)
	}
}

func TestExitStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"no command", New(NoCommand{Message: "help"}), 246},
		{"config", New(BadConfig{Message: "x"}), 100},
		{"test suite", New(TestSuiteFailure{}), 232},
		{"wrapped", fmt.Errorf("building: %w", New(CommandFailed{Message: "x"})), 200},
		{"warning", New(NotarizationInterrupted{Message: "x"}), 0},
		{"internal fault", errors.New("index out of range"), InternalFaultStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitStatus(tt.err); got != tt.want {
				t.Errorf("ExitStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCauseIsKeptForErrorsAs(t *testing.T) {
	t.Parallel()

	raw := &exec.Error{Name: "git", Err: exec.ErrNotFound}
	e := New(MissingTool{Tool: "git"}, WithCause(raw))

	if !errors.Is(e, exec.ErrNotFound) {
		t.Error("errors.Is did not reach the translated error")
	}
	if e.Error() != "Unable to locate 'git'. Has it been installed?" {
		t.Errorf("cause leaked into the message: %q", e.Error())
	}
	if !IsKind(fmt.Errorf("verify: %w", e), MissingToolKind) {
		t.Error("IsKind() = false for a wrapped entry")
	}
	if IsKind(raw, MissingToolKind) {
		t.Error("IsKind() = true for a raw error")
	}
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	if got := Commandf("%s exited with status %d", "git", 128); got.Kind() != CommandFailedKind ||
		got.Error() != "git exited with status 128" {
		t.Errorf("Commandf() = %s %q", got.Kind(), got.Error())
	}

	cause := errors.New("toml: line 3")
	got := Config(cause, "unable to parse %s", "satchel.toml")
	if got.Kind() != BadConfigKind || !errors.Is(got, cause) {
		t.Errorf("Config() = %s, cause kept = %v", got.Kind(), errors.Is(got, cause))
	}
	if got.Error() != "Satchel configuration error: unable to parse satchel.toml" {
		t.Errorf("Config().Error() = %q", got.Error())
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"plain", "'plain'"},
		{"it's", `"it's"`},
		{`both ' and "`, `'both \' and "'`},
		{`C:\path`, `'C:\\path'`},
		{"two\nlines", `'two\nlines'`},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClassStrings(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		if s := k.Class().String(); strings.HasPrefix(s, "class(") {
			t.Errorf("%s has an unnamed class", k)
		}
	}
	if got := Kind(999).String(); got != "kind(999)" {
		t.Errorf("unknown kind String() = %q", got)
	}
}
