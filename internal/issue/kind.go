// SPDX-License-Identifier: MPL-2.0

package issue

import "strconv"

const (
	NoCommandKind Kind = iota + 1
	InvalidPlatformKind
	InvalidFormatKind
	UnsupportedCommandKind
	InputDisabledKind
	BadConfigKind
	UnsupportedHostKind
	CommandFailedKind
	NetworkFailureKind
	MissingNetworkResourceKind
	BadNetworkResourceKind
	MissingToolKind
	IncompatibleToolKind
	NonManagedToolKind
	UpgradeToolKind
	InvalidTemplateBranchKind
	InvalidTemplateRepositoryKind
	UnsupportedPlatformKind
	InvalidSupportPackageKind
	InvalidStubBinaryKind
	MissingAppMetadataKind
	MissingSupportPackageKind
	MissingStubBinaryKind
	RequirementsInstallKind
	UnsupportedInterpreterVersionKind
	MissingAppSourcesKind
	InvalidDeviceKind
	CorruptToolKind
	CommandOutputParseKind
	TestSuiteFailureKind
	NoDistributionArtifactKind
	NotarizationInterruptedKind
)

const (
	// ClassUsage covers help and argument errors. Codes are negative.
	ClassUsage Class = iota + 1
	// ClassInput is raised when interactive input is required but disabled.
	ClassInput
	// ClassConfig covers invalid project or user configuration.
	ClassConfig
	// ClassHost is raised when the host cannot run the requested workflow.
	ClassHost
	// ClassCommand covers failures while a command was doing its work.
	ClassCommand
	// ClassTestSuite signals that a build succeeded but its tests failed.
	ClassTestSuite
	// ClassWarning entries are reported without failing the run.
	ClassWarning
)

// Fixed codes per class. Usage kinds carry their own negative codes.
const (
	WarningCode     = 0
	InputCode       = 99
	ConfigCode      = 100
	HostCode        = 110
	CommandCode     = 200
	TestSuiteCode   = 1000
	noCommandCode   = -10
	badPlatformCode = -20
	badFormatCode   = -21
	unsupportedCode = -30
)

type (
	// Kind discriminates taxonomy entries.
	Kind int

	// Class groups kinds that share presentation rules.
	Class int

	kindInfo struct {
		name  string
		class Class
		code  int
	}
)

var kinds = map[Kind]kindInfo{
	NoCommandKind:                     {"no-command", ClassUsage, noCommandCode},
	InvalidPlatformKind:               {"invalid-platform", ClassUsage, badPlatformCode},
	InvalidFormatKind:                 {"invalid-format", ClassUsage, badFormatCode},
	UnsupportedCommandKind:            {"unsupported-command", ClassUsage, unsupportedCode},
	InputDisabledKind:                 {"input-disabled", ClassInput, InputCode},
	BadConfigKind:                     {"bad-config", ClassConfig, ConfigCode},
	UnsupportedHostKind:               {"unsupported-host", ClassHost, HostCode},
	CommandFailedKind:                 {"command-failed", ClassCommand, CommandCode},
	NetworkFailureKind:                {"network-failure", ClassCommand, CommandCode},
	MissingNetworkResourceKind:        {"missing-network-resource", ClassCommand, CommandCode},
	BadNetworkResourceKind:            {"bad-network-resource", ClassCommand, CommandCode},
	MissingToolKind:                   {"missing-tool", ClassCommand, CommandCode},
	IncompatibleToolKind:              {"incompatible-tool", ClassCommand, CommandCode},
	NonManagedToolKind:                {"non-managed-tool", ClassCommand, CommandCode},
	UpgradeToolKind:                   {"upgrade-tool", ClassCommand, CommandCode},
	InvalidTemplateBranchKind:         {"invalid-template-branch", ClassCommand, CommandCode},
	InvalidTemplateRepositoryKind:     {"invalid-template-repository", ClassCommand, CommandCode},
	UnsupportedPlatformKind:           {"unsupported-platform", ClassCommand, CommandCode},
	InvalidSupportPackageKind:         {"invalid-support-package", ClassCommand, CommandCode},
	InvalidStubBinaryKind:             {"invalid-stub-binary", ClassCommand, CommandCode},
	MissingAppMetadataKind:            {"missing-app-metadata", ClassCommand, CommandCode},
	MissingSupportPackageKind:         {"missing-support-package", ClassCommand, CommandCode},
	MissingStubBinaryKind:             {"missing-stub-binary", ClassCommand, CommandCode},
	RequirementsInstallKind:           {"requirements-install", ClassCommand, CommandCode},
	UnsupportedInterpreterVersionKind: {"unsupported-interpreter-version", ClassCommand, CommandCode},
	MissingAppSourcesKind:             {"missing-app-sources", ClassCommand, CommandCode},
	InvalidDeviceKind:                 {"invalid-device", ClassCommand, CommandCode},
	CorruptToolKind:                   {"corrupt-tool", ClassCommand, CommandCode},
	CommandOutputParseKind:            {"command-output-parse", ClassCommand, CommandCode},
	TestSuiteFailureKind:              {"test-suite-failure", ClassTestSuite, TestSuiteCode},
	NoDistributionArtifactKind:        {"no-distribution-artifact", ClassWarning, WarningCode},
	NotarizationInterruptedKind:       {"notarization-interrupted", ClassWarning, WarningCode},
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := NoCommandKind; k <= NotarizationInterruptedKind; k++ {
		out = append(out, k)
	}
	return out
}

// String returns the kind's stable name.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Class returns the class the kind belongs to.
func (k Kind) Class() Class { return kinds[k].class }

// Code returns the kind's numeric code.
func (k Kind) Code() int { return kinds[k].code }

// SkipsLogfile reports whether entries of this class are expected conditions
// that never warrant a log file. Command and input failures decide per entry.
func (c Class) SkipsLogfile() bool {
	switch c {
	case ClassUsage, ClassConfig, ClassHost, ClassTestSuite:
		return true
	default:
		return false
	}
}

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassUsage:
		return "usage"
	case ClassInput:
		return "input"
	case ClassConfig:
		return "config"
	case ClassHost:
		return "host"
	case ClassCommand:
		return "command"
	case ClassTestSuite:
		return "test-suite"
	case ClassWarning:
		return "warning"
	default:
		return "class(" + strconv.Itoa(int(c)) + ")"
	}
}
