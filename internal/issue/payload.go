// SPDX-License-Identifier: MPL-2.0

package issue

import "slices"

type (
	// Payload is the fixed-shape data of one kind. The set of payloads is
	// closed; each one maps to exactly one Kind.
	Payload interface {
		Kind() Kind
		clone() Payload
	}

	// NoCommand is raised when satchel is run without a usable command. The
	// message is the help text to show.
	NoCommand struct{ Message string }

	// InvalidPlatform is raised for an unknown target platform.
	InvalidPlatform struct {
		Requested string
		Choices   []string
	}

	// InvalidFormat is raised for an unknown output format of a platform.
	InvalidFormat struct {
		Requested string
		Choices   []string
	}

	// UnsupportedCommand is raised when a command exists but has not been
	// implemented for a platform and format.
	UnsupportedCommand struct{ Platform, Format, Command string }

	// InputDisabled is raised when a prompt has no default and input is off.
	// An empty message uses the standard wording.
	InputDisabled struct{ Message string }

	// BadConfig is raised for invalid project or user configuration.
	BadConfig struct{ Message string }

	// UnsupportedHost is raised when the host OS cannot run the workflow.
	UnsupportedHost struct{ Reason string }

	// CommandFailed is the generic command failure.
	CommandFailed struct{ Message string }

	// NetworkFailure is raised when a network action fails. An empty hint
	// uses DefaultNetworkHint.
	NetworkFailure struct{ Action, Hint string }

	// MissingNetworkResource is raised when a download URL does not exist.
	MissingNetworkResource struct{ URL string }

	// BadNetworkResource is raised when a download returns a failure status.
	BadNetworkResource struct {
		URL        string
		StatusCode int
	}

	// MissingTool is raised when a required tool cannot be found.
	MissingTool struct{ Tool string }

	// IncompatibleTool is raised when satchel cannot install a tool itself.
	IncompatibleTool struct{ Tool, EnvVar string }

	// NonManagedTool is raised when a tool install is managed by the user.
	NonManagedTool struct{ Tool string }

	// UpgradeTool is raised when a tool cannot be upgraded.
	UpgradeTool struct{ Message string }

	// InvalidTemplateBranch is raised when a template repository lacks the
	// requested branch.
	InvalidTemplateBranch struct{ Repository, Branch string }

	// InvalidTemplateRepository is raised when a template cannot be cloned.
	InvalidTemplateRepository struct{ Template string }

	// UnsupportedPlatform is raised when an app cannot target a platform.
	UnsupportedPlatform struct{ Platform string }

	// InvalidSupportPackage is raised when a support package cannot be unpacked.
	InvalidSupportPackage struct{ Filename string }

	// InvalidStubBinary is raised when a stub binary cannot be unpacked or copied.
	InvalidStubBinary struct{ Filename string }

	// MissingAppMetadata is raised when a bundle has no metadata file.
	MissingAppMetadata struct{ BundlePath string }

	// MissingSupportPackage is raised when no support package exists for the
	// interpreter version, platform and architecture.
	MissingSupportPackage struct {
		InterpreterVersion string
		Platform           string
		HostArch           string
		Is32Bit            bool
	}

	// MissingStubBinary is raised when no stub binary exists for the
	// interpreter version, platform and architecture.
	MissingStubBinary struct {
		InterpreterVersion string
		Platform           string
		HostArch           string
		Is32Bit            bool
	}

	// RequirementsInstall is raised when installing app requirements fails.
	// Hint is appended to the message verbatim.
	RequirementsInstall struct{ Hint string }

	// UnsupportedInterpreterVersion is raised when the running interpreter
	// does not satisfy the project's version specifier.
	UnsupportedInterpreterVersion struct{ Specifier, Running string }

	// MissingAppSources is raised when an app source path does not exist.
	MissingAppSources struct{ Source string }

	// InvalidDevice is raised for an unknown device identifier.
	InvalidDevice struct{ IDType, Device string }

	// CorruptTool is raised when a tool exists but does not work.
	CorruptTool struct{ Tool string }

	// CommandOutputParse is raised when tool output cannot be understood.
	CommandOutputParse struct{ Detail string }

	// TestSuiteFailure signals that the build succeeded but its tests failed.
	TestSuiteFailure struct{}

	// NoDistributionArtifact warns that packaging produced nothing to ship.
	NoDistributionArtifact struct{ Message string }

	// NotarizationInterrupted warns that notarization was left unfinished.
	NotarizationInterrupted struct{ Message string }
)

func (NoCommand) Kind() Kind                     { return NoCommandKind }
func (InvalidPlatform) Kind() Kind               { return InvalidPlatformKind }
func (InvalidFormat) Kind() Kind                 { return InvalidFormatKind }
func (UnsupportedCommand) Kind() Kind            { return UnsupportedCommandKind }
func (InputDisabled) Kind() Kind                 { return InputDisabledKind }
func (BadConfig) Kind() Kind                     { return BadConfigKind }
func (UnsupportedHost) Kind() Kind               { return UnsupportedHostKind }
func (CommandFailed) Kind() Kind                 { return CommandFailedKind }
func (NetworkFailure) Kind() Kind                { return NetworkFailureKind }
func (MissingNetworkResource) Kind() Kind        { return MissingNetworkResourceKind }
func (BadNetworkResource) Kind() Kind            { return BadNetworkResourceKind }
func (MissingTool) Kind() Kind                   { return MissingToolKind }
func (IncompatibleTool) Kind() Kind              { return IncompatibleToolKind }
func (NonManagedTool) Kind() Kind                { return NonManagedToolKind }
func (UpgradeTool) Kind() Kind                   { return UpgradeToolKind }
func (InvalidTemplateBranch) Kind() Kind         { return InvalidTemplateBranchKind }
func (InvalidTemplateRepository) Kind() Kind     { return InvalidTemplateRepositoryKind }
func (UnsupportedPlatform) Kind() Kind           { return UnsupportedPlatformKind }
func (InvalidSupportPackage) Kind() Kind         { return InvalidSupportPackageKind }
func (InvalidStubBinary) Kind() Kind             { return InvalidStubBinaryKind }
func (MissingAppMetadata) Kind() Kind            { return MissingAppMetadataKind }
func (MissingSupportPackage) Kind() Kind         { return MissingSupportPackageKind }
func (MissingStubBinary) Kind() Kind             { return MissingStubBinaryKind }
func (RequirementsInstall) Kind() Kind           { return RequirementsInstallKind }
func (UnsupportedInterpreterVersion) Kind() Kind { return UnsupportedInterpreterVersionKind }
func (MissingAppSources) Kind() Kind             { return MissingAppSourcesKind }
func (InvalidDevice) Kind() Kind                 { return InvalidDeviceKind }
func (CorruptTool) Kind() Kind                   { return CorruptToolKind }
func (CommandOutputParse) Kind() Kind            { return CommandOutputParseKind }
func (TestSuiteFailure) Kind() Kind              { return TestSuiteFailureKind }
func (NoDistributionArtifact) Kind() Kind        { return NoDistributionArtifactKind }
func (NotarizationInterrupted) Kind() Kind       { return NotarizationInterruptedKind }

func (p NoCommand) clone() Payload { return p }

func (p InvalidPlatform) clone() Payload {
	p.Choices = slices.Clone(p.Choices)
	return p
}

func (p InvalidFormat) clone() Payload {
	p.Choices = slices.Clone(p.Choices)
	return p
}

func (p UnsupportedCommand) clone() Payload            { return p }
func (p InputDisabled) clone() Payload                 { return p }
func (p BadConfig) clone() Payload                     { return p }
func (p UnsupportedHost) clone() Payload               { return p }
func (p CommandFailed) clone() Payload                 { return p }
func (p NetworkFailure) clone() Payload                { return p }
func (p MissingNetworkResource) clone() Payload        { return p }
func (p BadNetworkResource) clone() Payload            { return p }
func (p MissingTool) clone() Payload                   { return p }
func (p IncompatibleTool) clone() Payload              { return p }
func (p NonManagedTool) clone() Payload                { return p }
func (p UpgradeTool) clone() Payload                   { return p }
func (p InvalidTemplateBranch) clone() Payload         { return p }
func (p InvalidTemplateRepository) clone() Payload     { return p }
func (p UnsupportedPlatform) clone() Payload           { return p }
func (p InvalidSupportPackage) clone() Payload         { return p }
func (p InvalidStubBinary) clone() Payload             { return p }
func (p MissingAppMetadata) clone() Payload            { return p }
func (p MissingSupportPackage) clone() Payload         { return p }
func (p MissingStubBinary) clone() Payload             { return p }
func (p RequirementsInstall) clone() Payload           { return p }
func (p UnsupportedInterpreterVersion) clone() Payload { return p }
func (p MissingAppSources) clone() Payload             { return p }
func (p InvalidDevice) clone() Payload                 { return p }
func (p CorruptTool) clone() Payload                   { return p }
func (p CommandOutputParse) clone() Payload            { return p }
func (p TestSuiteFailure) clone() Payload              { return p }
func (p NoDistributionArtifact) clone() Payload        { return p }
func (p NotarizationInterrupted) clone() Payload       { return p }
