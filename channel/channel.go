// Package channel resolves an update channel to a concrete downloadable artifact.
package channel

import "fmt"

type Kind int

const (
	PullRequestKind Kind = iota
	DefaultBranchKind
	StableReleaseKind
)

func (k Kind) String() string {
	switch k {
	case PullRequestKind:
		return "pull-request"
	case DefaultBranchKind:
		return "default-branch"
	case StableReleaseKind:
		return "stable-release"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Channel selects one of the remote discovery paths. The zero value is not a
// valid channel; use the constructors.
type Channel struct {
	kind   Kind
	number uint32
}

func PullRequest(number uint32) Channel {
	return Channel{kind: PullRequestKind, number: number}
}

func DefaultBranch() Channel {
	return Channel{kind: DefaultBranchKind}
}

func StableRelease() Channel {
	return Channel{kind: StableReleaseKind}
}

func (c Channel) Kind() Kind {
	return c.kind
}

// Number is the pull request number, zero for other kinds.
func (c Channel) Number() uint32 {
	return c.number
}

func (c Channel) String() string {
	if c.kind == PullRequestKind {
		return fmt.Sprintf("pull request #%d", c.number)
	}
	return c.kind.String()
}

// ArtifactDescriptor is a byte-addressable source with a size known in full
// before the first byte is requested.
type ArtifactDescriptor struct {
	Name string
	URL  string
	Size uint64
	// StagingKey identifies the channel instance: pr<N>, a short commit hash
	// or stable-release. It keys the local staged file.
	StagingKey string
	// IsArchive is set for zip containers that still hold the payload.
	IsArchive bool
}

// Naming carries the remote names the resolver looks for.
type Naming struct {
	// WorkflowName is the run name of the build workflow.
	WorkflowName string
	// WorkflowFile is the workflow definition queried for branch builds.
	WorkflowFile string
	// ArtifactBase prefixes every build artifact name.
	ArtifactBase string
	// ReleaseAsset is the exact asset name in a published release.
	ReleaseAsset string
	// ArchiveEntry is the payload file inside a build artifact.
	ArchiveEntry string
}

func DefaultNaming() Naming {
	return Naming{
		WorkflowName: "Cargo",
		WorkflowFile: "cargo.yml",
		ArtifactBase: "cadmus-kobo",
		ReleaseAsset: "KoboRoot.tgz",
		ArchiveEntry: "KoboRoot.tgz",
	}
}

// ForTestBuild switches to the artifacts produced by the test build flavour.
func (n Naming) ForTestBuild() Naming {
	n.ArtifactBase += "-test"
	n.ArchiveEntry = "KoboRoot-test.tgz"
	return n
}

func (n Naming) PullRequestPrefix(number uint32) string {
	return fmt.Sprintf("%s-pr%d", n.ArtifactBase, number)
}

func (n Naming) CommitPrefix(shortSHA string) string {
	return fmt.Sprintf("%s-%s", n.ArtifactBase, shortSHA)
}

const shortSHALength = 7

// ShortSHA truncates a commit hash to its conventional short form.
func ShortSHA(sha string) string {
	if len(sha) <= shortSHALength {
		return sha
	}
	return sha[:shortSHALength]
}
