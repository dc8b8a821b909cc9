package channel

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoDefaultBranchArtifacts matches every failure to find a default branch
	// build. The concrete *NoDefaultBranchArtifactsError keeps the inner cause.
	ErrNoDefaultBranchArtifacts = errors.New("no build artifacts found for default branch")

	ErrNoSuccessfulRun = errors.New("no successful workflow run found")
	ErrMissingHeadSHA  = errors.New("workflow run missing head_sha")
	ErrNoMatchingRun   = errors.New("no matching workflow run found")
)

type PullRequestNotFoundError struct {
	Number uint32
	Err    error
}

func (e *PullRequestNotFoundError) Error() string {
	return fmt.Sprintf("PR #%d not found", e.Number)
}

func (e *PullRequestNotFoundError) Unwrap() error {
	return e.Err
}

// NoArtifactsError means the pull request exists but has no matching build.
type NoArtifactsError struct {
	Number uint32
	Cause  error
}

func (e *NoArtifactsError) Error() string {
	return fmt.Sprintf("no build artifacts found for PR #%d", e.Number)
}

func (e *NoArtifactsError) Unwrap() error {
	return e.Cause
}

type NoDefaultBranchArtifactsError struct {
	RunID uint64
	Cause error
}

func (e *NoDefaultBranchArtifactsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNoDefaultBranchArtifacts, e.Cause)
}

func (e *NoDefaultBranchArtifactsError) Is(target error) bool {
	return target == ErrNoDefaultBranchArtifacts
}

func (e *NoDefaultBranchArtifactsError) Unwrap() error {
	return e.Cause
}

// ArtifactNotFoundError names the artifact prefix or asset that had no match.
type ArtifactNotFoundError struct {
	Name string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("no artifact matching '%s' found", e.Name)
}
