package channel

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ereader-ota/otactl/githubapi"
)

type fakeAPI struct {
	pr        *githubapi.PullRequest
	prErr     error
	repo      *githubapi.Repository
	release   *githubapi.Release
	runs      []*githubapi.WorkflowRun
	fileRuns  []*githubapi.WorkflowRun
	artifacts map[uint64][]*githubapi.Artifact

	runFilters     []*githubapi.RunFilter
	workflowFiles  []string
	artifactRunIDs []uint64
}

func (f *fakeAPI) GetPullRequest(ctx context.Context, number uint32) (*githubapi.PullRequest, error) {
	if f.prErr != nil {
		return nil, f.prErr
	}
	return f.pr, nil
}

func (f *fakeAPI) ListWorkflowRuns(ctx context.Context, filter *githubapi.RunFilter) ([]*githubapi.WorkflowRun, error) {
	f.runFilters = append(f.runFilters, filter)
	return f.runs, nil
}

func (f *fakeAPI) ListWorkflowFileRuns(ctx context.Context, workflowFile string, filter *githubapi.RunFilter) ([]*githubapi.WorkflowRun, error) {
	f.workflowFiles = append(f.workflowFiles, workflowFile)
	f.runFilters = append(f.runFilters, filter)
	return f.fileRuns, nil
}

func (f *fakeAPI) ListRunArtifacts(ctx context.Context, runID uint64) ([]*githubapi.Artifact, error) {
	f.artifactRunIDs = append(f.artifactRunIDs, runID)
	return f.artifacts[runID], nil
}

func (f *fakeAPI) ArtifactDownloadURL(artifactID uint64) string {
	return fmt.Sprintf("https://api.test/artifacts/%d/zip", artifactID)
}

func (f *fakeAPI) GetRepository(ctx context.Context) (*githubapi.Repository, error) {
	return f.repo, nil
}

func (f *fakeAPI) GetLatestRelease(ctx context.Context) (*githubapi.Release, error) {
	return f.release, nil
}

func testNaming() Naming {
	return Naming{
		WorkflowName: "Cargo",
		WorkflowFile: "cargo.yml",
		ArtifactBase: "widget",
		ReleaseAsset: "KoboRoot.tgz",
		ArchiveEntry: "KoboRoot.tgz",
	}
}

func strPtr(s string) *string {
	return &s
}

func TestResolvePullRequestPinsFirstMatch(t *testing.T) {
	api := &fakeAPI{
		pr: &githubapi.PullRequest{Number: 7, Head: githubapi.Ref{SHA: "abc123"}},
		runs: []*githubapi.WorkflowRun{
			{ID: 1, Name: "Lint"},
			{ID: 2, Name: "Cargo"},
		},
		artifacts: map[uint64][]*githubapi.Artifact{
			2: {
				{ID: 10, Name: "widget-pr70"},
				{ID: 11, Name: "widget-pr7-partial", SizeInBytes: 5},
				{ID: 12, Name: "widget-pr7", SizeInBytes: 9},
			},
		},
	}
	var stages []Stage
	desc, err := NewResolver(api, testNaming(), nil).Resolve(context.Background(), PullRequest(7), func(s Stage) {
		stages = append(stages, s)
	})
	require.NoError(t, err)

	// "widget-pr70" shares the "widget-pr7" prefix and is listed first.
	assert.Equal(t, "widget-pr70", desc.Name)
	assert.Equal(t, "https://api.test/artifacts/10/zip", desc.URL)
	assert.Equal(t, "pr7", desc.StagingKey)
	assert.True(t, desc.IsArchive)
	assert.Equal(t, []Stage{StageCheckingSource, StageResolvingChannel}, stages)
	assert.Equal(t, []uint64{2}, api.artifactRunIDs)
	require.Len(t, api.runFilters, 1)
}

func TestResolvePullRequestFirstMatchInListOrder(t *testing.T) {
	api := &fakeAPI{
		pr:   &githubapi.PullRequest{Number: 7, Head: githubapi.Ref{SHA: "abc123"}},
		runs: []*githubapi.WorkflowRun{{ID: 2, Name: "Cargo"}},
		artifacts: map[uint64][]*githubapi.Artifact{
			2: {
				{ID: 11, Name: "widget-pr7-partial", SizeInBytes: 5},
				{ID: 12, Name: "widget-pr7", SizeInBytes: 9},
			},
		},
	}
	desc, err := NewResolver(api, testNaming(), nil).Resolve(context.Background(), PullRequest(7), nil)
	require.NoError(t, err)
	assert.Equal(t, "widget-pr7-partial", desc.Name)
	assert.Equal(t, uint64(5), desc.Size)
}

func TestResolvePullRequestNotFound(t *testing.T) {
	api := &fakeAPI{prErr: &githubapi.APIError{Op: "get pull request", StatusCode: http.StatusNotFound}}
	_, err := NewResolver(api, testNaming(), nil).Resolve(context.Background(), PullRequest(404), nil)

	var notFound *PullRequestNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, uint32(404), notFound.Number)
	assert.Equal(t, "PR #404 not found", err.Error())
	assert.Empty(t, api.runFilters)
}

func TestResolvePullRequestAPIError(t *testing.T) {
	api := &fakeAPI{prErr: &githubapi.APIError{Op: "get pull request", StatusCode: http.StatusInternalServerError}}
	_, err := NewResolver(api, testNaming(), nil).Resolve(context.Background(), PullRequest(3), nil)

	var notFound *PullRequestNotFoundError
	assert.False(t, errors.As(err, &notFound))
	var apiErr *githubapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestResolvePullRequestNoArtifacts(t *testing.T) {
	tests := []struct {
		name  string
		runs  []*githubapi.WorkflowRun
		arts  map[uint64][]*githubapi.Artifact
		cause error
	}{
		{
			name:  "no matching run",
			runs:  []*githubapi.WorkflowRun{{ID: 1, Name: "Lint"}},
			cause: ErrNoMatchingRun,
		},
		{
			name: "no matching artifact",
			runs: []*githubapi.WorkflowRun{{ID: 2, Name: "Cargo"}},
			arts: map[uint64][]*githubapi.Artifact{2: {{ID: 3, Name: "widget-pr8"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				pr:        &githubapi.PullRequest{Number: 7, Head: githubapi.Ref{SHA: "abc123"}},
				runs:      tt.runs,
				artifacts: tt.arts,
			}
			_, err := NewResolver(api, testNaming(), nil).Resolve(context.Background(), PullRequest(7), nil)

			var noArtifacts *NoArtifactsError
			require.True(t, errors.As(err, &noArtifacts))
			assert.Equal(t, uint32(7), noArtifacts.Number)
			assert.Equal(t, "no build artifacts found for PR #7", err.Error())
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			} else {
				var missing *ArtifactNotFoundError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, "widget-pr7", missing.Name)
			}
		})
	}
}

func TestResolveDefaultBranch(t *testing.T) {
	api := &fakeAPI{
		repo:     &githubapi.Repository{DefaultBranch: "main"},
		fileRuns: []*githubapi.WorkflowRun{{ID: 99, Name: "Cargo", HeadSHA: strPtr("0123456789abcdef")}},
		artifacts: map[uint64][]*githubapi.Artifact{
			99: {{ID: 5, Name: "widget-0123456", SizeInBytes: 2048}},
		},
	}
	desc, err := NewResolver(api, testNaming(), nil).Resolve(context.Background(), DefaultBranch(), nil)
	require.NoError(t, err)
	assert.Equal(t, ArtifactDescriptor{
		Name:       "widget-0123456",
		URL:        "https://api.test/artifacts/5/zip",
		Size:       2048,
		StagingKey: "0123456",
		IsArchive:  true,
	}, desc)
	assert.Equal(t, []string{"cargo.yml"}, api.workflowFiles)
}

func TestResolveDefaultBranchFailures(t *testing.T) {
	tests := []struct {
		name     string
		runs     []*githubapi.WorkflowRun
		arts     map[uint64][]*githubapi.Artifact
		cause    error
		artifact bool
	}{
		{name: "no successful run", cause: ErrNoSuccessfulRun},
		{name: "missing head sha", runs: []*githubapi.WorkflowRun{{ID: 1, Name: "Cargo"}}, cause: ErrMissingHeadSHA},
		{
			name:     "no matching artifact",
			runs:     []*githubapi.WorkflowRun{{ID: 1, Name: "Cargo", HeadSHA: strPtr("fedcba9876")}},
			arts:     map[uint64][]*githubapi.Artifact{1: {{ID: 2, Name: "widget-0123456"}}},
			artifact: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				repo:      &githubapi.Repository{DefaultBranch: "main"},
				fileRuns:  tt.runs,
				artifacts: tt.arts,
			}
			_, err := NewResolver(api, testNaming(), nil).Resolve(context.Background(), DefaultBranch(), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoDefaultBranchArtifacts)

			var branchErr *NoDefaultBranchArtifactsError
			require.True(t, errors.As(err, &branchErr))
			if tt.artifact {
				var missing *ArtifactNotFoundError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, "widget-fedcba9", missing.Name)
			} else {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestResolveStableRelease(t *testing.T) {
	api := &fakeAPI{
		release: &githubapi.Release{
			TagName: "v1.0.0",
			Assets: []*githubapi.ReleaseAsset{
				{Name: "KoboRoot.tgz.sha256", Size: 64, BrowserDownloadURL: "https://dl.test/sum"},
				{Name: "KoboRoot.tgz", Size: 42, BrowserDownloadURL: "https://dl.test/KoboRoot.tgz"},
			},
		},
	}
	desc, err := NewResolver(api, testNaming(), nil).Resolve(context.Background(), StableRelease(), nil)
	require.NoError(t, err)
	assert.Equal(t, ArtifactDescriptor{
		Name:       "KoboRoot.tgz",
		URL:        "https://dl.test/KoboRoot.tgz",
		Size:       42,
		StagingKey: "stable-release",
	}, desc)

	api.release.Assets = api.release.Assets[:1]
	_, err = NewResolver(api, testNaming(), nil).Resolve(context.Background(), StableRelease(), nil)
	var missing *ArtifactNotFoundError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "KoboRoot.tgz", missing.Name)
}

func TestNaming(t *testing.T) {
	naming := DefaultNaming()
	assert.Equal(t, "cadmus-kobo-pr12", naming.PullRequestPrefix(12))
	assert.Equal(t, "cadmus-kobo-abc1234", naming.CommitPrefix(ShortSHA("abc1234def")))

	testBuild := naming.ForTestBuild()
	assert.Equal(t, "cadmus-kobo-test-pr12", testBuild.PullRequestPrefix(12))
	assert.Equal(t, "KoboRoot-test.tgz", testBuild.ArchiveEntry)
	assert.Equal(t, "KoboRoot.tgz", testBuild.ReleaseAsset)
	assert.Equal(t, "cadmus-kobo", naming.ArtifactBase)
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "abc", ShortSHA("abc"))
	assert.Equal(t, "0123456", ShortSHA("0123456789"))
}

func TestChannelString(t *testing.T) {
	assert.Equal(t, "pull request #7", PullRequest(7).String())
	assert.Equal(t, "default-branch", DefaultBranch().String())
	assert.Equal(t, "stable-release", StableRelease().String())
	assert.Equal(t, uint32(0), StableRelease().Number())
}
