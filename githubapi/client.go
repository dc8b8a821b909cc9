package githubapi

import "context"

type PullRequestClient interface {
	GetPullRequest(ctx context.Context, number uint32) (*PullRequest, error)
}

type WorkflowClient interface {
	ListWorkflowRuns(ctx context.Context, filter *RunFilter) ([]*WorkflowRun, error)
	ListWorkflowFileRuns(ctx context.Context, workflowFile string, filter *RunFilter) ([]*WorkflowRun, error)
	ListRunArtifacts(ctx context.Context, runID uint64) ([]*Artifact, error)
	ArtifactDownloadURL(artifactID uint64) string
}

type RepositoryClient interface {
	GetRepository(ctx context.Context) (*Repository, error)
	GetLatestRelease(ctx context.Context) (*Release, error)
}

// RangeFetcher downloads an inclusive byte range of a binary resource.
type RangeFetcher interface {
	FetchRange(ctx context.Context, url string, start, end uint64) ([]byte, error)
}

type Client interface {
	PullRequestClient
	WorkflowClient
	RepositoryClient
	RangeFetcher
}
