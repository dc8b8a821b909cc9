package githubapi

import (
	"context"
	"net/url"
	"strconv"
)

const (
	EventPullRequest = "pull_request"
	EventPush        = "push"
	StatusSuccess    = "success"
)

type WorkflowRun struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	HeadBranch string `json:"head_branch"`
	// HeadSHA is a pointer because the field may be absent from the payload.
	HeadSHA    *string `json:"head_sha"`
	Event      string  `json:"event"`
	Status     string  `json:"status"`
	Conclusion string  `json:"conclusion"`
}

type Artifact struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	SizeInBytes uint64 `json:"size_in_bytes"`
	Expired     bool   `json:"expired"`
}

type workflowRunsResponse struct {
	TotalCount   int            `json:"total_count"`
	WorkflowRuns []*WorkflowRun `json:"workflow_runs"`
}

type artifactsResponse struct {
	TotalCount int         `json:"total_count"`
	Artifacts  []*Artifact `json:"artifacts"`
}

func (r *RESTClient) ListWorkflowRuns(ctx context.Context, filter *RunFilter) ([]*WorkflowRun, error) {
	endpoint := r.endpoint("actions", "runs")
	endpoint.RawQuery = filter.encode()
	return r.listRuns(ctx, "list workflow runs", endpoint)
}

func (r *RESTClient) ListWorkflowFileRuns(ctx context.Context, workflowFile string, filter *RunFilter) ([]*WorkflowRun, error) {
	endpoint := r.endpoint("actions", "workflows", workflowFile, "runs")
	endpoint.RawQuery = filter.encode()
	return r.listRuns(ctx, "list "+workflowFile+" runs", endpoint)
}

func (r *RESTClient) listRuns(ctx context.Context, op string, endpoint url.URL) ([]*WorkflowRun, error) {
	var runs workflowRunsResponse
	if err := r.getJSON(ctx, op, endpoint, &runs); err != nil {
		return nil, err
	}
	r.log.Debug().Int("count", len(runs.WorkflowRuns)).Msg("Found workflow runs")
	return runs.WorkflowRuns, nil
}

func (r *RESTClient) ListRunArtifacts(ctx context.Context, runID uint64) ([]*Artifact, error) {
	endpoint := r.endpoint("actions", "runs", strconv.FormatUint(runID, 10), "artifacts")
	var artifacts artifactsResponse
	if err := r.getJSON(ctx, "list artifacts", endpoint, &artifacts); err != nil {
		return nil, err
	}
	r.log.Debug().Uint64("runID", runID).Int("count", len(artifacts.Artifacts)).Msg("Found artifacts")
	return artifacts.Artifacts, nil
}

// ArtifactDownloadURL is the zip archive location of an artifact.
func (r *RESTClient) ArtifactDownloadURL(artifactID uint64) string {
	endpoint := r.endpoint("actions", "artifacts", strconv.FormatUint(artifactID, 10), "zip")
	return endpoint.String()
}
