package channel

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ereader-ota/otactl/githubapi"
)

// API is the subset of the GitHub client the resolver needs.
type API interface {
	githubapi.PullRequestClient
	githubapi.WorkflowClient
	githubapi.RepositoryClient
}

// Stage marks the point a resolution has reached.
type Stage int

const (
	// StageCheckingSource is entered before the channel source is queried.
	StageCheckingSource Stage = iota
	// StageResolvingChannel is entered once the source is known and its
	// builds are being searched.
	StageResolvingChannel
)

type StageFunc func(Stage)

type Resolver struct {
	api    API
	naming Naming
	log    *zerolog.Logger
}

func NewResolver(api API, naming Naming, log *zerolog.Logger) *Resolver {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Resolver{
		api:    api,
		naming: naming,
		log:    log,
	}
}

func (r *Resolver) Naming() Naming {
	return r.naming
}

// Resolve turns ch into a descriptor. onStage may be nil.
func (r *Resolver) Resolve(ctx context.Context, ch Channel, onStage StageFunc) (ArtifactDescriptor, error) {
	if onStage == nil {
		onStage = func(Stage) {}
	}
	switch ch.Kind() {
	case PullRequestKind:
		return r.resolvePullRequest(ctx, ch.Number(), onStage)
	case DefaultBranchKind:
		return r.resolveDefaultBranch(ctx, onStage)
	case StableReleaseKind:
		return r.resolveStableRelease(ctx, onStage)
	default:
		return ArtifactDescriptor{}, fmt.Errorf("unsupported channel %s", ch)
	}
}

func (r *Resolver) resolvePullRequest(ctx context.Context, number uint32, onStage StageFunc) (ArtifactDescriptor, error) {
	onStage(StageCheckingSource)
	pr, err := r.api.GetPullRequest(ctx, number)
	if err != nil {
		// Only a 404 means the PR is missing; auth and server errors keep their own kind.
		if errors.Is(err, githubapi.ErrNotFound) {
			return ArtifactDescriptor{}, &PullRequestNotFoundError{Number: number, Err: err}
		}
		return ArtifactDescriptor{}, errors.Wrapf(err, "failed to fetch PR #%d", number)
	}
	headSHA := pr.Head.SHA
	r.log.Info().Uint32("pr", number).Str("headSHA", headSHA).Msg("Found pull request")

	onStage(StageResolvingChannel)
	filter := githubapi.NewRunFilter()
	filter.ByHeadSHA(headSHA)
	filter.ByEvent(githubapi.EventPullRequest)
	runs, err := r.api.ListWorkflowRuns(ctx, filter)
	if err != nil {
		return ArtifactDescriptor{}, err
	}
	run, ok := findRun(runs, r.naming.WorkflowName)
	if !ok {
		r.log.Info().Uint32("pr", number).Str("workflow", r.naming.WorkflowName).Msg("No matching workflow run")
		return ArtifactDescriptor{}, &NoArtifactsError{Number: number, Cause: ErrNoMatchingRun}
	}

	artifacts, err := r.api.ListRunArtifacts(ctx, run.ID)
	if err != nil {
		return ArtifactDescriptor{}, err
	}
	prefix := r.naming.PullRequestPrefix(number)
	artifact, ok := FirstWithPrefix(artifacts, prefix)
	if !ok {
		return ArtifactDescriptor{}, &NoArtifactsError{Number: number, Cause: &ArtifactNotFoundError{Name: prefix}}
	}
	r.log.Info().Uint64("runID", run.ID).Str("artifact", artifact.Name).Uint64("size", artifact.SizeInBytes).Msg("Selected pull request artifact")

	return ArtifactDescriptor{
		Name:       artifact.Name,
		URL:        r.api.ArtifactDownloadURL(artifact.ID),
		Size:       artifact.SizeInBytes,
		StagingKey: fmt.Sprintf("pr%d", number),
		IsArchive:  true,
	}, nil
}

func (r *Resolver) resolveDefaultBranch(ctx context.Context, onStage StageFunc) (ArtifactDescriptor, error) {
	onStage(StageCheckingSource)
	repo, err := r.api.GetRepository(ctx)
	if err != nil {
		return ArtifactDescriptor{}, err
	}
	branch := repo.DefaultBranch

	onStage(StageResolvingChannel)
	filter := githubapi.NewRunFilter()
	filter.ByBranch(branch)
	filter.ByEvent(githubapi.EventPush)
	filter.ByStatus(githubapi.StatusSuccess)
	filter.MaxFetchSize(1)
	runs, err := r.api.ListWorkflowFileRuns(ctx, r.naming.WorkflowFile, filter)
	if err != nil {
		return ArtifactDescriptor{}, err
	}
	if len(runs) == 0 || runs[0] == nil {
		return ArtifactDescriptor{}, &NoDefaultBranchArtifactsError{Cause: ErrNoSuccessfulRun}
	}
	run := runs[0]
	if run.HeadSHA == nil || *run.HeadSHA == "" {
		return ArtifactDescriptor{}, &NoDefaultBranchArtifactsError{RunID: run.ID, Cause: ErrMissingHeadSHA}
	}
	shortSHA := ShortSHA(*run.HeadSHA)
	r.log.Info().Str("branch", branch).Uint64("runID", run.ID).Str("commit", shortSHA).Msg("Found latest successful build")

	artifacts, err := r.api.ListRunArtifacts(ctx, run.ID)
	if err != nil {
		return ArtifactDescriptor{}, err
	}
	prefix := r.naming.CommitPrefix(shortSHA)
	artifact, ok := FirstWithPrefix(artifacts, prefix)
	if !ok {
		return ArtifactDescriptor{}, &NoDefaultBranchArtifactsError{RunID: run.ID, Cause: &ArtifactNotFoundError{Name: prefix}}
	}
	r.log.Info().Str("artifact", artifact.Name).Uint64("size", artifact.SizeInBytes).Msg("Selected default branch artifact")

	return ArtifactDescriptor{
		Name:       artifact.Name,
		URL:        r.api.ArtifactDownloadURL(artifact.ID),
		Size:       artifact.SizeInBytes,
		StagingKey: shortSHA,
		IsArchive:  true,
	}, nil
}

func (r *Resolver) resolveStableRelease(ctx context.Context, onStage StageFunc) (ArtifactDescriptor, error) {
	onStage(StageCheckingSource)
	release, err := r.api.GetLatestRelease(ctx)
	if err != nil {
		return ArtifactDescriptor{}, err
	}
	onStage(StageResolvingChannel)
	asset, ok := findAsset(release.Assets, r.naming.ReleaseAsset)
	if !ok {
		return ArtifactDescriptor{}, &ArtifactNotFoundError{Name: r.naming.ReleaseAsset}
	}
	r.log.Info().Str("tag", release.TagName).Str("asset", asset.Name).Uint64("size", asset.Size).Msg("Selected release asset")

	return ArtifactDescriptor{
		Name:       asset.Name,
		URL:        asset.BrowserDownloadURL,
		Size:       asset.Size,
		StagingKey: "stable-release",
		IsArchive:  false,
	}, nil
}
