// Package ota acquires update artifacts from a channel and installs their
// payload on the device.
package ota

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ereader-ota/otactl/archive"
	"github.com/ereader-ota/otactl/channel"
	"github.com/ereader-ota/otactl/deploy"
	"github.com/ereader-ota/otactl/githubapi"
	"github.com/ereader-ota/otactl/preflight"
	"github.com/ereader-ota/otactl/transfer"
)

const (
	opDownloadPullRequest   = "download pull request build"
	opDownloadDefaultBranch = "download default branch build"
	opDownloadStableRelease = "download stable release"
	opDeployArchive         = "deploy archive"
	opDeployFile            = "deploy file"
	opDeployBytes           = "deploy payload"
)

type Config struct {
	// API serves both channel resolution and range downloads.
	API    githubapi.Client
	Naming channel.Naming
	// StagingDir holds staged downloads, os.TempDir() when empty.
	StagingDir string
	Deploy     deploy.Resolver
	// Preflight defaults to a checker with the default threshold.
	Preflight *preflight.Checker
	// Engine defaults to one built on API.
	Engine     *transfer.Engine
	Registerer prometheus.Registerer
	Log        *zerolog.Logger
}

type Client struct {
	resolver   *channel.Resolver
	engine     *transfer.Engine
	checker    *preflight.Checker
	writer     *deploy.Writer
	deploy     deploy.Resolver
	naming     channel.Naming
	stagingDir string
	log        *zerolog.Logger

	stagingLock sync.Mutex
	staging     map[string]struct{}
}

func NewClient(config Config) (*Client, error) {
	if config.API == nil {
		return nil, errors.New("ota client requires a GitHub API client")
	}
	log := config.Log
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	stagingDir := config.StagingDir
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}
	checker := config.Preflight
	if checker == nil {
		checker = preflight.NewChecker(log)
	}
	engine := config.Engine
	if engine == nil {
		engine = transfer.NewEngine(config.API, transfer.NewMetrics(config.Registerer), log)
	}
	return &Client{
		resolver:   channel.NewResolver(config.API, config.Naming, log),
		engine:     engine,
		checker:    checker,
		writer:     deploy.NewWriter(log),
		deploy:     config.Deploy,
		naming:     config.Naming,
		stagingDir: stagingDir,
		log:        log,
		staging:    make(map[string]struct{}),
	}, nil
}

// DownloadPullRequest stages the build artifact of pull request number and
// returns the staged path.
func (c *Client) DownloadPullRequest(ctx context.Context, number uint32, onProgress ProgressFunc) (string, error) {
	path, _, err := c.download(ctx, opDownloadPullRequest, channel.PullRequest(number), onProgress)
	return path, err
}

// DownloadDefaultBranch stages the artifact of the latest successful default
// branch build.
func (c *Client) DownloadDefaultBranch(ctx context.Context, onProgress ProgressFunc) (string, error) {
	path, _, err := c.download(ctx, opDownloadDefaultBranch, channel.DefaultBranch(), onProgress)
	return path, err
}

// DownloadStableRelease stages the payload asset of the latest release.
func (c *Client) DownloadStableRelease(ctx context.Context, onProgress ProgressFunc) (string, error) {
	path, _, err := c.download(ctx, opDownloadStableRelease, channel.StableRelease(), onProgress)
	return path, err
}

func (c *Client) Download(ctx context.Context, ch channel.Channel, onProgress ProgressFunc) (string, error) {
	path, _, err := c.download(ctx, downloadOp(ch), ch, onProgress)
	return path, err
}

// Install downloads from ch and deploys the payload, extracting it first when
// the artifact is an archive. It returns the staged and deployed paths.
func (c *Client) Install(ctx context.Context, ch channel.Channel, onProgress ProgressFunc) (string, string, error) {
	staged, desc, err := c.download(ctx, downloadOp(ch), ch, onProgress)
	if err != nil {
		return "", "", err
	}
	var deployed string
	if desc.IsArchive {
		deployed, err = c.DeployArchive(ctx, staged)
	} else {
		deployed, err = c.DeployFile(ctx, staged)
	}
	if err != nil {
		return staged, "", err
	}
	return staged, deployed, nil
}

// DeployArchive extracts the payload entry from the staged archive at path and
// installs it.
func (c *Client) DeployArchive(ctx context.Context, path string) (string, error) {
	log := c.operationLogger(opDeployArchive)
	if err := ctx.Err(); err != nil {
		return "", c.fail(opDeployArchive, err, nil)
	}
	log.Info().Str("archive", path).Str("entry", c.naming.ArchiveEntry).Msg("Extracting payload")
	data, err := archive.ExtractEntry(path, c.naming.ArchiveEntry)
	if err != nil {
		if errors.Is(err, archive.ErrEntryNotFound) {
			if entries, listErr := archive.Entries(path); listErr == nil {
				log.Error().Strs("entries", entries).Str("entry", c.naming.ArchiveEntry).Msg("Payload missing from archive")
			}
		}
		log.Err(err).Msg("Extraction failed")
		return "", c.fail(opDeployArchive, err, nil)
	}
	return c.deployBytes(ctx, opDeployArchive, log, data)
}

// DeployFile installs the staged file at path as the payload.
func (c *Client) DeployFile(ctx context.Context, path string) (string, error) {
	log := c.operationLogger(opDeployFile)
	if err := ctx.Err(); err != nil {
		return "", c.fail(opDeployFile, err, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", c.fail(opDeployFile, &deploy.DeploymentError{Path: path, Op: "read", Err: err}, nil)
	}
	return c.deployBytes(ctx, opDeployFile, log, data)
}

// DeployBytes installs data at the path of the configured environment.
func (c *Client) DeployBytes(ctx context.Context, data []byte) (string, error) {
	return c.deployBytes(ctx, opDeployBytes, c.operationLogger(opDeployBytes), data)
}

func (c *Client) deployBytes(ctx context.Context, op string, log *zerolog.Logger, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", c.fail(op, err, nil)
	}
	target, err := c.deploy.Resolve()
	if err != nil {
		return "", c.fail(op, &deploy.DeploymentError{Path: "", Op: "resolve deployment path", Err: err}, nil)
	}
	log.Debug().Str("environment", string(target.Environment)).Str("path", target.Path).Msg("Resolved deployment target")
	path, err := c.writer.Write(target, data)
	if err != nil {
		log.Err(err).Msg("Deployment failed")
		return "", c.fail(op, err, nil)
	}
	return path, nil
}

func (c *Client) download(ctx context.Context, op string, ch channel.Channel, onProgress ProgressFunc) (string, channel.ArtifactDescriptor, error) {
	log := c.operationLogger(op)
	progress := newProgressRecorder(onProgress)

	if err := c.checker.Check(c.stagingDir); err != nil {
		log.Err(err).Msg("Preflight failed")
		return "", channel.ArtifactDescriptor{}, c.fail(op, err, progress)
	}

	desc, err := c.resolver.Resolve(ctx, ch, func(stage channel.Stage) {
		switch stage {
		case channel.StageCheckingSource:
			progress.emit(Progress{State: CheckingSource})
		case channel.StageResolvingChannel:
			progress.emit(Progress{State: ResolvingChannel})
		}
	})
	if err != nil {
		log.Err(err).Str("channel", ch.String()).Msg("Channel resolution failed")
		return "", channel.ArtifactDescriptor{}, c.fail(op, err, progress)
	}

	path := c.stagedPath(desc)
	release, err := c.claimStaging(path)
	if err != nil {
		return "", desc, c.fail(op, err, progress)
	}
	defer release()

	err = c.engine.Download(ctx, desc, path, func(downloaded, total uint64) {
		progress.emit(Progress{State: DownloadingArtifact, Downloaded: downloaded, Total: total})
	})
	if err != nil {
		log.Err(err).Str("artifact", desc.Name).Msg("Download failed")
		return "", desc, c.fail(op, err, progress)
	}

	progress.emit(Progress{State: Complete, Downloaded: desc.Size, Total: desc.Size, Path: path})
	log.Info().Str("artifact", desc.Name).Str("path", path).Msg("Artifact staged")
	return path, desc, nil
}

// StagedPath returns where an artifact is written while downloading.
func StagedPath(dir string, desc channel.ArtifactDescriptor) string {
	ext := ".tgz"
	if desc.IsArchive {
		ext = ".zip"
	}
	return filepath.Join(dir, "ota-"+desc.StagingKey+ext)
}

func (c *Client) stagedPath(desc channel.ArtifactDescriptor) string {
	return StagedPath(c.stagingDir, desc)
}

func (c *Client) claimStaging(path string) (func(), error) {
	c.stagingLock.Lock()
	defer c.stagingLock.Unlock()
	if _, busy := c.staging[path]; busy {
		return nil, errors.Wrap(ErrStagingBusy, path)
	}
	c.staging[path] = struct{}{}
	return func() {
		c.stagingLock.Lock()
		delete(c.staging, path)
		c.stagingLock.Unlock()
	}, nil
}

func (c *Client) operationLogger(op string) *zerolog.Logger {
	log := c.log.With().Str("op", op).Str("opID", uuid.New().String()).Logger()
	return &log
}

func (c *Client) fail(op string, err error, progress *progressRecorder) error {
	opErr := &Error{Op: op, Kind: classify(err), Err: err}
	if progress != nil {
		opErr.Progress = progress.snapshot()
	}
	return opErr
}

func downloadOp(ch channel.Channel) string {
	switch ch.Kind() {
	case channel.PullRequestKind:
		return opDownloadPullRequest
	case channel.DefaultBranchKind:
		return opDownloadDefaultBranch
	default:
		return opDownloadStableRelease
	}
}
