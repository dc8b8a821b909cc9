package ota

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/pkg/errors"

	"github.com/ereader-ota/otactl/archive"
	"github.com/ereader-ota/otactl/channel"
	"github.com/ereader-ota/otactl/deploy"
	"github.com/ereader-ota/otactl/githubapi"
	"github.com/ereader-ota/otactl/preflight"
	"github.com/ereader-ota/otactl/transfer"
)

// ErrStagingBusy is returned when another download already owns the staged path.
var ErrStagingBusy = errors.New("staged file is in use by another download")

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAPI
	KindTransport
	KindInsufficientResource
	KindFormat
	KindDeployment
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAPI:
		return "api"
	case KindTransport:
		return "transport"
	case KindInsufficientResource:
		return "insufficient resource"
	case KindFormat:
		return "format"
	case KindDeployment:
		return "deployment"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the failure of one client operation.
type Error struct {
	Op   string
	Kind Kind
	Err  error
	// Progress holds the events emitted before the failure.
	Progress []Progress
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies err, looking through an *Error first.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	var (
		spaceErr    *preflight.InsufficientSpaceError
		statErr     *preflight.StatError
		prErr       *channel.PullRequestNotFoundError
		noArtifacts *channel.NoArtifactsError
		missing     *channel.ArtifactNotFoundError
		chunkErr    *transfer.ChunkError
		stagingErr  *transfer.StagingError
		formatErr   *archive.FormatError
		deployErr   *deploy.DeploymentError
		apiErr      *githubapi.APIError
		urlErr      *url.Error
		netErr      net.Error
	)
	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &spaceErr), errors.As(err, &statErr), errors.Is(err, ErrStagingBusy):
		return KindInsufficientResource
	case errors.As(err, &prErr),
		errors.As(err, &noArtifacts),
		errors.As(err, &missing),
		errors.Is(err, channel.ErrNoDefaultBranchArtifacts):
		return KindNotFound
	case errors.As(err, &chunkErr):
		return KindTransport
	case errors.As(err, &stagingErr), errors.As(err, &deployErr):
		return KindDeployment
	case errors.As(err, &formatErr):
		return KindFormat
	case errors.Is(err, githubapi.ErrNotFound):
		return KindNotFound
	case errors.As(err, &apiErr):
		return KindAPI
	case errors.As(err, &urlErr), errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return KindTransport
	default:
		return KindUnknown
	}
}
