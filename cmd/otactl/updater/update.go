package updater

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ereader-ota/otactl/channel"
	"github.com/ereader-ota/otactl/cmd/otactl/cliutil"
	"github.com/ereader-ota/otactl/cmd/otactl/flags"
	"github.com/ereader-ota/otactl/githubapi"
	"github.com/ereader-ota/otactl/logger"
	"github.com/ereader-ota/otactl/metrics"
	"github.com/ereader-ota/otactl/ota"
	"github.com/ereader-ota/otactl/preflight"
	"github.com/ereader-ota/otactl/transfer"
)

var buildInfo = cliutil.GetBuildInfo("", "DEV", "unknown")

func Init(info *cliutil.BuildInfo) {
	buildInfo = info
}

// Exit codes by failure kind, so scripts can tell "no build yet" apart from
// a broken network or a full disk.
const (
	exitCodeFailure              = 1
	exitCodeNotFound             = 10
	exitCodeAPI                  = 11
	exitCodeTransport            = 12
	exitCodeInsufficientResource = 13
	exitCodeFormat               = 14
	exitCodeDeployment           = 15
	exitCodeCanceled             = 130
)

// statusErr implements cli.ExitCoder with a code derived from the error kind.
type statusErr struct {
	err error
}

func (e *statusErr) Error() string {
	return e.err.Error()
}

func (e *statusErr) Unwrap() error {
	return e.err
}

func (e *statusErr) ExitCode() int {
	switch ota.KindOf(e.err) {
	case ota.KindNotFound:
		return exitCodeNotFound
	case ota.KindAPI:
		return exitCodeAPI
	case ota.KindTransport:
		return exitCodeTransport
	case ota.KindInsufficientResource:
		return exitCodeInsufficientResource
	case ota.KindFormat:
		return exitCodeFormat
	case ota.KindDeployment:
		return exitCodeDeployment
	case ota.KindCanceled:
		return exitCodeCanceled
	default:
		return exitCodeFailure
	}
}

// invocation is everything one command invocation needs.
type invocation struct {
	settings Settings
	log      *zerolog.Logger
	registry *prometheus.Registry
	status   *metrics.StatusTracker
	reporter *cliutil.ErrorReporter
	client   *ota.Client
}

func newInvocation(c *cli.Context, op string, remote bool) (*invocation, error) {
	settings, warnings, err := loadSettings(c)
	if err != nil {
		return nil, err
	}
	log := logger.Create(settings.Logging.Config())
	if warnings != "" {
		log.Warn().Msgf("Your configuration file has unknown keys: %s", warnings)
	}
	if opts := settings.Logging; opts.File != "" && opts.Directory != "" {
		log.Error().Msgf("Your config includes values for both %s (%s) and %s (%s), but they are incompatible. %s takes precedence.",
			flags.LogFile, opts.File, flags.LogDirectory, opts.Directory, flags.LogFile)
	}
	buildInfo.Log(log)

	reporter, err := cliutil.NewErrorReporter(settings.SentryDSN, buildInfo.Version())
	if err != nil {
		log.Err(err).Msg("Continuing without error reporting")
		reporter = &cliutil.ErrorReporter{}
	}

	registry := prometheus.NewRegistry()
	metrics.RegisterBuildInfo(registry, buildInfo.BuildType, buildInfo.BuildTime, buildInfo.Version())

	rt := &invocation{
		settings: settings,
		log:      log,
		registry: registry,
		status:   metrics.NewStatusTracker(op),
		reporter: reporter,
	}
	api, err := rt.newAPIClient(remote)
	if err != nil {
		return nil, err
	}

	engine := transfer.NewEngine(api, transfer.NewMetrics(registry), log)
	if settings.ChunkTimeout > 0 {
		engine.ChunkTimeout = settings.ChunkTimeout
	}
	checker := preflight.NewChecker(log)
	if settings.RequiredMB > 0 {
		checker.RequiredMB = settings.RequiredMB
	}

	rt.client, err = ota.NewClient(ota.Config{
		API:        api,
		Naming:     settings.Naming,
		StagingDir: settings.StagingDir,
		Deploy:     settings.Deploy,
		Preflight:  checker,
		Engine:     engine,
		Registerer: registry,
		Log:        log,
	})
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// newAPIClient builds the GitHub client. Local-only commands get a client
// without credentials that is never called.
func (rt *invocation) newAPIClient(remote bool) (githubapi.Client, error) {
	token, err := rt.settings.RequireToken()
	if err != nil {
		if remote {
			return nil, err
		}
		token = githubapi.Token("unused")
	}
	return githubapi.NewRESTClient(rt.settings.APIURL, rt.settings.Repository, token, buildInfo.UserAgent(), rt.log)
}

// run executes fn next to the metrics server, when one is configured, and
// stops the server once fn returns.
func (rt *invocation) run(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(ctx)

	if addr := rt.settings.Metrics; addr != "" {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return errors.Wrapf(err, "failed to listen on metrics address %s", addr)
		}
		group.Go(func() error {
			return metrics.ServeMetrics(groupCtx, listener, rt.registry, rt.status, rt.log)
		})
	}
	group.Go(func() error {
		defer cancel()
		err := fn(groupCtx)
		rt.status.Finish(err)
		return err
	})

	err := group.Wait()
	if err != nil {
		rt.reporter.Capture(err, map[string]string{"kind": ota.KindOf(err).String()})
		rt.reporter.Flush()
		return &statusErr{err: err}
	}
	return nil
}

// PullRequest is the handler for the pr command
func PullRequest(c *cli.Context) error {
	if c.NArg() != 1 {
		return cliutil.UsageErrorf("pr requires exactly one argument: the pull request number")
	}
	number, err := strconv.ParseUint(c.Args().First(), 10, 32)
	if err != nil || number == 0 {
		return cliutil.UsageErrorf(fmt.Sprintf("%q is not a valid pull request number", c.Args().First()))
	}
	return download(c, channel.PullRequest(uint32(number)))
}

// DefaultBranch is the handler for the branch command
func DefaultBranch(c *cli.Context) error {
	return download(c, channel.DefaultBranch())
}

// StableRelease is the handler for the release command
func StableRelease(c *cli.Context) error {
	return download(c, channel.StableRelease())
}

func download(c *cli.Context, ch channel.Channel) error {
	rt, err := newInvocation(c, ch.String(), true)
	if err != nil {
		return err
	}
	printer := newProgressPrinter(os.Stderr, rt.status)
	defer printer.finish()

	return rt.run(c.Context, func(ctx context.Context) error {
		if !c.Bool(flags.Deploy) {
			staged, err := rt.client.Download(ctx, ch, printer.Update)
			if err != nil {
				return err
			}
			printer.finish()
			fmt.Fprintln(c.App.Writer, staged)
			return nil
		}
		staged, deployed, err := rt.client.Install(ctx, ch, printer.Update)
		if err != nil {
			return err
		}
		printer.finish()
		rt.log.Info().Str("staged", staged).Str("deployed", deployed).Msg("Update installed")
		fmt.Fprintln(c.App.Writer, deployed)
		return nil
	})
}

// Deploy is the handler for the deploy command
func Deploy(c *cli.Context) error {
	archivePath, filePath := c.String(flags.Archive), c.String(flags.File)
	if (archivePath == "") == (filePath == "") {
		return cliutil.UsageErrorf("deploy requires exactly one of --archive or --file")
	}
	rt, err := newInvocation(c, "deploy", false)
	if err != nil {
		return err
	}
	return rt.run(c.Context, func(ctx context.Context) error {
		var deployed string
		var err error
		if archivePath != "" {
			deployed, err = rt.client.DeployArchive(ctx, archivePath)
		} else {
			deployed, err = rt.client.DeployFile(ctx, filePath)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, deployed)
		return nil
	})
}
