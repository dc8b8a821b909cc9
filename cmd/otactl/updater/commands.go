package updater

import (
	"github.com/urfave/cli/v2"

	"github.com/ereader-ota/otactl/cmd/otactl/cliutil"
	"github.com/ereader-ota/otactl/cmd/otactl/flags"
)

var deployFlag = &cli.BoolFlag{
	Name:  flags.Deploy,
	Usage: "Install the payload at the environment deployment path after downloading it.",
}

func Commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "pr",
			Action:    cliutil.Action(PullRequest),
			Usage:     "Download the build of a pull request",
			ArgsUsage: "<number>",
			Description: `Looks up the head commit of the pull request, finds its build workflow run
and downloads the first artifact named after the pull request.

The staged file path is printed on success, or the deployed path with --deploy.`,
			Flags: []cli.Flag{deployFlag},
		},
		{
			Name:        "branch",
			Action:      cliutil.Action(DefaultBranch),
			Usage:       "Download the latest successful build of the default branch",
			ArgsUsage:   " ",
			Description: `Finds the most recent successful push build on the default branch and downloads its artifact.`,
			Flags:       []cli.Flag{deployFlag},
		},
		{
			Name:        "release",
			Action:      cliutil.Action(StableRelease),
			Usage:       "Download the payload of the latest published release",
			ArgsUsage:   " ",
			Description: `Downloads the release asset named by --release-asset from the latest release.`,
			Flags:       []cli.Flag{deployFlag},
		},
		{
			Name:      "deploy",
			Action:    cliutil.Action(Deploy),
			Usage:     "Install a previously staged artifact",
			ArgsUsage: " ",
			Description: `Installs a staged payload at the deployment path of the configured environment.
Use --archive for a build artifact zip and --file for a release payload.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:      flags.Archive,
					Usage:     "Staged build artifact to extract the payload from.",
					TakesFile: true,
				},
				&cli.StringFlag{
					Name:      flags.File,
					Usage:     "Staged payload to install as is.",
					TakesFile: true,
				},
			},
		},
	}
}

// Flags are the global flags shared by every command.
func Flags() []cli.Flag {
	flagList := []cli.Flag{
		&cli.StringFlag{
			Name:      flags.Config,
			Usage:     "Specifies a config file in YAML format.",
			EnvVars:   []string{"OTACTL_CONFIG"},
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:    flags.Repository,
			Usage:   "Repository publishing the builds, in owner/name form.",
			EnvVars: []string{"OTACTL_REPOSITORY"},
		},
		&cli.StringFlag{
			Name:    flags.APIURL,
			Usage:   "Base URL of the GitHub REST API.",
			EnvVars: []string{"OTACTL_API_URL"},
		},
		&cli.StringFlag{
			Name:  flags.Token,
			Usage: "GitHub token. Defaults to GITHUB_TOKEN, GH_TOKEN or --token-file.",
		},
		&cli.StringFlag{
			Name:      flags.TokenFile,
			Usage:     "File holding the GitHub token.",
			EnvVars:   []string{"OTACTL_TOKEN_FILE"},
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  flags.WorkflowName,
			Usage: "Name of the workflow run producing pull request builds.",
		},
		&cli.StringFlag{
			Name:  flags.WorkflowFile,
			Usage: "Workflow file queried for default branch builds.",
		},
		&cli.StringFlag{
			Name:  flags.ArtifactBase,
			Usage: "Common prefix of build artifact names.",
		},
		&cli.StringFlag{
			Name:  flags.ReleaseAsset,
			Usage: "Exact asset name of the release payload.",
		},
		&cli.StringFlag{
			Name:  flags.ArchiveEntry,
			Usage: "Payload file name inside build artifacts.",
		},
		&cli.BoolFlag{
			Name:    flags.TestBuild,
			Usage:   "Use the test flavour of build artifacts.",
			EnvVars: []string{"OTACTL_TEST_BUILD"},
		},
		&cli.StringFlag{
			Name:    flags.StagingDir,
			Usage:   "Directory receiving downloads. Defaults to the system temp dir.",
			EnvVars: []string{"OTACTL_STAGING_DIR"},
		},
		&cli.StringFlag{
			Name:    flags.Environment,
			Usage:   "Deployment environment {test, emulator, production}.",
			EnvVars: []string{"OTACTL_ENVIRONMENT"},
		},
		&cli.StringFlag{
			Name:  flags.CardRoot,
			Usage: "Storage mount of the device in production.",
		},
		&cli.StringFlag{
			Name:  flags.SandboxDir,
			Usage: "Root of the test environment deployment path.",
		},
		&cli.DurationFlag{
			Name:  flags.ChunkTimeout,
			Usage: "Timeout of a single range request.",
		},
		&cli.Uint64Flag{
			Name:  flags.RequiredMB,
			Usage: "Free space required in the staging dir before downloading, in MiB.",
		},
		&cli.StringFlag{
			Name:    flags.Metrics,
			Usage:   "Listen address for /metrics and /status while a command runs.",
			EnvVars: []string{"OTACTL_METRICS"},
		},
		&cli.StringFlag{
			Name:    flags.SentryDSN,
			Usage:   "Report unexpected failures to this Sentry DSN.",
			EnvVars: []string{"OTACTL_SENTRY_DSN"},
		},
	}
	return append(flagList, cliutil.ConfigureLoggingFlags(false)...)
}
