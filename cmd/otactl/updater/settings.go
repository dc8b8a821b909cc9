package updater

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ereader-ota/otactl/channel"
	"github.com/ereader-ota/otactl/cmd/otactl/flags"
	"github.com/ereader-ota/otactl/config"
	"github.com/ereader-ota/otactl/deploy"
	"github.com/ereader-ota/otactl/githubapi"
	"github.com/ereader-ota/otactl/logger"
)

const defaultRepository = "ogkevin/cadmus"

// Settings is the merged view of flags, environment and config file. Flags
// win over the file, the file wins over defaults.
type Settings struct {
	Repository string
	APIURL     string
	Token      githubapi.Token
	Naming     channel.Naming

	StagingDir string
	Deploy     deploy.Resolver

	ChunkTimeout time.Duration
	RequiredMB   uint64

	Logging   logger.Options
	Metrics   string
	SentryDSN string

	tokenErr error
}

// RequireToken returns the credential, or why none could be found. Only
// remote operations need it.
func (s Settings) RequireToken() (githubapi.Token, error) {
	if s.tokenErr != nil {
		return "", s.tokenErr
	}
	return s.Token, nil
}

// flagSource is the part of *cli.Context settings are read from.
type flagSource interface {
	IsSet(name string) bool
	String(name string) string
	Bool(name string) bool
	Duration(name string) time.Duration
	Uint64(name string) uint64
}

func stringSetting(c flagSource, name, fileValue, defaultValue string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// loadSettings reads the config file named by --config, or the first default
// one, and merges it with the flags of c. It also returns the config file
// warnings, logged once a logger exists.
func loadSettings(c *cli.Context) (Settings, string, error) {
	nop := zerolog.Nop()
	root, warnings, err := config.Load(c.String(flags.Config), &nop)
	if err != nil {
		return Settings{}, "", err
	}
	settings, err := mergeSettings(c, root, os.Getenv)
	return settings, warnings, err
}

func mergeSettings(c flagSource, root config.Root, getenv func(string) string) (Settings, error) {
	s := Settings{
		Repository: stringSetting(c, flags.Repository, root.Repository, defaultRepository),
		APIURL:     stringSetting(c, flags.APIURL, root.APIURL, githubapi.DefaultBaseURL),
		StagingDir: stringSetting(c, flags.StagingDir, root.StagingDir, os.TempDir()),
		Metrics:    stringSetting(c, flags.Metrics, root.Metrics, ""),
		SentryDSN:  stringSetting(c, flags.SentryDSN, root.SentryDSN, ""),
		Logging: logger.Options{
			Level:     stringSetting(c, flags.LogLevel, root.LogLevel, "info"),
			File:      stringSetting(c, flags.LogFile, root.LogFile, ""),
			Directory: stringSetting(c, flags.LogDirectory, root.LogDirectory, ""),
			JSON:      c.String(flags.LogFormatOutput) == "json",
			NoColor:   c.Bool(flags.NoColor),
			Quiet:     c.Bool(flags.Quiet),
		},
	}

	naming := channel.DefaultNaming()
	naming.WorkflowName = stringSetting(c, flags.WorkflowName, root.WorkflowName, naming.WorkflowName)
	naming.WorkflowFile = stringSetting(c, flags.WorkflowFile, root.WorkflowFile, naming.WorkflowFile)
	naming.ArtifactBase = stringSetting(c, flags.ArtifactBase, root.ArtifactBase, naming.ArtifactBase)
	naming.ReleaseAsset = stringSetting(c, flags.ReleaseAsset, root.ReleaseAsset, naming.ReleaseAsset)
	testBuild := root.TestBuild
	if c.IsSet(flags.TestBuild) {
		testBuild = c.Bool(flags.TestBuild)
	}
	if testBuild {
		naming = naming.ForTestBuild()
	}
	naming.ArchiveEntry = stringSetting(c, flags.ArchiveEntry, root.ArchiveEntry, naming.ArchiveEntry)
	s.Naming = naming

	env, err := deploy.ParseEnvironment(stringSetting(c, flags.Environment, root.Environment, string(deploy.Production)))
	if err != nil {
		return Settings{}, err
	}
	s.Deploy = deploy.Resolver{
		Environment: env,
		CardRoot:    stringSetting(c, flags.CardRoot, root.CardRoot, deploy.DefaultCardRoot),
		SandboxDir:  stringSetting(c, flags.SandboxDir, root.SandboxDir, ""),
	}

	s.ChunkTimeout = root.ChunkTimeout
	if c.IsSet(flags.ChunkTimeout) {
		s.ChunkTimeout = c.Duration(flags.ChunkTimeout)
	}
	s.RequiredMB = root.RequiredMB
	if c.IsSet(flags.RequiredMB) {
		s.RequiredMB = c.Uint64(flags.RequiredMB)
	}

	s.Token, s.tokenErr = resolveToken(c, root, getenv)
	return s, nil
}

// resolveToken prefers --token, then GITHUB_TOKEN or GH_TOKEN, then the token
// file from flags or config.
func resolveToken(c flagSource, root config.Root, getenv func(string) string) (githubapi.Token, error) {
	if c.IsSet(flags.Token) {
		if token := githubapi.Token(c.String(flags.Token)); !token.IsEmpty() {
			return token, nil
		}
	}
	for _, name := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if token := githubapi.Token(getenv(name)); !token.IsEmpty() {
			return token, nil
		}
	}
	if tokenFile := stringSetting(c, flags.TokenFile, root.TokenFile, ""); tokenFile != "" {
		return githubapi.ReadTokenFile(tokenFile)
	}
	return "", githubapi.ErrNoToken
}
