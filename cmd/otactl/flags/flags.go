package flags

const (
	// Config is the command line flag name for the config file path
	Config = "config"

	// Repository is the owner/name of the repository publishing builds
	Repository = "repository"

	// APIURL is the base URL of the GitHub REST API
	APIURL = "api-url"

	// Token is the GitHub credential
	Token = "token"

	// TokenFile is a file holding the GitHub credential
	TokenFile = "token-file"

	WorkflowName = "workflow-name"
	WorkflowFile = "workflow-file"
	ArtifactBase = "artifact-base"
	ReleaseAsset = "release-asset"
	ArchiveEntry = "archive-entry"

	// TestBuild selects the test flavour of build artifacts
	TestBuild = "test-build"

	// StagingDir is the directory receiving downloads
	StagingDir = "staging-dir"

	// Environment selects the deployment path: test, emulator or production
	Environment = "environment"

	// CardRoot is the storage mount of a production device
	CardRoot = "card-root"

	// SandboxDir replaces the temp dir for test deployments
	SandboxDir = "sandbox-dir"

	// ChunkTimeout bounds a single range request
	ChunkTimeout = "chunk-timeout"

	// RequiredMB is the free space needed before downloading
	RequiredMB = "required-mb"

	// Metrics is the address to serve prometheus metrics on
	Metrics = "metrics"

	// SentryDSN enables error reporting
	SentryDSN = "sentry-dsn"

	// Deploy installs the payload after downloading it
	Deploy = "deploy"

	// Archive is a staged zip to deploy from
	Archive = "archive"

	// File is a staged payload to deploy as is
	File = "file"

	// LogLevel is the command line flag for the logging level
	LogLevel = "loglevel"

	// LogFile is the command line flag to define the file where application logs will be stored
	LogFile = "logfile"

	// LogDirectory is the command line flag to define the directory where application logs will be stored.
	LogDirectory = "log-directory"

	// LogFormatOutput allows the command line logs to be output as JSON.
	LogFormatOutput = "log-format"

	// NoColor disables colored console output
	NoColor = "no-color"

	// Quiet turns off console logging; progress is still printed
	Quiet = "quiet"
)
