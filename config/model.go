package config

import "time"

// Root is the content of the otactl configuration file. Every key is optional;
// command line flags take precedence.
type Root struct {
	Repository string `yaml:"repository,omitempty"`
	APIURL     string `yaml:"apiURL,omitempty"`
	TokenFile  string `yaml:"tokenFile,omitempty"`

	WorkflowName string `yaml:"workflowName,omitempty"`
	WorkflowFile string `yaml:"workflowFile,omitempty"`
	ArtifactBase string `yaml:"artifactBase,omitempty"`
	ReleaseAsset string `yaml:"releaseAsset,omitempty"`
	ArchiveEntry string `yaml:"archiveEntry,omitempty"`
	TestBuild    bool   `yaml:"testBuild,omitempty"`

	StagingDir  string `yaml:"stagingDir,omitempty"`
	Environment string `yaml:"environment,omitempty"`
	CardRoot    string `yaml:"cardRoot,omitempty"`
	SandboxDir  string `yaml:"sandboxDir,omitempty"`

	// Transfer tuning. Zero values keep the defaults.
	ChunkTimeout time.Duration `yaml:"chunkTimeout,omitempty"`
	RequiredMB   uint64        `yaml:"requiredMB,omitempty"`

	LogLevel     string `yaml:"logLevel,omitempty"`
	LogFile      string `yaml:"logFile,omitempty"`
	LogDirectory string `yaml:"logDirectory,omitempty"`
	Metrics      string `yaml:"metrics,omitempty"`
	SentryDSN    string `yaml:"sentryDSN,omitempty"`
}
