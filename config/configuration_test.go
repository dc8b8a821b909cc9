package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestReadConfigFile(t *testing.T) {
	rawYAML := `
repository: owner/widget
tokenFile: ~/.otactl/token
workflowName: Build
artifactBase: widget
testBuild: true
environment: emulator
chunkTimeout: 45s
requiredMB: 250
logLevel: debug
metrics: localhost:9090
`
	log := zerolog.Nop()
	path := writeConfig(t, t.TempDir(), "config.yml", rawYAML)

	root, warnings, err := ReadConfigFile(path, &log)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, Root{
		Repository:   "owner/widget",
		TokenFile:    "~/.otactl/token",
		WorkflowName: "Build",
		ArtifactBase: "widget",
		TestBuild:    true,
		Environment:  "emulator",
		ChunkTimeout: 45 * time.Second,
		RequiredMB:   250,
		LogLevel:     "debug",
		Metrics:      "localhost:9090",
	}, root)
}

func TestReadConfigFileWarnings(t *testing.T) {
	log := zerolog.Nop()
	path := writeConfig(t, t.TempDir(), "config.yml", "repository: owner/widget\nretries: 5\n")

	root, warnings, err := ReadConfigFile(path, &log)
	require.NoError(t, err)
	assert.Equal(t, "owner/widget", root.Repository)
	assert.Contains(t, warnings, "retries")
}

func TestReadConfigFileErrors(t *testing.T) {
	log := zerolog.Nop()
	dir := t.TempDir()

	_, _, err := ReadConfigFile(filepath.Join(dir, "missing.yml"), &log)
	assert.Equal(t, ErrNoConfigFile, err)

	_, _, err = ReadConfigFile(writeConfig(t, dir, "bad.yml", "repository: [unterminated"), &log)
	assert.Error(t, err)

	root, _, err := ReadConfigFile(writeConfig(t, dir, "empty.yml", ""), &log)
	require.NoError(t, err)
	assert.Equal(t, Root{}, root)
}

func TestFindConfigPath(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	assert.Equal(t, "", findConfigPath([]string{first, second}))

	yamlPath := writeConfig(t, second, "config.yaml", "repository: a/b\n")
	assert.Equal(t, yamlPath, findConfigPath([]string{first, second}))

	ymlPath := writeConfig(t, second, "config.yml", "repository: a/b\n")
	assert.Equal(t, ymlPath, findConfigPath([]string{first, second}))
}

func TestLoadExplicitPath(t *testing.T) {
	log := zerolog.Nop()
	root, warnings, err := Load(filepath.Join(t.TempDir(), "none.yml"), &log)
	assert.ErrorIs(t, err, ErrNoConfigFile)
	assert.Equal(t, Root{}, root)
	assert.Empty(t, warnings)

	path := writeConfig(t, t.TempDir(), "otactl.yml", "stagingDir: /data/ota\nchunkSize: 1\n")
	root, warnings, err = Load(path, &log)
	require.NoError(t, err)
	assert.Equal(t, "/data/ota", root.StagingDir)
	assert.Contains(t, warnings, "chunkSize")
}
