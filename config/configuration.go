// Package config locates and reads the otactl configuration file.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	yaml "gopkg.in/yaml.v3"
)

var (
	// DefaultConfigFiles is the file names from which we attempt to read configuration.
	DefaultConfigFiles = []string{"config.yml", "config.yaml"}

	// DefaultUnixConfigLocation is the primary location to find a config file
	DefaultUnixConfigLocation = "/usr/local/etc/otactl"

	defaultUserConfigDirs = []string{"~/.otactl"}
	defaultNixConfigDirs  = []string{"/etc/otactl", DefaultUnixConfigLocation}

	ErrNoConfigFile = fmt.Errorf("Cannot determine default configuration path. No file %v in %v", DefaultConfigFiles, DefaultConfigSearchDirectories())
)

// DefaultConfigSearchDirectories returns the default folder locations of the config
func DefaultConfigSearchDirectories() []string {
	dirs := make([]string, len(defaultUserConfigDirs))
	copy(dirs, defaultUserConfigDirs)
	if runtime.GOOS != "windows" {
		dirs = append(dirs, defaultNixConfigDirs...)
	}
	return dirs
}

// FileExists checks to see if a file exist at the provided path.
func FileExists(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// ignore missing files
			return false, nil
		}
		return false, err
	}
	_ = f.Close()
	return true, nil
}

// FindDefaultConfigPath returns the first path that contains a config file.
// If none of the combination of DefaultConfigSearchDirectories() and DefaultConfigFiles
// contains a config file, return empty string.
func FindDefaultConfigPath() string {
	return findConfigPath(DefaultConfigSearchDirectories())
}

func findConfigPath(dirs []string) string {
	for _, configDir := range dirs {
		dirPath, err := homedir.Expand(configDir)
		if err != nil {
			continue
		}
		for _, configFile := range DefaultConfigFiles {
			path := filepath.Join(dirPath, configFile)
			if ok, _ := FileExists(path); ok {
				return path
			}
		}
	}
	return ""
}

// ReadConfigFile decodes the file at configPath. Unknown keys do not fail the
// read; they are reported through warnings. An empty file yields a zero Root.
func ReadConfigFile(configPath string, log *zerolog.Logger) (root Root, warnings string, err error) {
	expanded, err := homedir.Expand(configPath)
	if err != nil {
		return Root{}, "", errors.Wrapf(err, "cannot expand config path %s", configPath)
	}
	log.Debug().Msgf("Loading configuration from %s", expanded)
	contents, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			err = ErrNoConfigFile
		}
		return Root{}, "", err
	}

	if err := yaml.NewDecoder(bytes.NewReader(contents)).Decode(&root); err != nil {
		if err == io.EOF {
			log.Error().Msgf("Configuration file %s was empty", expanded)
			return Root{}, "", nil
		}
		return Root{}, "", errors.Wrap(err, "error parsing YAML in config file at "+expanded)
	}

	// Parse it again, with strict mode, to find warnings.
	decoder := yaml.NewDecoder(bytes.NewReader(contents))
	decoder.KnownFields(true)
	var strict Root
	if err := decoder.Decode(&strict); err != nil {
		warnings = err.Error()
	}

	return root, warnings, nil
}

// Load reads configPath, or the first default config file when it is empty.
// Having no default config file is not an error; a missing explicit one is.
// Unknown keys come back as warnings for the caller to log.
func Load(configPath string, log *zerolog.Logger) (Root, string, error) {
	if configPath == "" {
		configPath = FindDefaultConfigPath()
		if configPath == "" {
			log.Debug().Msg("No configuration file found")
			return Root{}, "", nil
		}
	}
	root, warnings, err := ReadConfigFile(configPath, log)
	if err != nil {
		return Root{}, "", errors.Wrapf(err, "cannot read config file %s", configPath)
	}
	return root, warnings, nil
}
