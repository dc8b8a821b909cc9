package logger

import (
	"path/filepath"
)

const (
	defaultMinLevel    = "info"
	defaultLogFilename = "otactl.log"

	rollingMaxSize    = 1 // megabytes
	rollingMaxBackups = 5 // files
	rollingMaxAge     = 0 // keep forever
)

// Config selects the sinks of a logger. A nil sink is disabled.
type Config struct {
	ConsoleConfig *ConsoleConfig
	FileConfig    *FileConfig
	RollingConfig *RollingConfig

	MinLevel string // debug | info | warn | error | fatal
}

type ConsoleConfig struct {
	noColor bool
	asJSON  bool
}

type FileConfig struct {
	Dirname  string
	Filename string
}

func (fc *FileConfig) Fullpath() string {
	return filepath.Join(fc.Dirname, fc.Filename)
}

type RollingConfig struct {
	Dirname  string
	Filename string

	maxSize    int
	maxBackups int
	maxAge     int
}

// Options are the user-facing logging settings, from flags or the config file.
type Options struct {
	Level     string
	Quiet     bool
	JSON      bool
	NoColor   bool
	File      string
	Directory string
}

// Config turns the options into sinks. File takes precedence over Directory.
func (o Options) Config() *Config {
	cfg := &Config{MinLevel: o.Level}
	if cfg.MinLevel == "" {
		cfg.MinLevel = defaultMinLevel
	}
	if !o.Quiet {
		cfg.ConsoleConfig = &ConsoleConfig{noColor: o.NoColor, asJSON: o.JSON}
	}
	switch {
	case o.File != "":
		dirname, filename := filepath.Split(o.File)
		cfg.FileConfig = &FileConfig{Dirname: dirname, Filename: filename}
	case o.Directory != "":
		cfg.RollingConfig = &RollingConfig{
			Dirname:    o.Directory,
			Filename:   defaultLogFilename,
			maxSize:    rollingMaxSize,
			maxBackups: rollingMaxBackups,
			maxAge:     rollingMaxAge,
		}
	}
	return cfg
}
