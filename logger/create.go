// Package logger builds the zerolog loggers used across otactl.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	fallbacklog "github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	dirPermMode  = 0744 // rwxr--r--
	filePermMode = 0644 // rw-r--r--

	consoleTimeFormat = time.RFC3339
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = utcNow
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func fallbackLogger(err error) *zerolog.Logger {
	failLog := fallbacklog.With().Logger()
	fallbacklog.Error().Msgf("Falling back to a default logger due to logger setup failure: %s", err)

	return &failLog
}

// resilientMultiWriter keeps writing to the remaining sinks when one of them
// fails, e.g. a console that went away.
type resilientMultiWriter struct {
	level   zerolog.Level
	writers []io.Writer
}

func (t resilientMultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range t.writers {
		_, _ = w.Write(p)
	}
	return len(p), nil
}

func (t resilientMultiWriter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	if t.level <= level {
		for _, w := range t.writers {
			_, _ = w.Write(p)
		}
	}
	return len(p), nil
}

// Create returns a logger for loggerConfig, or a console logger at the default
// level when it is nil.
func Create(loggerConfig *Config) *zerolog.Logger {
	if loggerConfig == nil {
		loggerConfig = Options{}.Config()
	}
	return newZerolog(loggerConfig, os.Stderr)
}

func newZerolog(loggerConfig *Config, console *os.File) *zerolog.Logger {
	var writers []io.Writer

	if loggerConfig.ConsoleConfig != nil {
		writers = append(writers, createConsoleLogger(*loggerConfig.ConsoleConfig, console))
	}

	if loggerConfig.FileConfig != nil {
		fileLogger, err := createFileWriter(*loggerConfig.FileConfig)
		if err != nil {
			return fallbackLogger(err)
		}
		writers = append(writers, fileLogger)
	}

	if loggerConfig.RollingConfig != nil {
		rollingLogger, err := createRollingLogger(*loggerConfig.RollingConfig)
		if err != nil {
			return fallbackLogger(err)
		}
		writers = append(writers, rollingLogger)
	}

	level, levelErr := zerolog.ParseLevel(loggerConfig.MinLevel)
	if levelErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	multi := resilientMultiWriter{level, writers}
	log := zerolog.New(multi).With().Timestamp().Logger()
	if levelErr != nil {
		log.Error().Msgf("Failed to parse log level %q, using %q instead", loggerConfig.MinLevel, level)
	}

	return &log
}

func createConsoleLogger(config ConsoleConfig, out *os.File) io.Writer {
	if config.asJSON {
		return &jsonConsoleWriter{out: out}
	}
	return zerolog.ConsoleWriter{
		Out:        colorable.NewColorable(out),
		NoColor:    config.noColor || !term.IsTerminal(int(out.Fd())),
		TimeFormat: consoleTimeFormat,
	}
}

func createFileWriter(config FileConfig) (io.Writer, error) {
	if config.Dirname != "" {
		if err := os.MkdirAll(config.Dirname, dirPermMode); err != nil {
			return nil, fmt.Errorf("unable to create directories for new logfile: %s", err)
		}
	}
	logFile, err := os.OpenFile(config.Fullpath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermMode)
	if err != nil {
		return nil, fmt.Errorf("unable to create a new logfile: %s", err)
	}
	return logFile, nil
}

func createRollingLogger(config RollingConfig) (io.Writer, error) {
	if err := os.MkdirAll(config.Dirname, dirPermMode); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(config.Dirname, config.Filename),
		MaxBackups: config.maxBackups,
		MaxSize:    config.maxSize,
		MaxAge:     config.maxAge,
	}, nil
}
