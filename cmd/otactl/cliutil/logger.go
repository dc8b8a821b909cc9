package cliutil

import (
	"github.com/urfave/cli/v2"

	"github.com/ereader-ota/otactl/cmd/otactl/flags"
)

var (
	debugLevelWarning = "At debug level otactl will log request URLs and API responses. " +
		"The GitHub token is never logged."

	FlagLogOutput = &cli.StringFlag{
		Name:    flags.LogFormatOutput,
		Usage:   "Output format for the logs (default, json)",
		Value:   "default",
		EnvVars: []string{"OTACTL_LOG_FORMAT"},
	}
)

func ConfigureLoggingFlags(shouldHide bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flags.LogLevel,
			Usage:   "Application logging level {debug, info, warn, error, fatal}. " + debugLevelWarning,
			EnvVars: []string{"OTACTL_LOGLEVEL"},
			Hidden:  shouldHide,
		},
		&cli.StringFlag{
			Name:    flags.LogFile,
			Usage:   "Save application log to this file for reporting issues.",
			EnvVars: []string{"OTACTL_LOGFILE"},
			Hidden:  shouldHide,
		},
		&cli.StringFlag{
			Name:    flags.LogDirectory,
			Usage:   "Save application log to this directory for reporting issues.",
			EnvVars: []string{"OTACTL_LOGDIRECTORY"},
			Hidden:  shouldHide,
		},
		&cli.BoolFlag{
			Name:    flags.NoColor,
			Usage:   "Disable colored console output.",
			EnvVars: []string{"NO_COLOR"},
			Hidden:  shouldHide,
		},
		&cli.BoolFlag{
			Name:    flags.Quiet,
			Aliases: []string{"q"},
			Usage:   "Do not write logs to the console.",
			EnvVars: []string{"OTACTL_QUIET"},
			Hidden:  shouldHide,
		},
		FlagLogOutput,
	}
}
