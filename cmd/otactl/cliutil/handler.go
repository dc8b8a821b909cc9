package cliutil

import (
	"github.com/urfave/cli/v2"
)

// UsageError is an invalid invocation; it exits with status 2.
type UsageError string

func (ue UsageError) Error() string {
	return string(ue)
}

func (ue UsageError) ExitCode() int {
	return 2
}

func UsageErrorf(message string) error {
	return UsageError(message)
}

func Action(actionFunc cli.ActionFunc) cli.ActionFunc {
	return WithErrorHandler(actionFunc)
}

// Ensures exit with error code if actionFunc returns an error
func WithErrorHandler(actionFunc cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		err := actionFunc(ctx)
		if err != nil {
			if _, ok := err.(cli.ExitCoder); ok {
				// the app prints the message and exits with its code
				return err
			}
			err = cli.Exit(err.Error(), 1)
		}
		return err
	}
}
