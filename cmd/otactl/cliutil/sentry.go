package cliutil

import (
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

const sentryFlushTimeout = 2 * time.Second

// Mostly network errors that we don't want reported back to Sentry, this is done by substring match.
var ignoredErrors = []string{
	"connection reset by peer",
	"An existing connection was forcibly closed by the remote host.",
	"use of closed network connection",
	"context canceled",
	"i/o timeout",
	"no such host",
}

// ErrorReporter sends unexpected failures to Sentry. The zero value reports nothing.
type ErrorReporter struct {
	enabled bool
}

func NewErrorReporter(dsn, release string) (*ErrorReporter, error) {
	if dsn == "" {
		return &ErrorReporter{}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to initialize error reporting")
	}
	return &ErrorReporter{enabled: true}, nil
}

// Capture reports err unless it is expected network noise. It returns whether
// the error was sent.
func (r *ErrorReporter) Capture(err error, tags map[string]string) bool {
	if r == nil || !r.enabled || err == nil || IsIgnoredError(err) {
		return false
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
	return true
}

func (r *ErrorReporter) Flush() {
	if r == nil || !r.enabled {
		return
	}
	sentry.Flush(sentryFlushTimeout)
}

// In order to keep the amount of noise sent to Sentry low, typical network errors can be filtered out here by a substring match.
func IsIgnoredError(err error) bool {
	errorMessage := err.Error()
	for _, ignoredErrorMessage := range ignoredErrors {
		if strings.Contains(errorMessage, ignoredErrorMessage) {
			return true
		}
	}
	return false
}
