package cliutil

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestWithErrorHandler(t *testing.T) {
	action := WithErrorHandler(func(c *cli.Context) error {
		return errors.New("boom")
	})
	err := action(nil)
	var exitCoder cli.ExitCoder
	require.True(t, errors.As(err, &exitCoder))
	assert.Equal(t, 1, exitCoder.ExitCode())
	assert.Equal(t, "boom", err.Error())

	action = WithErrorHandler(func(c *cli.Context) error {
		return UsageErrorf("missing pull request number")
	})
	err = action(nil)
	require.True(t, errors.As(err, &exitCoder))
	assert.Equal(t, 2, exitCoder.ExitCode())

	assert.NoError(t, WithErrorHandler(func(c *cli.Context) error { return nil })(nil))
}

func TestIsIgnoredError(t *testing.T) {
	assert.True(t, IsIgnoredError(errors.New("read tcp 10.0.0.1:443: connection reset by peer")))
	assert.False(t, IsIgnoredError(errors.New("insufficient disk space")))
}

func TestErrorReporterDisabled(t *testing.T) {
	reporter, err := NewErrorReporter("", "dev")
	require.NoError(t, err)
	assert.False(t, reporter.Capture(errors.New("boom"), nil))
	reporter.Flush()

	var nilReporter *ErrorReporter
	assert.False(t, nilReporter.Capture(errors.New("boom"), nil))
}

func TestBuildInfo(t *testing.T) {
	info := GetBuildInfo("nightly", "1.2.3", "2026-10-16")
	assert.Equal(t, "otactl/1.2.3", info.UserAgent())
	assert.Equal(t, " with nightly", info.GetBuildTypeMsg())
	assert.Contains(t, info.String(), "otactl 1.2.3 (built 2026-10-16 with nightly)")
}
