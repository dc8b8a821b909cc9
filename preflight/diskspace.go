// Package preflight verifies local resources before a download starts.
package preflight

import (
	"fmt"

	"github.com/rs/zerolog"
)

const (
	// DefaultRequiredMB is the free space needed to stage and extract an artifact.
	DefaultRequiredMB = 100

	mebibyte = 1024 * 1024
)

// StatFunc reports the bytes available to an unprivileged user on the
// filesystem holding path.
type StatFunc func(path string) (uint64, error)

// InsufficientSpaceError is returned when the filesystem has less free space
// than required.
type InsufficientSpaceError struct {
	Path        string
	AvailableMB uint64
	RequiredMB  uint64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space in %s: need %dMB, have %dMB", e.Path, e.RequiredMB, e.AvailableMB)
}

// StatError means the free space of Path could not be determined, usually
// because the directory does not exist.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("cannot determine free space in %s: %s", e.Path, e.Err)
}

func (e *StatError) Unwrap() error {
	return e.Err
}

type Checker struct {
	RequiredMB uint64
	Stat       StatFunc
	Log        *zerolog.Logger
}

// NewChecker returns a Checker using the platform statfs and the default threshold.
func NewChecker(log *zerolog.Logger) *Checker {
	return &Checker{
		RequiredMB: DefaultRequiredMB,
		Stat:       availableBytes,
		Log:        log,
	}
}

// Check fails with *InsufficientSpaceError when path has less than RequiredMB
// free, and with *StatError when the filesystem cannot be queried.
func (c *Checker) Check(path string) error {
	stat := c.Stat
	if stat == nil {
		stat = availableBytes
	}
	required := c.RequiredMB
	if required == 0 {
		required = DefaultRequiredMB
	}

	available, err := stat(path)
	if err != nil {
		return &StatError{Path: path, Err: err}
	}
	availableMB := available / mebibyte
	if c.Log != nil {
		c.Log.Debug().Str("path", path).Uint64("availableMB", availableMB).Msg("Checking disk space")
	}

	if availableMB < required {
		if c.Log != nil {
			c.Log.Error().Str("path", path).Uint64("availableMB", availableMB).Uint64("requiredMB", required).Msg("Insufficient disk space")
		}
		return &InsufficientSpaceError{Path: path, AvailableMB: availableMB, RequiredMB: required}
	}
	return nil
}
