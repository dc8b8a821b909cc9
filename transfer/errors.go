package transfer

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrRangeNotHonored means the server sent more bytes than requested,
	// usually because it ignored the Range header.
	ErrRangeNotHonored = errors.New("server returned more bytes than the requested range")

	errEmptyChunk = errors.New("server returned an empty chunk")
)

// ChunkError is returned when a range could not be fetched within the
// allowed attempts. Err is the error of the last attempt.
type ChunkError struct {
	Start    uint64
	End      uint64
	Attempts int
	Err      error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("failed to download chunk %d-%d after %d attempts: %s", e.Start, e.End, e.Attempts, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// StagingError is a local I/O failure on the staged file.
type StagingError struct {
	Path string
	Op   string
	Err  error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("failed to %s staged file %s: %s", e.Op, e.Path, e.Err)
}

func (e *StagingError) Unwrap() error {
	return e.Err
}
