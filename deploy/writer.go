package deploy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	dirPermission  = 0755
	filePermission = 0644
)

// DeploymentError is a local I/O failure while installing a payload.
type DeploymentError struct {
	Path string
	Op   string
	Err  error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("failed to %s %s: %s", e.Op, e.Path, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

type Writer struct {
	log *zerolog.Logger
}

func NewWriter(log *zerolog.Logger) *Writer {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Writer{log: log}
}

// Write replaces the file at target with data and returns its path. The bytes
// go to a temporary sibling first and are renamed over the target once synced,
// so an interrupted write never leaves a truncated payload behind.
func (w *Writer) Write(target Target, data []byte) (string, error) {
	dir := filepath.Dir(target.Path)
	if target.CreateParents {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return "", &DeploymentError{Path: dir, Op: "create directory", Err: err}
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target.Path)+".*")
	if err != nil {
		return "", &DeploymentError{Path: target.Path, Op: "create temporary file for", Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return "", &DeploymentError{Path: target.Path, Op: "write", Err: err}
	}
	if err := tmp.Chmod(filePermission); err != nil {
		cleanup()
		return "", &DeploymentError{Path: target.Path, Op: "set permissions on", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", &DeploymentError{Path: target.Path, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &DeploymentError{Path: target.Path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpPath, target.Path); err != nil {
		os.Remove(tmpPath)
		return "", &DeploymentError{Path: target.Path, Op: "install", Err: err}
	}

	w.log.Info().
		Str("environment", string(target.Environment)).
		Str("path", target.Path).
		Int("bytes", len(data)).
		Msg("Deployed payload")
	return target.Path, nil
}
