// Package archive pulls a single named entry out of a zip container.
package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

var ErrEntryNotFound = errors.New("entry not found in archive")

// FormatError reports a container that could not be read or lacks the
// requested entry.
type FormatError struct {
	Path  string
	Entry string
	Err   error
}

func (e *FormatError) Error() string {
	if errors.Is(e.Err, ErrEntryNotFound) {
		return fmt.Sprintf("%s not found in archive %s", e.Entry, e.Path)
	}
	return fmt.Sprintf("failed to extract %s from %s: %s", e.Entry, e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ExtractEntry scans the archive at path in stored order and returns the full
// contents of the first entry whose name equals name.
func ExtractEntry(path, name string) ([]byte, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, &FormatError{Path: path, Entry: name, Err: errors.Wrap(err, "cannot open archive")}
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		data, err := readEntry(file)
		if err != nil {
			return nil, &FormatError{Path: path, Entry: name, Err: err}
		}
		return data, nil
	}
	return nil, &FormatError{Path: path, Entry: name, Err: ErrEntryNotFound}
}

// Entries lists entry names in stored order.
func Entries(path string) ([]string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, &FormatError{Path: path, Err: errors.Wrap(err, "cannot open archive")}
	}
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	return names, nil
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open entry %s", file.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read entry %s", file.Name)
	}
	return data, nil
}
