package ota

import "fmt"

type State int

const (
	CheckingSource State = iota
	ResolvingChannel
	DownloadingArtifact
	Complete
)

func (s State) String() string {
	switch s {
	case CheckingSource:
		return "checking source"
	case ResolvingChannel:
		return "resolving channel"
	case DownloadingArtifact:
		return "downloading artifact"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("unknown state %d", int(s))
	}
}

// Progress is one event of a download. Downloaded and Total are set while
// downloading; Path is set on completion.
type Progress struct {
	State      State
	Downloaded uint64
	Total      uint64
	Path       string
}

type ProgressFunc func(Progress)

// progressRecorder forwards events to the caller and keeps them so a failure
// can report how far the operation got.
type progressRecorder struct {
	events  []Progress
	forward ProgressFunc
}

func newProgressRecorder(forward ProgressFunc) *progressRecorder {
	return &progressRecorder{forward: forward}
}

func (r *progressRecorder) emit(p Progress) {
	r.events = append(r.events, p)
	if r.forward != nil {
		r.forward(p)
	}
}

func (r *progressRecorder) snapshot() []Progress {
	events := make([]Progress, len(r.events))
	copy(events, r.events)
	return events
}
