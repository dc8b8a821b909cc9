package updater

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/ereader-ota/otactl/metrics"
	"github.com/ereader-ota/otactl/ota"
)

// progressPrinter renders ota.Progress events. On a terminal the download
// line is redrawn in place; otherwise one line is printed per 10%.
type progressPrinter struct {
	out         io.Writer
	interactive bool
	status      *metrics.StatusTracker

	state       ota.State
	started     bool
	lastPercent int
	inLine      bool
}

func newProgressPrinter(out *os.File, status *metrics.StatusTracker) *progressPrinter {
	return &progressPrinter{
		out:         out,
		interactive: term.IsTerminal(int(out.Fd())),
		status:      status,
	}
}

func (p *progressPrinter) Update(progress ota.Progress) {
	if p.status != nil {
		p.status.Update(progress.State.String(), progress.Downloaded, progress.Total, progress.Path)
	}
	stateChanged := !p.started || progress.State != p.state
	p.started = true
	p.state = progress.State

	switch progress.State {
	case ota.CheckingSource:
		p.line("Checking source...")
	case ota.ResolvingChannel:
		p.line("Finding latest build...")
	case ota.DownloadingArtifact:
		p.downloading(progress, stateChanged)
	case ota.Complete:
		p.line(fmt.Sprintf("Downloaded %s", humanize.Bytes(progress.Total)))
	}
}

func (p *progressPrinter) downloading(progress ota.Progress, stateChanged bool) {
	percent := 100
	if progress.Total > 0 {
		percent = int(progress.Downloaded * 100 / progress.Total)
	}
	text := fmt.Sprintf("Downloading %s / %s (%d%%)", humanize.Bytes(progress.Downloaded), humanize.Bytes(progress.Total), percent)
	if p.interactive {
		fmt.Fprintf(p.out, "\r%s", text)
		p.inLine = true
		return
	}
	if stateChanged || percent/10 > p.lastPercent/10 {
		p.line(text)
	}
	p.lastPercent = percent
}

func (p *progressPrinter) line(text string) {
	if p.inLine {
		fmt.Fprintln(p.out)
		p.inLine = false
	}
	fmt.Fprintln(p.out, text)
}

// finish terminates a pending in-place line.
func (p *progressPrinter) finish() {
	if p.inLine {
		fmt.Fprintln(p.out)
		p.inLine = false
	}
}
