package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"cdrip/internal/album"
	"cdrip/internal/ripping"
)

// progressObserver reports track progress as a bar on terminals and as one
// line per track otherwise.
type progressObserver struct {
	w   io.Writer
	bar *progressbar.ProgressBar
	tty bool
}

var _ ripping.Observer = (*progressObserver)(nil)

func newProgressObserver(w io.Writer) *progressObserver {
	return &progressObserver{w: w, tty: isTerminal(w)}
}

func (p *progressObserver) TrackStarted(index, total int, track album.Track) {
	if !p.tty {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	p.bar.Describe(fmt.Sprintf("%2d. %s", track.Number, track.Title))
}

func (p *progressObserver) TrackFinished(index, total int, result ripping.TrackResult) {
	if !p.tty {
		fmt.Fprintf(p.w, "[%d/%d] %s: %s\n", index+1, total, result.Title, outcomeLabel(result.Outcome))
		return
	}
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
	if index+1 == total {
		_ = p.bar.Finish()
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// stop tears down an unfinished bar after an aborted rip.
func (p *progressObserver) stop() {
	if p.bar != nil && !p.bar.IsFinished() {
		_ = p.bar.Exit()
		fmt.Fprintln(p.w)
	}
}
