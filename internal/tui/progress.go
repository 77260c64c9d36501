package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

const (
	progressBarWidth = 40
	redrawInterval   = 100 * time.Millisecond
)

// ProgressBar draws a single self-overwriting download line:
// spinner, bar, bytes done / total and an ETA.
type ProgressBar struct {
	out    io.Writer
	total  uint64
	done   uint64
	bar    progress.Model
	frames []string
	frame  int
	start  time.Time
	now    func() time.Time
	redraw rate.Sometimes
}

// NewProgressBar returns a bar for a download of total bytes.
// A zero total draws an empty bar and no ETA.
func NewProgressBar(out io.Writer, total uint64) *ProgressBar {
	return &ProgressBar{
		out:   out,
		total: total,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(progressBarWidth),
			progress.WithoutPercentage(),
		),
		frames: spinner.Dot.Frames,
		start:  time.Now(),
		now:    time.Now,
		redraw: rate.Sometimes{Interval: redrawInterval},
	}
}

// Set records the running byte count. Redraws are throttled.
func (p *ProgressBar) Set(done uint64) {
	p.done = done
	p.redraw.Do(p.render)
}

// Finish draws the final state and moves past the progress line
func (p *ProgressBar) Finish() {
	p.render()
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, successStyle.Render("✅ Download complete!"))
}

// Abort draws the last state and ends the progress line without the
// completion message, so a following error starts on its own line.
func (p *ProgressBar) Abort() {
	p.render()
	fmt.Fprintln(p.out)
}

func (p *ProgressBar) render() {
	// \x1b[K clears what a longer previous line left behind
	fmt.Fprint(p.out, "\r"+p.line()+"\x1b[K")
}

func (p *ProgressBar) line() string {
	frame := p.frames[p.frame%len(p.frames)]
	p.frame++
	return fmt.Sprintf("%s%s %s / %s %s",
		selectedStyle.Render(frame),
		p.bar.ViewAs(p.ratio()),
		humanize.Bytes(p.done),
		humanize.Bytes(p.total),
		dimStyle.Render(p.eta()),
	)
}

func (p *ProgressBar) ratio() float64 {
	if p.total == 0 {
		return 0
	}
	r := float64(p.done) / float64(p.total)
	if r > 1 {
		r = 1
	}
	return r
}

func (p *ProgressBar) eta() string {
	if p.total == 0 {
		return ""
	}
	if p.done >= p.total {
		return "eta 0s"
	}
	elapsed := p.now().Sub(p.start)
	if p.done == 0 || elapsed <= 0 {
		return "eta --"
	}
	perSecond := float64(p.done) / elapsed.Seconds()
	remaining := time.Duration(float64(p.total-p.done) / perSecond * float64(time.Second))
	return "eta " + remaining.Round(time.Second).String()
}
