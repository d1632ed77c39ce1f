package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/yoanbernabeu/counttype/pipeline"
)

// progressBar redraws a single status line after every file boundary.
// It is driven synchronously by the pipeline hook, no tea program runs.
type progressBar struct {
	w     io.Writer
	model progress.Model
	drawn bool
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		w:     w,
		model: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressBar) update(b pipeline.Boundary) {
	if p == nil || b.Total == 0 {
		return
	}
	done := b.Index + 1
	fmt.Fprintf(p.w, "\r%s %d/%d files · %s types", p.model.ViewAs(float64(done)/float64(b.Total)), done, b.Total, formatInt(b.Types))
	p.drawn = true
}

func (p *progressBar) finish() {
	if p == nil || !p.drawn {
		return
	}
	fmt.Fprintln(p.w)
}
