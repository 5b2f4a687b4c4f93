package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/docker/go-units"

	"github.com/bft-labs/dropship/pkg/dropship"
)

// progressPrinter renders upload progress as a single rewritten line.
type progressPrinter struct {
	w     io.Writer
	quiet bool

	mu   sync.Mutex
	last int
}

func newProgressPrinter(w io.Writer, quiet bool) *progressPrinter {
	return &progressPrinter{w: w, quiet: quiet, last: -1}
}

func (p *progressPrinter) start(e dropship.StartEvent) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.endLine()
	server := e.Profile
	if server == "" {
		server = "server"
	}
	fmt.Fprintf(p.w, "uploading %s (%s) to %s\n", e.Filename, units.HumanSize(float64(e.Size)), server)
}

func (p *progressPrinter) update(e dropship.ProgressEvent) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	pct := int(e.Fraction * 100)
	if pct == p.last {
		return
	}
	p.last = pct
	fmt.Fprintf(p.w, "\r%s %3d%%", e.Filename, pct)
	if pct == 100 {
		p.endLine()
	}
}

// finish terminates a partially drawn progress line.
func (p *progressPrinter) finish() {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endLine()
}

func (p *progressPrinter) endLine() {
	if p.last >= 0 {
		fmt.Fprintln(p.w)
	}
	p.last = -1
}
