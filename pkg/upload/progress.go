package upload

import (
	"bytes"
	"io"
	"sync"
)

// ProgressFunc receives the fraction of the request body sent, in [0, 1].
type ProgressFunc func(fraction float64)

// minProgressStep keeps progress callbacks to a few hundred per upload.
const minProgressStep = 0.005

// progressMeter forwards strictly increasing fractions to fn.
type progressMeter struct {
	mu   sync.Mutex
	last float64
	fn   ProgressFunc
}

func newProgressMeter(fn ProgressFunc) *progressMeter {
	return &progressMeter{last: -1, fn: fn}
}

func (m *progressMeter) update(fraction float64) {
	if fraction > 1 {
		fraction = 1
	}
	// fn runs under the lock so the body reader and the final update
	// cannot deliver out of order.
	m.mu.Lock()
	defer m.mu.Unlock()
	if fraction <= m.last || (fraction < 1 && m.last >= 0 && fraction-m.last < minProgressStep) {
		return
	}
	m.last = fraction
	if m.fn != nil {
		m.fn(fraction)
	}
}

// progressReader reports how much of body the transport has consumed.
type progressReader struct {
	r     *bytes.Reader
	total int64
	meter *progressMeter
}

func newProgressReader(body []byte, meter *progressMeter) *progressReader {
	return &progressReader{r: bytes.NewReader(body), total: int64(len(body)), meter: meter}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 || err == io.EOF {
		p.meter.update(p.fraction())
	}
	return n, err
}

func (p *progressReader) fraction() float64 {
	if p.total == 0 {
		return 1
	}
	sent := p.total - int64(p.r.Len())
	return float64(sent) / float64(p.total)
}
