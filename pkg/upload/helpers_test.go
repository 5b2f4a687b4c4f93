package upload

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/dropship/pkg/log"
	"github.com/bft-labs/dropship/pkg/profile"
)

// inline runs callbacks on the calling goroutine.
var inline = DispatcherFunc(func(fn func()) { fn() })

type progressRecorder struct {
	mu     sync.Mutex
	values []float64
}

func (r *progressRecorder) record(f float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, f)
}

func (r *progressRecorder) Values() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.values...)
}

func requireMonotonic(t *testing.T, values []float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		require.GreaterOrEqual(t, values[i], values[i-1], "progress went backwards at %d: %v", i, values)
	}
}

func mustProfile(t *testing.T, js string) *profile.Profile {
	t.Helper()
	p, err := profile.Parse([]byte(js))
	require.NoError(t, err)
	return p
}

// errorLogger records Error calls and ignores everything else.
type errorLogger struct {
	log.NoopLogger

	mu     sync.Mutex
	errors []error
}

func (l *errorLogger) Error(msg string, fields ...log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			l.errors = append(l.errors, err)
		}
	}
}

func (l *errorLogger) Errors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]error(nil), l.errors...)
}
