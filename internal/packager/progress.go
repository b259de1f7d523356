package packager

import (
	"sync"

	"repopack/internal/logging"
)

// progressSink serialises calls to a caller supplied ProgressFunc and keeps
// a panicking callback from taking the run down.
type progressSink struct {
	mu sync.Mutex
	fn ProgressFunc
}

func newProgressSink(fn ProgressFunc) *progressSink {
	return &progressSink{fn: fn}
}

func (p *progressSink) report(message string) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			logging.PackagerWarn("Progress callback panicked: %v", r)
		}
	}()
	p.fn(message)
}
