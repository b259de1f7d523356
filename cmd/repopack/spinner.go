package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-isatty"

	"repopack/internal/logging"
)

// progressSpinner renders packager progress on one terminal line. On a
// non-terminal writer it stays quiet and only prints the final status.
type progressSpinner struct {
	w        io.Writer
	frames   []string
	interval time.Duration
	animate  bool

	mu      sync.Mutex
	message string
	frame   int
	stop    chan struct{}
	done    chan struct{}
}

func newSpinner(w io.Writer, message string) *progressSpinner {
	s := spinner.Dot
	return &progressSpinner{
		w:        w,
		frames:   s.Frames,
		interval: s.FPS,
		animate:  isTerminal(w),
		message:  message,
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start begins animating. It is a no-op on non-terminals.
func (s *progressSpinner) Start() {
	if !s.animate {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop()
}

func (s *progressSpinner) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.render()
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
	}
}

func (s *progressSpinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r\033[K%s %s", s.frames[s.frame%len(s.frames)], s.message)
	s.frame++
}

// Update replaces the status message. It matches packager.ProgressFunc.
func (s *progressSpinner) Update(message string) {
	logging.CLIDebug("progress: %s", message)
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Succeed stops the spinner and prints a success line.
func (s *progressSpinner) Succeed(message string) {
	s.finish(successStyle.Render("✔") + " " + message)
}

// Fail stops the spinner and prints a failure line.
func (s *progressSpinner) Fail(message string) {
	s.finish(errorStyle.Render("✖") + " " + message)
}

func (s *progressSpinner) finish(line string) {
	if s.stop != nil {
		close(s.stop)
		<-s.done
		s.stop = nil
		fmt.Fprint(s.w, "\r\033[K")
	}
	fmt.Fprintln(s.w, line)
}
