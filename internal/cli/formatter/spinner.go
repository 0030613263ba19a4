package formatter

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

const spinnerInterval = 100 * time.Millisecond

var waveFrames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

// Spinner redraws one status line on w until stopped. It is meant for
// stderr while an agent loop runs.
type Spinner struct {
	w     io.Writer
	label string

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label}
}

// Start is a no-op if the spinner is already running.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan struct{})
	go s.run(ctx, s.stopped)
}

func (s *Spinner) run(ctx context.Context, stopped chan<- struct{}) {
	defer close(stopped)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-tick.C:
			frame := StyleLagoon.Render(waveFrames[n%len(waveFrames)])
			fmt.Fprintf(s.w, "\r  %s %s", frame, Dim(s.label))
		}
	}
}

// Stop clears the line and waits for the redraw goroutine to exit. Calling
// it on a stopped or never-started spinner does nothing.
func (s *Spinner) Stop() {
	s.mu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

// StartSpinner starts a spinner and hands back its Stop.
func StartSpinner(w io.Writer, label string) func() {
	s := NewSpinner(w, label)
	s.Start()
	return s.Stop
}
