package term

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner renders an animated progress indicator on a terminal. When the
// writer is not a terminal (pipes, tests) each message is printed once as a
// plain line instead.
type Spinner struct {
	out     io.Writer
	animate bool

	mu   sync.Mutex
	msg  string
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a spinner writing to out. Animation is enabled only
// when out is a terminal.
func NewSpinner(out io.Writer) *Spinner {
	animate := false
	if f, ok := out.(*os.File); ok {
		animate = term.IsTerminal(int(f.Fd()))
	}

	return &Spinner{out: out, animate: animate}
}

// Start begins spinning with the given message. Calling Start on a running
// spinner just updates the message.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msg = msg
	if !s.animate {
		fmt.Fprintln(s.out, msg)
		return
	}
	if s.done != nil {
		return
	}

	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.spin(s.done)
}

// Update replaces the spinner message.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msg = msg
	if !s.animate {
		fmt.Fprintln(s.out, msg)
	}
}

// Stop halts the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.done == nil {
		s.mu.Unlock()
		return
	}
	close(s.done)
	s.done = nil
	s.mu.Unlock()

	s.wg.Wait()
	fmt.Fprint(s.out, "\r\033[K")
}

func (s *Spinner) spin(done chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()

			fmt.Fprintf(s.out, "\r\033[K%s %s", spinnerFrames[frame%len(spinnerFrames)], msg)
			frame++
		}
	}
}
