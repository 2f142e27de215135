package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	spinnerInterval = 80 * time.Millisecond

	// Elapsed time is appended to the status line after this long.
	spinnerShowElapsed = time.Second
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on stderr while a layout or render runs.
// It stops on its own when the context is cancelled.
type Spinner struct {
	out    io.Writer
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
	start  time.Time

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	message string
	width   int // visible width of the last line written
}

// newSpinner creates a spinner whose message is built from format and args.
func newSpinner(ctx context.Context, format string, args ...any) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:     os.Stderr,
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		message: fmt.Sprintf(format, args...),
	}
}

// SetMessage replaces the status text, e.g. when a render moves on to the
// next format.
func (s *Spinner) SetMessage(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = fmt.Sprintf(format, args...)
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.mu.Lock()
				line := s.line(i, time.Since(s.start))
				fmt.Fprint(s.out, "\r"+line)
				s.width = lipgloss.Width(line)
				s.mu.Unlock()
			}
		}
	}()
}

// line renders frame i of the status line.
func (s *Spinner) line(i int, elapsed time.Duration) string {
	frame := spinnerFrames[i%len(spinnerFrames)]
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	if elapsed >= spinnerShowElapsed {
		line += " " + StyleDim.Render(formatElapsed(elapsed))
	}
	return line
}

// Stop ends the animation, clears the line and returns how long the
// spinner ran. Calling Stop more than once is safe.
func (s *Spinner) Stop() time.Duration {
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.done)
	})
	<-s.stopped
	s.clearLine()
	return time.Since(s.start)
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the context the spinner was created with was
// cancelled. A plain Stop does not count.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// formatElapsed rounds to milliseconds below a second and to tenths of a
// second above.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
