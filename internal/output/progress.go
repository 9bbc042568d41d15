package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY reports whether w is a terminal. Writers without an Fd method,
// such as *bytes.Buffer, are not.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar tracks a fixed number of steps, such as files being imported.
//
//	[==========>         ] 50% groceries.csv
//
// On a terminal the bar redraws in place; otherwise one line is written per
// completed step.
type ProgressBar struct {
	mu          sync.Mutex
	total       int
	current     int
	description string
	width       int
	writer      io.Writer
}

// NewProgress creates a progress bar writing to stderr.
func NewProgress(total int, description string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		description: description,
		width:       30,
		writer:      os.Stderr,
	}
}

// SetWriter sets the output writer.
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// SetDescription changes the label shown after the bar.
func (p *ProgressBar) SetDescription(description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.description = description
}

// Increment advances the bar by one step and redraws it.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = min(p.current+1, p.total)
	p.render(true)
}

// Finish fills the bar and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == p.total && !writerIsTTY(p.writer) {
		// The last Increment already wrote the final line.
		return
	}
	p.current = p.total
	p.render(false)
	fmt.Fprintln(p.writer)
}

// render draws the bar; must be called with mu held. step reports whether
// the call follows an Increment.
func (p *ProgressBar) render(step bool) {
	percent, filled := 100, p.width
	if p.total > 0 {
		percent = p.current * 100 / p.total
		filled = p.current * p.width / p.total
	}

	bar := strings.Repeat("=", max(filled-1, 0))
	if filled > 0 {
		bar += ">"
	}
	bar += strings.Repeat(" ", p.width-filled)

	line := fmt.Sprintf("[%s] %3d%% %s", bar, percent, p.description)
	switch {
	case writerIsTTY(p.writer):
		fmt.Fprintf(p.writer, "\r%s", line)
	case step:
		fmt.Fprintln(p.writer, line)
	default:
		fmt.Fprint(p.writer, line)
	}
}

// Spinner shows an animated indicator with elapsed seconds while a mining
// run is in progress. On a non-terminal writer it prints its message once.
type Spinner struct {
	mu      sync.Mutex
	message string
	running bool
	writer  io.Writer
	started time.Time
	done    chan struct{}
}

var spinnerFrames = []string{"|", "/", "-", "\\"}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		writer:  os.Stderr,
	}
}

// SetWriter sets the output writer.
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the animation. Starting a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.started = time.Now()
	s.done = make(chan struct{})

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	go s.animate(s.done)
}

func (s *Spinner) animate(done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame = (frame + 1) % len(spinnerFrames) {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.writer, "\r%s  %s (%ds)", spinnerFrames[frame], s.message,
				int(time.Since(s.started).Seconds()))
			s.mu.Unlock()
		}
	}
}

// UpdateMessage replaces the message while the spinner runs.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop halts the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.done)

	if writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+16))
	}
}

// StopWithMessage stops the spinner and prints a final line.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}
