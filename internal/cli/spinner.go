package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/topfloor/pkg/errors"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// solveSpinner animates a status line while a floorplan solve runs. The
// line names the backend, the per-call timeout and the elapsed time.
type solveSpinner struct {
	w       io.Writer
	backend string
	timeout time.Duration
	start   time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	started bool

	mu    sync.Mutex
	width int // visible width of the last line written
}

// newSolveSpinner creates a spinner for a solve with the given backend. A
// zero timeout means the solver calls are unbounded. The spinner stops on
// its own when ctx is cancelled.
func newSolveSpinner(ctx context.Context, w io.Writer, backend string, timeout time.Duration) *solveSpinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &solveSpinner{
		w:       w,
		backend: backend,
		timeout: timeout,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// status is the plain text of the line after elapsed time.
func (s *solveSpinner) status(elapsed time.Duration) string {
	msg := "Solving with " + s.backend
	if s.timeout > 0 {
		msg += fmt.Sprintf(" (timeout %s per call)", s.timeout)
	}
	return fmt.Sprintf("%s... %s", msg, elapsed.Round(100*time.Millisecond))
}

// Start begins the animation.
func (s *solveSpinner) Start() {
	s.start = time.Now()
	s.started = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.render(spinnerFrames[i%len(spinnerFrames)], time.Since(s.start))
				i++
			}
		}
	}()
}

func (s *solveSpinner) render(frame string, elapsed time.Duration) {
	msg := s.status(elapsed)
	s.mu.Lock()
	defer s.mu.Unlock()
	pad := ""
	if n := len(msg) + 2; n < s.width {
		pad = strings.Repeat(" ", s.width-n)
	}
	fmt.Fprintf(s.w, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(msg), pad)
	s.width = len(msg) + 2
}

// Stop ends the animation and clears the line. It may be called more than
// once.
func (s *solveSpinner) Stop() {
	s.cancel()
	s.once.Do(func() { close(s.done) })
	if s.started {
		<-s.stopped
	}
	s.clearLine()
}

func (s *solveSpinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// StopWithOutcome stops the spinner and, for a failed solve, prints why.
// A successful solve prints nothing; the report follows.
func (s *solveSpinner) StopWithOutcome(err error) {
	cancelled := s.Cancelled()
	s.Stop()
	switch {
	case err == nil:
	case cancelled:
		printError("Solve cancelled")
	default:
		printError("%s", s.failure(err))
	}
}

// failure describes a failed solve.
func (s *solveSpinner) failure(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeGraphInconsistent:
		return "Constraint graph is inconsistent"
	case errors.ErrCodeTimeout:
		if s.timeout > 0 {
			return fmt.Sprintf("Solver timed out after %s", s.timeout)
		}
		return "Solver timed out"
	case errors.ErrCodeSolver:
		return "Solver failed"
	default:
		if errors.IsConfig(err) {
			return "Invalid input"
		}
		return "Solve failed"
	}
}

// Cancelled reports whether the parent context ended before Stop.
func (s *solveSpinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
	}
	return s.ctx.Err() != nil
}
