package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/pipeline"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
)

// Spinner provides a progress indicator with context cancellation support.
// The message can be updated while it spins.
type Spinner struct {
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string

	mu      sync.Mutex
	message string
	width   int
	once    sync.Once
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that stops when ctx is canceled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       os.Stderr,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
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
				line := fmt.Sprintf("\r%s %s", styleIconSpinner.Render(s.frames[i%len(s.frames)]), StyleDim.Render(s.message))
				s.width = max(s.width, len(s.message)+4)
				fmt.Fprint(s.w, line)
				s.mu.Unlock()
			}
		}
	}()
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

// Progress returns a pipeline progress callback that reports the stage and
// item counts through the spinner.
func (s *Spinner) Progress() pipeline.ProgressFunc {
	return func(stage snapshot.Stage, done, total int) {
		s.SetMessage(fmt.Sprintf("%s %d/%d", stageVerb(stage), done, total))
	}
}

// Stop stops the spinner and clears the line. It may be called repeatedly.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
	})
	select {
	case <-s.stopped:
	case <-time.After(time.Second):
	}
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the parent context was canceled.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
		return s.ctx.Err() != nil
	}
}

func stageVerb(stage snapshot.Stage) string {
	switch stage {
	case snapshot.StagePartition:
		return "Partitioning"
	case snapshot.StageClassify:
		return "Classifying"
	case snapshot.StageMerge:
		return "Merging"
	case snapshot.StageLayout:
		return "Laying out"
	default:
		return string(stage)
	}
}
