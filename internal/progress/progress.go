// Package progress renders terminal progress for a generation run: an
// animated step spinner for the pipeline stages and a bar for per-item
// batches. In CI environments both fall back to plain line output.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StepIndicator shows the currently running pipeline stage with a spinner.
type StepIndicator struct {
	writer    io.Writer
	startTime time.Time

	mu         sync.Mutex
	step       string
	spinnerIdx int

	animate  bool
	isCI     bool
	stopChan chan struct{}
	stopOnce sync.Once
}

// Config holds configuration for progress output.
type Config struct {
	Writer  io.Writer
	Animate bool
	IsCI    bool
}

// NewStepIndicator creates a step indicator. Animation is disabled when a
// CI environment is detected.
func NewStepIndicator(cfg Config) *StepIndicator {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if !cfg.IsCI {
		cfg.IsCI = os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
	}

	return &StepIndicator{
		writer:    cfg.Writer,
		startTime: time.Now(),
		animate:   cfg.Animate && !cfg.IsCI,
		isCI:      cfg.IsCI,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (p *StepIndicator) Start() {
	if p.animate {
		go p.spinnerLoop()
	}
}

// Stop halts the animation and clears the spinner line.
func (p *StepIndicator) Stop() {
	p.stopOnce.Do(func() {
		if p.animate {
			close(p.stopChan)
			fmt.Fprintf(p.writer, "\r%s\r", strings.Repeat(" ", 80))
		}
	})
}

// Step announces a new pipeline stage.
func (p *StepIndicator) Step(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.step = name
	if !p.animate {
		fmt.Fprintf(p.writer, "▶ %s\n", name)
	}
}

// StepDone marks the current stage as finished.
func (p *StepIndicator) StepDone(detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.animate {
		fmt.Fprintf(p.writer, "\r%s\r", strings.Repeat(" ", 80))
	}
	if detail != "" {
		fmt.Fprintf(p.writer, "✓ %s (%s)\n", p.step, detail)
	} else {
		fmt.Fprintf(p.writer, "✓ %s\n", p.step)
	}
	p.step = ""
}

// StepFailed marks the current stage as failed.
func (p *StepIndicator) StepFailed(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.animate {
		fmt.Fprintf(p.writer, "\r%s\r", strings.Repeat(" ", 80))
	}
	fmt.Fprintf(p.writer, "✗ %s - %v\n", p.step, err)
	p.step = ""
}

func (p *StepIndicator) spinnerLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.step != "" {
				fmt.Fprintf(p.writer, "\r%s %s | %s",
					spinnerFrames[p.spinnerIdx],
					p.step,
					formatDuration(time.Since(p.startTime)))
			}
			p.spinnerIdx = (p.spinnerIdx + 1) % len(spinnerFrames)
			p.mu.Unlock()
		}
	}
}

// BarIndicator draws a simple bar across a batch of item creations.
type BarIndicator struct {
	writer    io.Writer
	total     int
	completed int
	failed    int
	startTime time.Time
	mu        sync.Mutex
}

// NewBarIndicator creates a bar sized for total items.
func NewBarIndicator(w io.Writer, total int) *BarIndicator {
	if w == nil {
		w = os.Stdout
	}
	return &BarIndicator{
		writer:    w,
		total:     total,
		startTime: time.Now(),
	}
}

// Increment records one finished item and redraws the bar.
func (b *BarIndicator) Increment(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.completed++
	} else {
		b.failed++
	}
	b.render()
}

func (b *BarIndicator) render() {
	if b.total == 0 {
		return
	}

	progress := float64(b.completed+b.failed) / float64(b.total)
	barWidth := 40
	filled := int(float64(barWidth) * progress)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(b.writer, "\r[%s] %.0f%% | %d/%d | ✓ %d | ✗ %d | %s",
		bar,
		progress*100,
		b.completed+b.failed,
		b.total,
		b.completed,
		b.failed,
		formatDuration(time.Since(b.startTime)),
	)
}

// Finish terminates the bar line.
func (b *BarIndicator) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	fmt.Fprintln(b.writer)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
