// Package download fetches a resolved asset's bytes with retry,
// optionally rendering a progress bar when stdout is an interactive
// terminal.
package download

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// IsTerminalFunc reports whether fd is an interactive terminal. Overridable for testing.
var IsTerminalFunc = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TerminalWidthFunc returns the current terminal width, or ok=false when
// it cannot be determined. Overridable for testing.
var TerminalWidthFunc = func(fd int) (int, bool) {
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 0, false
	}
	return w, true
}

// ShouldShowProgress reports whether a progress bar should be rendered:
// stdout must be an interactive terminal and the caller must not have
// requested quiet output.
func ShouldShowProgress(quiet bool) bool {
	if quiet {
		return false
	}
	return IsTerminalFunc(os.Stdout.Fd())
}

// ProgressWriter wraps an io.Writer, rendering a width-aware progress
// bar to output as bytes flow through Write.
type ProgressWriter struct {
	writer    io.Writer
	output    io.Writer
	total     int64
	written   int64
	startTime time.Time
	lastPrint time.Time
	mu        sync.Mutex
}

// NewProgressWriter wraps w, rendering progress against total (which may
// be <= 0 when the content length is unknown) to output.
func NewProgressWriter(w io.Writer, total int64, output io.Writer) *ProgressWriter {
	return &ProgressWriter{writer: w, output: output, total: total, startTime: time.Now()}
}

func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	if n > 0 {
		pw.mu.Lock()
		pw.written += int64(n)
		pw.printProgress()
		pw.mu.Unlock()
	}
	return n, err
}

// Finish clears the progress line.
func (pw *ProgressWriter) Finish() {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	width := barLineWidth()
	fmt.Fprintf(pw.output, "\r%s\r", strings.Repeat(" ", width))
}

func barLineWidth() int {
	if w, ok := TerminalWidthFunc(int(os.Stdout.Fd())); ok {
		return w
	}
	return 80
}

func (pw *ProgressWriter) printProgress() {
	now := time.Now()
	if now.Sub(pw.lastPrint) < 100*time.Millisecond {
		return
	}
	pw.lastPrint = now

	elapsed := now.Sub(pw.startTime).Seconds()
	if elapsed < 0.1 {
		return
	}

	speed := float64(pw.written) / elapsed
	lineWidth := barLineWidth()
	barWidth := lineWidth - 50
	if barWidth < 10 {
		barWidth = 10
	}

	var line string
	if pw.total > 0 {
		percent := float64(pw.written) / float64(pw.total) * 100
		if percent > 100 {
			percent = 100
		}

		var etaStr string
		if speed > 0 {
			remaining := float64(pw.total-pw.written) / speed
			if remaining < 0 {
				remaining = 0
			}
			etaStr = formatDuration(remaining)
		} else {
			etaStr = "--:--"
		}

		filled := int(percent / 100 * float64(barWidth))
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat("=", filled)
		if filled < barWidth {
			bar += ">"
			bar += strings.Repeat(" ", barWidth-filled-1)
		}

		line = fmt.Sprintf("\r   [%s] %3.0f%% (%s/%s) %s/s ETA: %s",
			bar, percent, formatBytes(pw.written), formatBytes(pw.total), formatBytes(int64(speed)), etaStr)
	} else {
		line = fmt.Sprintf("\r   Downloaded: %s (%s/s)", formatBytes(pw.written), formatBytes(int64(speed)))
	}

	if len(line) < lineWidth {
		line += strings.Repeat(" ", lineWidth-len(line))
	}
	fmt.Fprint(pw.output, line)
}

func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case b >= GB:
		return fmt.Sprintf("%.1fGB", float64(b)/GB)
	case b >= MB:
		return fmt.Sprintf("%.1fMB", float64(b)/MB)
	case b >= KB:
		return fmt.Sprintf("%.1fKB", float64(b)/KB)
	default:
		return fmt.Sprintf("%dB", b)
	}
}

func formatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
