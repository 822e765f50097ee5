// Package linear provides a synchronous, line-oriented progress renderer.
package linear

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/pack/internal/ui/output"
	"go.trai.ch/pack/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer. It prints one line per finished span,
// indented by nesting depth, with its duration.
type Renderer struct {
	w      io.Writer
	output *termenv.Output

	mu    sync.Mutex
	spans map[string]*spanState
}

type spanState struct {
	name  string
	start time.Time
	depth int
}

// NewRenderer creates a Renderer writing to w. A nil w writes to stderr.
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stderr
	}

	return &Renderer{
		w:      w,
		output: output.NewWithProfile(w, output.ColorProfileANSI),
		spans:  make(map[string]*spanState),
	}
}

// OnSpanStart records the span so that its completion can be reported.
func (r *Renderer) OnSpanStart(spanID, parentID, name string, start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	depth := 0
	if parent, ok := r.spans[parentID]; ok {
		depth = parent.depth + 1
	}
	r.spans[spanID] = &spanState{name: name, start: start, depth: depth}
}

// OnSpanEnd prints the completion line of the span.
func (r *Renderer) OnSpanEnd(spanID string, end time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span, ok := r.spans[spanID]
	if !ok {
		return
	}
	delete(r.spans, spanID)

	indent := strings.Repeat("  ", span.depth)
	duration := r.output.String(formatDuration(end.Sub(span.start))).Faint().String()

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.w, "%s%s %s %s: %v\n", indent, symbol, span.name, duration, err)
		return
	}

	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.w, "%s%s %s %s\n", indent, symbol, span.name, duration)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.Round(time.Microsecond).String()
	}
	return d.Round(time.Millisecond).String()
}
