package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	idb "github.com/reglet-dev/reglet-idb"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/ports"
	"github.com/reglet-dev/reglet-idb/host"
	"github.com/reglet-dev/reglet-idb/internal/collection"
)

// ErrEmptyLine is returned when a blank line is printed.
var ErrEmptyLine = errors.New("screen text: empty line")

type textLine struct {
	text string
}

// TextBuffer publishes sim::IScreenText.default. Lines printed during a frame
// are written out by Render; their buffers are recycled for the next frame.
type TextBuffer struct {
	mu     sync.Mutex
	lines  *collection.Array[textLine]
	spares *collection.Array[textLine]
}

var (
	_ ScreenText    = (*TextBuffer)(nil)
	_ ports.Invoker = (*TextBuffer)(nil)
	_ host.Module   = (*TextBuffer)(nil)
	_ host.Stopper  = (*TextBuffer)(nil)
)

// NewTextBuffer creates an empty buffer.
func NewTextBuffer() *TextBuffer {
	return &TextBuffer{
		lines:  collection.NewQueue[textLine](),
		spares: collection.New[textLine](),
	}
}

// Name implements host.Module.
func (b *TextBuffer) Name() entities.ModuleID { return "screentext" }

// Setup publishes the buffer.
func (b *TextBuffer) Setup(scope *idb.Scope, _ idb.Config) error {
	scope.Publish(ScreenTextKey, "TextBuffer", b)
	return nil
}

// PrintLineTopLeft queues a line below the ones already printed this frame.
func (b *TextBuffer) PrintLineTopLeft(text string) error {
	if text == "" {
		return ErrEmptyLine
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.spares.Pop()
	if !ok {
		l = &textLine{}
	}
	l.text = text
	b.lines.Add(l)
	return nil
}

// Render writes the queued lines to w in print order and empties the queue.
func (b *TextBuffer) Render(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.lines.Len() > 0 {
		l, _ := b.lines.Pop()
		_, err := fmt.Fprintln(w, l.text)
		l.text = ""
		b.spares.Add(l)
		if err != nil {
			return fmt.Errorf("screen text: %w", err)
		}
	}
	return nil
}

// Pending returns the lines not rendered yet.
func (b *TextBuffer) Pending() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, b.lines.Len())
	for _, l := range b.lines.All() {
		out = append(out, l.text)
	}
	return out
}

type printRequest struct {
	Text string `json:"text"`
}

// Invoke prints the "text" field of a JSON payload.
func (b *TextBuffer) Invoke(_ context.Context, payload []byte) ([]byte, error) {
	var req printRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("screen text: invalid request: %w", err)
	}
	return nil, b.PrintLineTopLeft(req.Text)
}

// Stop drops queued and spare lines.
func (b *TextBuffer) Stop(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines.Reset()
	b.spares.Reset()
	return nil
}
