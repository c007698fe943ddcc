package accumulator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/internal/types"
	"github.com/xhad/guidegen/pkg/llm"
	"github.com/xhad/guidegen/pkg/processor"
)

// Grouping decides how often display events are emitted.
type Grouping int

const (
	GroupNone      Grouping = iota // one event per fragment
	GroupSentence                  // flush at sentence ends and newlines
	GroupParagraph                 // flush at blank lines
)

// ParseGrouping maps the configuration names none, sentence and paragraph.
func ParseGrouping(name string) (Grouping, error) {
	switch name {
	case "none":
		return GroupNone, nil
	case "sentence", "":
		return GroupSentence, nil
	case "paragraph":
		return GroupParagraph, nil
	}
	return GroupNone, fmt.Errorf("unknown grouping %q", name)
}

// ErrComplete is returned when text is added after the response finished.
var ErrComplete = errors.New("accumulator: content already complete")

type Options struct {
	Grouping Grouping
	// MaxPending forces a display event once this many bytes are waiting
	// for a boundary. Defaults to 256.
	MaxPending int
}

// Accumulator collects streamed fragments into the complete response while
// producing display events along the way. It is not safe for concurrent use.
type Accumulator struct {
	opts     Options
	text     strings.Builder
	pending  strings.Builder
	complete bool
}

func New(opts Options) *Accumulator {
	if opts.MaxPending <= 0 {
		opts.MaxPending = 256
	}
	return &Accumulator{opts: opts}
}

// Add appends fragment and returns the display events it releases. The
// events of all calls, followed by Flush, concatenate to exactly the text
// added.
func (a *Accumulator) Add(fragment string) ([]string, error) {
	if a.complete {
		return nil, ErrComplete
	}
	if fragment == "" {
		return nil, nil
	}
	a.text.WriteString(fragment)

	if a.opts.Grouping == GroupNone {
		return []string{fragment}, nil
	}

	a.pending.WriteString(fragment)
	p := a.pending.String()

	cut := a.boundary(p)
	if cut < 0 && len(p) >= a.opts.MaxPending {
		cut = len(p)
	}
	if cut <= 0 {
		return nil, nil
	}

	a.pending.Reset()
	a.pending.WriteString(p[cut:])
	return []string{p[:cut]}, nil
}

func (a *Accumulator) boundary(p string) int {
	if a.opts.Grouping == GroupParagraph {
		return processor.ParagraphBoundary(p)
	}
	return processor.SentenceBoundary(p)
}

// Flush returns display text still waiting for a boundary.
func (a *Accumulator) Flush() string {
	rest := a.pending.String()
	a.pending.Reset()
	return rest
}

func (a *Accumulator) Text() string { return a.text.String() }

func (a *Accumulator) Len() int { return a.text.Len() }

// Content returns the text accumulated so far.
func (a *Accumulator) Content() models.GeneratedContent {
	return models.GeneratedContent{Text: a.text.String(), IsComplete: a.complete}
}

// Finish marks the content complete and returns it.
func (a *Accumulator) Finish() models.GeneratedContent {
	a.complete = true
	return a.Content()
}

// StreamError reports a stream that ended before its completion signal.
// Partial holds everything received up to the failure.
type StreamError struct {
	Partial models.GeneratedContent
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream interrupted after %d bytes: %v", len(e.Partial.Text), e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// Drain reads chunks until the channel closes, sending display events to
// sink (which may be nil). A normal close returns the complete content; an
// error chunk or a cancelled ctx returns a *StreamError.
func (a *Accumulator) Drain(ctx context.Context, chunks <-chan llm.Chunk, sink types.Sink) (models.GeneratedContent, error) {
	for {
		select {
		case <-ctx.Done():
			return a.interrupted(sink, ctx.Err())
		case c, ok := <-chunks:
			if !ok {
				// producers give up on their error chunk once ctx is done
				if err := ctx.Err(); err != nil {
					return a.interrupted(sink, err)
				}
				if err := a.show(sink, a.Flush()); err != nil {
					return a.Content(), err
				}
				return a.Finish(), nil
			}
			if c.Err != nil {
				return a.interrupted(sink, c.Err)
			}

			events, err := a.Add(c.Text)
			if err != nil {
				return a.Content(), err
			}
			for _, ev := range events {
				if err := a.show(sink, ev); err != nil {
					return a.Content(), err
				}
			}
		}
	}
}

func (a *Accumulator) interrupted(sink types.Sink, cause error) (models.GeneratedContent, error) {
	_ = a.show(sink, a.Flush())
	partial := a.Content()
	return partial, &StreamError{Partial: partial, Err: cause}
}

func (a *Accumulator) show(sink types.Sink, text string) error {
	if sink == nil || text == "" {
		return nil
	}
	if err := sink.Write(text); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
