package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/xhad/guidegen/internal/types"
	"golang.org/x/time/rate"
	"pkt.systems/mdf"
)

const (
	ModePlain    = "plain"
	ModeMarkdown = "markdown"
	ModeNone     = "none"

	ThemeBoring = "boring"
)

type DisplayConfig struct {
	// Context ends pacing waits when it is cancelled. Nil means
	// context.Background.
	Context context.Context
	Mode    string
	Writer  io.Writer
	// Delay is the pause between displayed groups, mimicking typing.
	Delay time.Duration
	Width int
	Theme string
	OSC8  bool
}

// New returns the display for config.Mode. Mode none returns a nil Sink.
func New(config DisplayConfig) (types.Sink, error) {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	switch config.Mode {
	case ModePlain, "":
		return NewPlain(config.Context, config.Writer, config.Delay), nil
	case ModeMarkdown:
		return NewMarkdown(config)
	case ModeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported display mode %q", config.Mode)
	}
}

// pacer spaces writes at least delay apart. A zero delay never waits.
type pacer struct {
	ctx     context.Context
	limiter *rate.Limiter
}

func newPacer(ctx context.Context, delay time.Duration) pacer {
	if ctx == nil {
		ctx = context.Background()
	}
	if delay <= 0 {
		return pacer{ctx: ctx}
	}
	return pacer{ctx: ctx, limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

func (p pacer) wait() error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(p.ctx)
}

// Plain writes text unchanged.
type Plain struct {
	w     io.Writer
	pace  pacer
	wrote bool
	last  byte
}

// NewPlain returns a display that stops waiting between writes once ctx
// is cancelled.
func NewPlain(ctx context.Context, w io.Writer, delay time.Duration) *Plain {
	return &Plain{w: w, pace: newPacer(ctx, delay)}
}

func (p *Plain) Write(text string) error {
	if text == "" {
		return nil
	}
	if err := p.pace.wait(); err != nil {
		return err
	}
	if _, err := io.WriteString(p.w, text); err != nil {
		return err
	}
	p.wrote = true
	p.last = text[len(text)-1]
	return nil
}

// Close ends the output on a fresh line.
func (p *Plain) Close() error {
	if p.wrote && p.last != '\n' {
		_, err := io.WriteString(p.w, "\n")
		return err
	}
	return nil
}

// Markdown pipes text into an mdf renderer running in its own goroutine, so
// headings and emphasis are styled as they arrive.
type Markdown struct {
	pw   *io.PipeWriter
	pace pacer
	done chan struct{}
	err  error
	once sync.Once
}

func NewMarkdown(config DisplayConfig) (*Markdown, error) {
	theme, err := Theme(config.Theme)
	if err != nil {
		return nil, err
	}
	if config.Width <= 0 {
		config.Width = 80
	}
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	pr, pw := io.Pipe()
	m := &Markdown{pw: pw, pace: newPacer(config.Context, config.Delay), done: make(chan struct{})}

	go func() {
		defer close(m.done)
		m.err = mdf.Render(mdf.RenderRequest{
			Reader:  pr,
			Writer:  config.Writer,
			Width:   config.Width,
			Theme:   theme,
			Options: []mdf.RenderOption{mdf.WithOSC8(config.OSC8)},
		})
		// unblock writers if rendering stopped early
		if m.err != nil {
			pr.CloseWithError(m.err)
		} else {
			pr.Close()
		}
	}()

	return m, nil
}

func (m *Markdown) Write(text string) error {
	if text == "" {
		return nil
	}
	if err := m.pace.wait(); err != nil {
		return err
	}
	if _, err := io.WriteString(m.pw, text); err != nil {
		return fmt.Errorf("markdown display: %w", err)
	}
	return nil
}

// Close flushes the renderer and waits for it to finish.
func (m *Markdown) Close() error {
	m.once.Do(func() {
		m.pw.Close()
		<-m.done
	})
	return m.err
}

// Theme resolves a theme name. "boring" disables all styling.
func Theme(name string) (mdf.Theme, error) {
	if name == ThemeBoring {
		return mdf.NewTheme(ThemeBoring, mdf.Styles{}), nil
	}
	theme, ok := mdf.ThemeByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (available: %v)", name, mdf.AvailableThemes())
	}
	return theme, nil
}
