package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/guidegen/internal/types"
	"github.com/xhad/guidegen/pkg/config"
	"github.com/xhad/guidegen/pkg/llm"
	"golang.org/x/term"
)

const spinnerInterval = 100 * time.Millisecond

type ui struct {
	out io.Writer
	err io.Writer
	// interactive is true when err is a terminal, so spinners and bars
	// can redraw in place.
	interactive bool
}

func newUI(stdout, stderr io.Writer) *ui {
	return &ui{out: stdout, err: stderr, interactive: isTerminal(stderr)}
}

func (u *ui) info(format string, args ...any) {
	fmt.Fprintln(u.err, color.CyanString(format, args...))
}

func (u *ui) success(format string, args ...any) {
	fmt.Fprintln(u.err, color.GreenString("✓ "+format, args...))
}

func (u *ui) warn(format string, args ...any) {
	fmt.Fprintln(u.err, color.YellowString("! "+format, args...))
}

func (u *ui) fail(err error) {
	fmt.Fprintln(u.err, color.RedString("✗ Error: %v", err))
	if hint := llm.Hint(err); hint != "" {
		fmt.Fprintln(u.err, color.YellowString("  Hint: %s", hint))
	}
}

func (u *ui) configProblems(problems []config.ValidationError) {
	fmt.Fprintln(u.err, color.RedString("✗ Configuration errors:"))
	for _, p := range problems {
		fmt.Fprintln(u.err, color.RedString("  - %s", p.Error()))
	}
}

func (u *ui) report(r config.AccessibilityReport) {
	for _, item := range r.Items {
		switch item.Level {
		case config.ReportPass:
			fmt.Fprintln(u.out, color.GreenString("  ✓ %s", item.Message))
		case config.ReportWarn:
			fmt.Fprintln(u.out, color.YellowString("  ! %s", item.Message))
		case config.ReportFail:
			fmt.Fprintln(u.out, color.RedString("  ✗ %s", item.Message))
		}
	}
	if r.MeetsStandards {
		fmt.Fprintln(u.out, color.GreenString("Settings meet large print accessibility standards"))
	} else {
		fmt.Fprintln(u.out, color.RedString("Settings do not meet large print accessibility standards"))
	}
}

// spinner animates an indeterminate bar on stderr until the returned stop
// function runs. Non-interactive sessions get a single status line instead.
func (u *ui) spinner(description string) (stop func()) {
	if !u.interactive {
		u.info("%s", description)
		return func() {}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(u.err),
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
			_ = bar.Clear()
			fmt.Fprint(u.err, "\r")
		})
	}
}

// pageBar counts fetched reference pages against the crawl limit.
func (u *ui) pageBar(max int) (onPage func(string), finish func()) {
	if !u.interactive {
		var mu sync.Mutex
		return func(url string) {
			mu.Lock()
			defer mu.Unlock()
			u.info("Fetched %s", url)
		}, func() {}
	}
	bar := progressbar.NewOptions(max,
		progressbar.OptionSetWriter(u.err),
		progressbar.OptionSetDescription(color.BlueString("Fetching references")),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
	)
	return func(string) { _ = bar.Add(1) }, func() {
		_ = bar.Finish()
		fmt.Fprintln(u.err)
	}
}

// firstWriteSink stops the spinner when the first text arrives, so the
// spinner never redraws over streamed output.
type firstWriteSink struct {
	types.Sink
	once sync.Once
	stop func()
}

func (s *firstWriteSink) Write(text string) error {
	s.once.Do(s.stop)
	return s.Sink.Write(text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}
