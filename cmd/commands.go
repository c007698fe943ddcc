package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/muesli/reflow/wordwrap"
	"github.com/xhad/guidegen/internal/types"
	"github.com/xhad/guidegen/pkg/display"
	"github.com/xhad/guidegen/pkg/export"
	"github.com/xhad/guidegen/pkg/guide"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"pkt.systems/mdf"
)

const (
	voiceOverTopic = "VoiceOver basics for beginners"
	jawsTopic      = "Setting up JAWS screen reader on Windows"
)

type guideOptions struct {
	format     string
	noStream   bool
	references []string
	display    string
}

func parseGuideFlags(a *app, name, args string, argv []string) (guideOptions, []string, error) {
	opts := guideOptions{}
	flags := subcommandFlags(a, name, args)
	flags.StringVarP(&opts.format, "format", "f", a.cfg.Output.Format, "Output format: "+strings.Join(export.Formats(), "|"))
	flags.BoolVar(&opts.noStream, "no-stream", false, "Wait for the whole guide instead of streaming it")
	flags.StringArrayVarP(&opts.references, "reference", "r", nil, "Reference page to crawl and include (repeatable)")
	flags.StringVar(&opts.display, "display", a.cfg.UI.Display, "Live display: plain|markdown|none")
	if err := flags.Parse(argv); err != nil {
		return opts, nil, err
	}
	return opts, flags.Args(), nil
}

func runGuide(ctx context.Context, a *app, args []string) error {
	opts, rest, err := parseGuideFlags(a, "guide", "TOPIC", args)
	if err != nil {
		return err
	}
	topic := strings.TrimSpace(strings.Join(rest, " "))
	if topic == "" {
		return guide.ErrEmptyTopic
	}
	return generateGuide(ctx, a, topic, opts)
}

func fixedTopic(name, topic string) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		opts, rest, err := parseGuideFlags(a, name, "", args)
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			return fmt.Errorf("%s takes no arguments", name)
		}
		return generateGuide(ctx, a, topic, opts)
	}
}

func generateGuide(ctx context.Context, a *app, topic string, opts guideOptions) error {
	if opts.noStream {
		a.cfg.Streaming.Enabled = false
	}

	gen, err := a.generator()
	if err != nil {
		return err
	}

	var onPage func(string)
	finishPages := func() {}
	if len(opts.references) > 0 {
		onPage, finishPages = a.ui.pageBar(a.cfg.Scraper.MaxPages * len(opts.references))
	}

	svc, err := a.service(gen, onPage)
	if err != nil {
		return err
	}

	mode := opts.display
	if !a.cfg.Streaming.Enabled {
		mode = display.ModeNone
	}
	sink, err := display.New(a.displayConfig(ctx, mode))
	if err != nil {
		return err
	}

	var stop func()
	stopSpinner := func() {
		if stop != nil {
			stop()
		}
	}
	var reqSink types.Sink
	if sink != nil {
		reqSink = &firstWriteSink{Sink: sink, stop: stopSpinner}
	}

	a.ui.info("Creating a learning guide for %q", topic)
	res, err := svc.GenerateTopicGuide(ctx, guide.Request{
		Topic:         topic,
		Format:        opts.format,
		ReferenceURLs: opts.references,
		Sink:          reqSink,
		OnStage: func(stage string) {
			switch stage {
			case guide.StageGenerating:
				finishPages()
				stop = a.ui.spinner("Generating guide...")
			case guide.StageFallback:
				stopSpinner()
				a.ui.warn("Streaming failed, requesting the whole guide instead")
				stop = a.ui.spinner("Generating guide...")
			case guide.StageSaving:
				stopSpinner()
			}
		},
	})
	stopSpinner()
	if sink != nil {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.ui.err)
	a.ui.success("Guide saved to %s", res.Path)
	if res.References > 0 {
		a.ui.info("Included %d reference excerpts", res.References)
	}
	if res.FellBack {
		a.ui.warn("The guide was generated without streaming after the stream failed")
	}
	a.ui.info("Finished in %s", res.Elapsed.Round(100*time.Millisecond))
	return nil
}

func runList(_ context.Context, a *app, args []string) error {
	var limit int
	flags := subcommandFlags(a, "list", "")
	flags.IntVarP(&limit, "limit", "n", 10, "Number of guides to show (0 shows all)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	fs, err := a.store()
	if err != nil {
		return err
	}
	guides, err := fs.Recent(limit)
	if err != nil {
		return err
	}
	if len(guides) == 0 {
		a.ui.info("No guides found in %s", fs.Root())
		return nil
	}

	p := message.NewPrinter(language.English)
	fmt.Fprintln(a.ui.out, color.New(color.Bold).Sprintf("Recent guides in %s", fs.Root()))
	for i, g := range guides {
		fmt.Fprintf(a.ui.out, "%2d. %s\n", i+1, color.New(color.Bold).Sprint(g.Title))
		fmt.Fprintf(a.ui.out, "    %s, %s, %s\n", g.Format, humanSize(p, g.Size), g.Modified.Format("2006-01-02 15:04"))
		fmt.Fprintf(a.ui.out, "    %s\n", g.Path)
	}
	return nil
}

func humanSize(p *message.Printer, size int64) string {
	if size < 1024 {
		return p.Sprintf("%d bytes", size)
	}
	return p.Sprintf("%d KB", (size+512)/1024)
}

func runPreview(_ context.Context, a *app, args []string) error {
	var (
		plain bool
		width int
	)
	flags := subcommandFlags(a, "preview", "FILE")
	flags.BoolVar(&plain, "plain", false, "Print wrapped text without styling")
	flags.IntVarP(&width, "width", "w", 0, "Output width (0 uses the terminal width)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("preview needs exactly one file")
	}
	path := normalizePath(flags.Arg(0))
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".md" {
		return fmt.Errorf("preview supports markdown guides only, got %s", filepath.Base(path))
	}
	if width <= 0 {
		width = a.width()
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open guide: %w", err)
	}
	defer f.Close()

	fm, body, err := export.ReadFrontMatter(f)
	if err != nil {
		return err
	}
	if fm.Title != "" {
		fmt.Fprintln(a.ui.out, color.New(color.Bold).Sprint(fm.Title))
		if fm.Created != "" {
			fmt.Fprintln(a.ui.out, color.HiBlackString("Created %s", fm.Created))
		}
		fmt.Fprintln(a.ui.out)
	}

	if plain {
		fmt.Fprintln(a.ui.out, wordwrap.String(body, width))
		return nil
	}
	theme, err := display.Theme(a.cfg.UI.Theme)
	if err != nil {
		return err
	}
	return mdf.Render(mdf.RenderRequest{
		Reader:  strings.NewReader(body),
		Writer:  a.ui.out,
		Width:   width,
		Theme:   theme,
		Options: []mdf.RenderOption{mdf.WithOSC8(isTerminal(a.ui.out) && mdf.DetectOSC8Support())},
	})
}

func runAccessibilityTest(ctx context.Context, a *app, args []string) error {
	var format string
	flags := subcommandFlags(a, "accessibility-test", "")
	flags.StringVarP(&format, "format", "f", a.cfg.Output.Format, "Output format: "+strings.Join(export.Formats(), "|"))
	if err := flags.Parse(args); err != nil {
		return err
	}

	fmt.Fprintln(a.ui.out, color.New(color.Bold).Sprint("Accessibility settings"))
	a.ui.report(a.cfg.AccessibilityReport())

	profile, err := a.profile()
	if err != nil {
		return err
	}
	svc, err := a.service(nil, nil)
	if err != nil {
		return err
	}
	text, meta := guide.AccessibilityTestContent(profile, a.cfg.Organization.Name)
	path, err := svc.SaveContent(ctx, text, meta, format)
	if err != nil {
		return err
	}
	a.ui.success("Accessibility test guide saved to %s", path)
	return nil
}
