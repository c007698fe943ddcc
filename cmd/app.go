package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xhad/guidegen/pkg/accumulator"
	"github.com/xhad/guidegen/pkg/config"
	"github.com/xhad/guidegen/pkg/display"
	"github.com/xhad/guidegen/pkg/guide"
	"github.com/xhad/guidegen/pkg/llm"
	"github.com/xhad/guidegen/pkg/logger"
	"github.com/xhad/guidegen/pkg/processor"
	"github.com/xhad/guidegen/pkg/render"
	"github.com/xhad/guidegen/pkg/scraper"
	"github.com/xhad/guidegen/pkg/store"
	"pkt.systems/mdf"
)

const defaultWidth = 80

// app holds the configuration and builds the pipeline pieces a command
// asks for.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	ui  *ui
}

func newApp(cfg *config.Config, stdout, stderr io.Writer) *app {
	return &app{
		cfg: cfg,
		log: logger.New(cfg.Log.Level, cfg.Log.Format, stderr),
		ui:  newUI(stdout, stderr),
	}
}

func (a *app) profile() (render.StyleProfile, error) {
	acc := a.cfg.Accessibility
	return render.NewStyleProfile(render.StyleConfig{
		BodyFontSize:     acc.BodyFontSize,
		Heading1Size:     acc.Heading1Size,
		Heading2Size:     acc.Heading2Size,
		Heading3Size:     acc.Heading3Size,
		FontFamily:       acc.Font,
		LineSpacing:      acc.LineSpacing,
		ParagraphSpacing: acc.ParagraphSpacing,
		HighContrast:     acc.HighContrast,
		MinFontSize:      render.DefaultMinFontSize,
		LargePrintFloor:  render.DefaultLargePrintFloor,
	})
}

func (a *app) store() (*store.FileStore, error) {
	return store.NewWithConfig(store.StoreConfig{
		Root: normalizePath(a.cfg.Output.Dir),
		Log:  a.log,
	})
}

func (a *app) generator() (llm.Generator, error) {
	gen, err := llm.NewFromConfig(llm.ProviderConfig{
		Provider:    a.cfg.LLM.Provider,
		APIKey:      a.cfg.LLM.APIKey,
		Model:       a.cfg.LLM.Model,
		BaseURL:     a.cfg.LLM.BaseURL,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Temperature: a.cfg.LLM.Temperature,
		Timeout:     a.cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if a.cfg.Streaming.Retry {
		gen = llm.NewRetrying(gen, llm.RetryConfig{MaxAttempts: a.cfg.Streaming.RetryAttempts}, a.log)
	}
	return gen, nil
}

// service wires the guide pipeline. A nil gen gives a service that can only
// save finished text.
func (a *app) service(gen llm.Generator, onPage func(string)) (*guide.Service, error) {
	profile, err := a.profile()
	if err != nil {
		return nil, err
	}
	fs, err := a.store()
	if err != nil {
		return nil, err
	}
	grouping, err := accumulator.ParseGrouping(a.cfg.Streaming.Grouping)
	if err != nil {
		return nil, err
	}

	logo := a.cfg.Organization.LogoPath
	if logo != "" {
		logo = normalizePath(logo)
	}
	renderer := render.NewRenderer(render.RendererConfig{
		Profile:  profile,
		LogoPath: logo,
		Log:      a.log,
	})

	sc := a.cfg.Scraper
	proc := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:     sc.ChunkSize,
		MaxReferences: sc.MaxReferences,
	})
	fetcher := scraper.NewWithConfig(scraper.ScraperConfig{
		MaxDepth:          sc.MaxDepth,
		MaxPages:          sc.MaxPages,
		RateLimit:         sc.RateLimit,
		IgnorePatterns:    sc.IgnorePatterns,
		AllowedExtensions: sc.AllowedExtensions,
		OnProgress:        onPage,
		Log:               a.log,
	})

	return guide.NewWithConfig(guide.ServiceConfig{
		Generator: gen,
		Store:     fs,
		Renderer:  renderer,
		Prompt: llm.PromptOptions{
			Organization: a.cfg.Organization.Name,
			ThinkAloud:   a.cfg.Streaming.Thinking,
			Detail:       a.cfg.Streaming.ThinkingDetail,
		},
		Streaming: a.cfg.Streaming.Enabled,
		Fallback:  a.cfg.Streaming.Fallback,
		Grouping:  grouping,
		Organization: guide.Organization{
			Name:         a.cfg.Organization.Name,
			ContactEmail: a.cfg.Organization.ContactEmail,
			Website:      a.cfg.Organization.Website,
		},
		Fetcher:   fetcher,
		Processor: &proc,
		Log:       a.log,
	})
}

func (a *app) displayConfig(ctx context.Context, mode string) display.DisplayConfig {
	return display.DisplayConfig{
		Context: ctx,
		Mode:    mode,
		Writer:  a.ui.out,
		Delay:   time.Duration(a.cfg.Streaming.DelayMS) * time.Millisecond,
		Width:   a.width(),
		Theme:   a.cfg.UI.Theme,
		OSC8:    isTerminal(a.ui.out) && mdf.DetectOSC8Support(),
	}
}

func (a *app) width() int {
	if a.cfg.UI.Width > 0 {
		return a.cfg.UI.Width
	}
	return terminalWidth(defaultWidth)
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
