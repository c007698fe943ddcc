package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/pkg/document"
)

const (
	titleSize      = 26
	separatorGlyph = "●"
	separatorWidth = 25
)

type RendererConfig struct {
	Profile   StyleProfile
	LogoPath  string  // optional png or jpeg
	LogoWidth float64 // inches, default 2
	Log       logrus.FieldLogger
}

// Renderer turns complete markdown text into a styled document. It holds no
// per-call state and can be reused.
type Renderer struct {
	config RendererConfig
}

func NewRenderer(config RendererConfig) *Renderer {
	if config.LogoWidth == 0 {
		config.LogoWidth = 2
	}
	if config.Log == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		config.Log = log
	}
	return &Renderer{config: config}
}

func (r *Renderer) Profile() StyleProfile {
	return r.config.Profile
}

// Render builds the header, one block per source line and the footer.
// Consecutive blank lines produce a single spacer. Render never fails; a
// logo that cannot be used is reported in Document.Warnings.
func (r *Renderer) Render(text string, meta models.DocumentMetadata) *document.Document {
	doc := &document.Document{
		Properties: document.Properties{
			ID:      meta.ID,
			Title:   meta.Title,
			Subject: meta.Topic,
			Author:  meta.OrganizationName,
			Created: meta.CreatedAt,
		},
	}

	doc.Header = r.header(doc, meta)
	doc.Blocks = r.body(text)
	doc.Footer = r.footer(meta)

	return doc
}

func (r *Renderer) body(text string) []document.Block {
	var blocks []document.Block
	prevSpacer := false

	for _, raw := range splitLines(text) {
		line := Classify(raw)
		if line.Kind == document.KindSpacer {
			if prevSpacer {
				continue
			}
			prevSpacer = true
		} else {
			prevSpacer = false
		}
		blocks = append(blocks, r.Block(line))
	}

	return blocks
}

// Block styles one classified line.
func (r *Renderer) Block(line Line) document.Block {
	font, para := r.config.Profile.StyleFor(line)

	var runs []document.Run
	switch line.Kind {
	case document.KindSpacer:
	case document.KindHeading:
		if line.Text != "" {
			runs = []document.Run{{Text: line.Text, Bold: true}}
		}
	default:
		runs = SplitBold(line.Text)
	}
	for i := range runs {
		runs[i].Font = font
	}

	return document.Block{
		Kind:   line.Kind,
		Level:  line.Level,
		Number: line.Number,
		Runs:   runs,
		Style:  para,
	}
}

func (r *Renderer) header(doc *document.Document, meta models.DocumentMetadata) document.Header {
	p := r.config.Profile
	centered := func(before, after float64) document.ParagraphStyle {
		return document.ParagraphStyle{Alignment: document.AlignCenter, SpaceBefore: before, SpaceAfter: after, LineSpacing: 1}
	}

	var h document.Header

	if r.config.LogoPath != "" {
		logo, err := loadLogo(r.config.LogoPath, r.config.LogoWidth)
		if err != nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("logo not added: %v", err))
			r.config.Log.WithError(err).WithField("path", r.config.LogoPath).Warn("continuing without logo")
		} else {
			h.Logo = logo
		}
	}

	titleBefore := 0.0
	if h.Logo == nil {
		titleBefore = 18
	}
	title := meta.Title
	if title == "" {
		title = "Learning Guide"
	}
	h.Title = document.Paragraph{
		Runs: []document.Run{{
			Text: title,
			Bold: true,
			Font: document.RunStyle{Family: p.FontFamily, Size: max(titleSize, p.Heading1Size+2), Color: p.HeadingColor},
		}},
		Style: centered(titleBefore, 6),
	}

	h.Organization = document.Paragraph{
		Runs: []document.Run{{
			Text:   meta.OrganizationName,
			Italic: true,
			Font:   document.RunStyle{Family: p.FontFamily, Size: p.BodyFontSize, Color: p.MutedColor},
		}},
		Style: centered(8, 0),
	}

	generated := "Generated: " + meta.CreatedAt.Format("January 02, 2006")
	if meta.Topic != "" {
		generated += " • " + meta.Topic
	}
	h.Generated = document.Paragraph{
		Runs: []document.Run{{
			Text: generated,
			Font: document.RunStyle{Family: p.FontFamily, Size: p.small(2), Color: p.MutedColor},
		}},
		Style: centered(6, 0),
	}

	h.Separator = r.separator(18, 24)

	return h
}

func (r *Renderer) footer(meta models.DocumentMetadata) document.Footer {
	p := r.config.Profile

	f := document.Footer{
		Separator: r.separator(24, 0),
		Contact: document.Paragraph{
			Runs: []document.Run{{
				Text: fmt.Sprintf("%s\nEmail: %s\nWeb: %s", meta.OrganizationName, meta.ContactEmail, meta.Website),
				Font: document.RunStyle{Family: p.FontFamily, Size: p.small(2), Color: p.MutedColor},
			}},
			Style: document.ParagraphStyle{Alignment: document.AlignCenter, SpaceBefore: 12, LineSpacing: 1},
		},
	}

	if p.LargePrint() {
		f.Notice = &document.Paragraph{
			Runs: []document.Run{{
				Text:   AccessibilityNotice(p),
				Italic: true,
				Font:   document.RunStyle{Family: p.FontFamily, Size: p.small(4), Color: p.NoticeColor},
			}},
			Style: document.ParagraphStyle{Alignment: document.AlignCenter, SpaceBefore: 12, LineSpacing: 1},
		}
	}

	return f
}

// AccessibilityNotice is the footer statement added to large print documents.
func AccessibilityNotice(p StyleProfile) string {
	return fmt.Sprintf("This document has been formatted for accessibility with large print (%gpt minimum font size)", p.BodyFontSize)
}

func (r *Renderer) separator(before, after float64) document.Paragraph {
	p := r.config.Profile
	return document.Paragraph{
		Runs: []document.Run{{
			Text: strings.Repeat(separatorGlyph, separatorWidth),
			Font: document.RunStyle{Family: p.FontFamily, Size: p.BodyFontSize, Color: p.AccentColor},
		}},
		Style: document.ParagraphStyle{Alignment: document.AlignCenter, SpaceBefore: before, SpaceAfter: after, LineSpacing: 1},
	}
}

func loadLogo(path string, width float64) (*document.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("unsupported logo format %s", format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("logo %s has no size", path)
	}

	return &document.Image{
		Path:         path,
		Data:         data,
		Format:       format,
		Width:        cfg.Width,
		Height:       cfg.Height,
		DisplayWidth: width,
	}, nil
}
