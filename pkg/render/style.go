package render

import (
	"fmt"
	"strings"

	"github.com/xhad/guidegen/pkg/document"
)

const (
	DefaultMinFontSize     = 12
	DefaultLargePrintFloor = 18
)

// StyleConfig is the accessibility part of the configuration. Zero values
// take the large print defaults.
type StyleConfig struct {
	BodyFontSize     float64
	Heading1Size     float64
	Heading2Size     float64
	Heading3Size     float64
	FontFamily       string
	LineSpacing      float64
	ParagraphSpacing float64
	HighContrast     bool
	MinFontSize      float64
	LargePrintFloor  float64
}

// StyleProfile is the validated, read-only formatting applied to every
// rendered document.
type StyleProfile struct {
	BodyFontSize     float64
	Heading1Size     float64
	Heading2Size     float64
	Heading3Size     float64
	FontFamily       string
	LineSpacing      float64
	ParagraphSpacing float64
	HighContrast     bool
	MinFontSize      float64
	LargePrintFloor  float64

	TextColor    document.RGB
	HeadingColor document.RGB
	AccentColor  document.RGB
	MutedColor   document.RGB
	NoticeColor  document.RGB
}

type palette struct {
	text, heading, accent, muted, notice document.RGB
}

var (
	black = document.RGB{}
	navy  = document.RGB{R: 0, G: 51, B: 102}

	standardPalette = palette{
		text:    black,
		heading: navy,
		accent:  navy,
		muted:   document.RGB{R: 102, G: 102, B: 102},
		notice:  document.RGB{R: 128, G: 128, B: 128},
	}
	highContrastPalette = palette{
		text:    black,
		heading: black,
		accent:  black,
		muted:   black,
		notice:  black,
	}
)

// NewStyleProfile applies defaults to cfg and checks that
// H1 > H2 > H3 > body >= MinFontSize.
func NewStyleProfile(cfg StyleConfig) (StyleProfile, error) {
	if cfg.BodyFontSize == 0 {
		cfg.BodyFontSize = 18
	}
	if cfg.Heading1Size == 0 {
		cfg.Heading1Size = 24
	}
	if cfg.Heading2Size == 0 {
		cfg.Heading2Size = 22
	}
	if cfg.Heading3Size == 0 {
		cfg.Heading3Size = 20
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = "Arial"
	}
	if cfg.LineSpacing == 0 {
		cfg.LineSpacing = 1.15
	}
	if cfg.ParagraphSpacing == 0 {
		cfg.ParagraphSpacing = 6
	}
	if cfg.MinFontSize == 0 {
		cfg.MinFontSize = DefaultMinFontSize
	}
	if cfg.LargePrintFloor == 0 {
		cfg.LargePrintFloor = DefaultLargePrintFloor
	}

	var problems []string
	if !(cfg.Heading1Size > cfg.Heading2Size) {
		problems = append(problems, fmt.Sprintf("heading 1 (%gpt) must be larger than heading 2 (%gpt)", cfg.Heading1Size, cfg.Heading2Size))
	}
	if !(cfg.Heading2Size > cfg.Heading3Size) {
		problems = append(problems, fmt.Sprintf("heading 2 (%gpt) must be larger than heading 3 (%gpt)", cfg.Heading2Size, cfg.Heading3Size))
	}
	if !(cfg.Heading3Size > cfg.BodyFontSize) {
		problems = append(problems, fmt.Sprintf("heading 3 (%gpt) must be larger than body text (%gpt)", cfg.Heading3Size, cfg.BodyFontSize))
	}
	if cfg.BodyFontSize < cfg.MinFontSize {
		problems = append(problems, fmt.Sprintf("body text (%gpt) is below the %gpt minimum", cfg.BodyFontSize, cfg.MinFontSize))
	}
	if cfg.LineSpacing < 1 {
		problems = append(problems, fmt.Sprintf("line spacing %g is below single spacing", cfg.LineSpacing))
	}
	if cfg.ParagraphSpacing < 0 {
		problems = append(problems, "paragraph spacing cannot be negative")
	}
	if len(problems) > 0 {
		return StyleProfile{}, fmt.Errorf("invalid style profile: %s", strings.Join(problems, "; "))
	}

	p := standardPalette
	if cfg.HighContrast {
		p = highContrastPalette
	}

	return StyleProfile{
		BodyFontSize:     cfg.BodyFontSize,
		Heading1Size:     cfg.Heading1Size,
		Heading2Size:     cfg.Heading2Size,
		Heading3Size:     cfg.Heading3Size,
		FontFamily:       cfg.FontFamily,
		LineSpacing:      cfg.LineSpacing,
		ParagraphSpacing: cfg.ParagraphSpacing,
		HighContrast:     cfg.HighContrast,
		MinFontSize:      cfg.MinFontSize,
		LargePrintFloor:  cfg.LargePrintFloor,
		TextColor:        p.text,
		HeadingColor:     p.heading,
		AccentColor:      p.accent,
		MutedColor:       p.muted,
		NoticeColor:      p.notice,
	}, nil
}

// LargePrint reports whether body text meets the large print floor.
func (p StyleProfile) LargePrint() bool {
	return p.BodyFontSize >= p.LargePrintFloor
}

// HeadingSize returns the font size for heading level 1-3.
func (p StyleProfile) HeadingSize(level int) float64 {
	switch level {
	case 1:
		return p.Heading1Size
	case 2:
		return p.Heading2Size
	default:
		return p.Heading3Size
	}
}

// StyleFor returns the formatting of a classified line. It depends only on
// the line's kind and level.
func (p StyleProfile) StyleFor(line Line) (document.RunStyle, document.ParagraphStyle) {
	font := document.RunStyle{Family: p.FontFamily, Size: p.BodyFontSize, Color: p.TextColor}
	para := document.ParagraphStyle{Alignment: document.AlignLeft, LineSpacing: p.LineSpacing}

	switch line.Kind {
	case document.KindHeading:
		font.Size = p.HeadingSize(line.Level)
		font.Color = p.HeadingColor
		para.SpaceBefore = 18
		para.SpaceAfter = 12
		para.LineSpacing = 1
	case document.KindBullet, document.KindNumbered:
		para.SpaceAfter = 3
		para.IndentLeft = 0.25
	case document.KindSpacer:
		para.SpaceAfter = p.ParagraphSpacing
		para.LineSpacing = 1
	default:
		para.SpaceAfter = p.ParagraphSpacing
	}
	return font, para
}

// small returns size reduced by delta but never below the minimum.
func (p StyleProfile) small(delta float64) float64 {
	return max(p.BodyFontSize-delta, p.MinFontSize)
}
