// Package document holds the styled, format-independent form of a guide.
// Exporters walk it to produce docx and other outputs.
package document

import (
	"fmt"
	"strings"
	"time"
)

type RGB struct {
	R, G, B uint8
}

// Hex returns the colour as six upper-case hex digits, without '#'.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
)

type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindBullet
	KindNumbered
	KindSpacer
)

func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindBullet:
		return "bullet"
	case KindNumbered:
		return "numbered"
	case KindSpacer:
		return "spacer"
	default:
		return "paragraph"
	}
}

// RunStyle is the character formatting of a run. Size is in points.
type RunStyle struct {
	Family string
	Size   float64
	Color  RGB
}

type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Font   RunStyle
}

// ParagraphStyle spacing is in points, IndentLeft in inches and LineSpacing
// is a multiple of single spacing.
type ParagraphStyle struct {
	Alignment   Alignment
	SpaceBefore float64
	SpaceAfter  float64
	LineSpacing float64
	IndentLeft  float64
}

type Paragraph struct {
	Runs  []Run
	Style ParagraphStyle
}

func (p Paragraph) Text() string {
	return joinRuns(p.Runs)
}

// Block is one rendered body line. Level is set for headings (1-3) and
// Number for numbered list items.
type Block struct {
	Kind   BlockKind
	Level  int
	Number int
	Runs   []Run
	Style  ParagraphStyle
}

func (b Block) Text() string {
	return joinRuns(b.Runs)
}

// Image is an embedded picture. Width and Height are in pixels; DisplayWidth
// is the rendered width in inches.
type Image struct {
	Path         string
	Data         []byte
	Format       string // png or jpeg
	Width        int
	Height       int
	DisplayWidth float64
}

type Header struct {
	Logo         *Image
	Title        Paragraph
	Organization Paragraph
	Generated    Paragraph
	Separator    Paragraph
}

type Footer struct {
	Separator Paragraph
	Contact   Paragraph
	Notice    *Paragraph
}

// Properties are the document-level metadata written by exporters that
// support them.
type Properties struct {
	ID      string
	Title   string
	Subject string
	Author  string
	Created time.Time
}

type Document struct {
	Properties Properties
	Header     Header
	Blocks     []Block
	Footer     Footer
	// Warnings lists non-fatal problems met while rendering.
	Warnings []string
}

func joinRuns(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
