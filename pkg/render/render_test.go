package render_test

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/pkg/document"
	"github.com/xhad/guidegen/pkg/render"
)

func testMeta() models.DocumentMetadata {
	return models.DocumentMetadata{
		ID:               "3f2a",
		Type:             models.GuideLearning,
		Title:            "Voiceover Basics - Learning Guide",
		Topic:            "VoiceOver basics",
		CreatedAt:        time.Date(2025, time.March, 4, 10, 30, 0, 0, time.UTC),
		OrganizationName: "MyVision Oxfordshire",
		ContactEmail:     "info@myvision.org.uk",
		Website:          "www.myvision.org.uk",
	}
}

func defaultProfile(t *testing.T) render.StyleProfile {
	t.Helper()
	p, err := render.NewStyleProfile(render.StyleConfig{})
	require.NoError(t, err)
	return p
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input  string
		kind   document.BlockKind
		level  int
		number int
		text   string
	}{
		{"# Title", document.KindHeading, 1, 0, "Title"},
		{"## Sub", document.KindHeading, 2, 0, "Sub"},
		{"### Detail ", document.KindHeading, 3, 0, "Detail"},
		{"#### Deep", document.KindParagraph, 0, 0, "#### Deep"},
		{"# ", document.KindHeading, 1, 0, ""},
		{"#Title", document.KindParagraph, 0, 0, "#Title"},
		{"- item", document.KindBullet, 0, 0, "item"},
		{"* item", document.KindBullet, 0, 0, "item"},
		{"  - indented", document.KindBullet, 0, 0, "indented"},
		{"-item", document.KindParagraph, 0, 0, "-item"},
		{"1. first", document.KindNumbered, 0, 1, "first"},
		{"10. tenth", document.KindNumbered, 0, 10, "tenth"},
		{"99999999999999999999. step", document.KindNumbered, 0, 0, "step"},
		{"1.5 litres", document.KindParagraph, 0, 0, "1.5 litres"},
		{"", document.KindSpacer, 0, 0, ""},
		{"   \t", document.KindSpacer, 0, 0, ""},
		{"plain text", document.KindParagraph, 0, 0, "plain text"},
		{"windows line\r", document.KindParagraph, 0, 0, "windows line"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			line := render.Classify(tt.input)
			assert.Equal(t, tt.kind, line.Kind)
			assert.Equal(t, tt.level, line.Level)
			assert.Equal(t, tt.number, line.Number)
			assert.Equal(t, tt.text, line.Text)
		})
	}
}

func TestSplitBold(t *testing.T) {
	tests := []struct {
		input string
		want  []document.Run
	}{
		{"a **b** c", []document.Run{{Text: "a "}, {Text: "b", Bold: true}, {Text: " c"}}},
		{"**lead** text", []document.Run{{Text: "lead", Bold: true}, {Text: " text"}}},
		{"**a**b**c**", []document.Run{{Text: "a", Bold: true}, {Text: "b"}, {Text: "c", Bold: true}}},
		{"open **only", []document.Run{{Text: "open **only"}}},
		{"x **y** z **", []document.Run{{Text: "x "}, {Text: "y", Bold: true}, {Text: " z **"}}},
		{"****", nil},
		{"", nil},
		{"no markers", []document.Run{{Text: "no markers"}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, render.SplitBold(tt.input))
		})
	}
}

func TestNewStyleProfile_Floor(t *testing.T) {
	tests := []struct {
		name    string
		cfg     render.StyleConfig
		wantErr string
	}{
		{"defaults", render.StyleConfig{}, ""},
		{"larger print", render.StyleConfig{BodyFontSize: 22, Heading1Size: 30, Heading2Size: 27, Heading3Size: 24}, ""},
		{"h2 not below h1", render.StyleConfig{Heading1Size: 22, Heading2Size: 22}, "heading 1"},
		{"h3 equals body", render.StyleConfig{Heading3Size: 18}, "heading 3"},
		{"body below minimum", render.StyleConfig{BodyFontSize: 10, Heading1Size: 16, Heading2Size: 14, Heading3Size: 12}, "below the 12pt minimum"},
		{"custom minimum", render.StyleConfig{MinFontSize: 20}, "below the 20pt minimum"},
		{"tight lines", render.StyleConfig{LineSpacing: 0.8}, "line spacing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := render.NewStyleProfile(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Greater(t, p.Heading1Size, p.Heading2Size)
			assert.Greater(t, p.Heading2Size, p.Heading3Size)
			assert.Greater(t, p.Heading3Size, p.BodyFontSize)
			assert.GreaterOrEqual(t, p.BodyFontSize, p.MinFontSize)
		})
	}
}

func TestNewStyleProfile_Palettes(t *testing.T) {
	standard := defaultProfile(t)
	assert.Equal(t, "003366", standard.HeadingColor.Hex())
	assert.Equal(t, "666666", standard.MutedColor.Hex())
	assert.Equal(t, "000000", standard.TextColor.Hex())

	contrast, err := render.NewStyleProfile(render.StyleConfig{HighContrast: true})
	require.NoError(t, err)
	for _, c := range []document.RGB{contrast.TextColor, contrast.HeadingColor, contrast.AccentColor, contrast.MutedColor, contrast.NoticeColor} {
		assert.Equal(t, "000000", c.Hex())
	}
}

func TestStyleFor_Deterministic(t *testing.T) {
	p := defaultProfile(t)

	for _, input := range []string{"# A", "## B", "### C", "- d", "1. e", "f", ""} {
		line := render.Classify(input)
		f1, p1 := p.StyleFor(line)
		f2, p2 := p.StyleFor(render.Classify(input))
		assert.Equal(t, f1, f2)
		assert.Equal(t, p1, p2)
	}

	h1, _ := p.StyleFor(render.Line{Kind: document.KindHeading, Level: 1})
	h3, _ := p.StyleFor(render.Line{Kind: document.KindHeading, Level: 3})
	body, para := p.StyleFor(render.Line{Kind: document.KindBullet})
	assert.Equal(t, 24.0, h1.Size)
	assert.Equal(t, 20.0, h3.Size)
	assert.Equal(t, p.HeadingColor, h1.Color)
	assert.Equal(t, 18.0, body.Size)
	assert.Equal(t, p.TextColor, body.Color)
	assert.Equal(t, 0.25, para.IndentLeft)
	assert.Equal(t, 3.0, para.SpaceAfter)
}

type blockView struct {
	Kind  document.BlockKind
	Level int
	Runs  []document.Run
}

func view(blocks []document.Block) []blockView {
	var out []blockView
	for _, b := range blocks {
		runs := make([]document.Run, len(b.Runs))
		for i, r := range b.Runs {
			runs[i] = document.Run{Text: r.Text, Bold: r.Bold}
		}
		if len(runs) == 0 {
			runs = nil
		}
		out = append(out, blockView{Kind: b.Kind, Level: b.Level, Runs: runs})
	}
	return out
}

func TestRender_EndToEnd(t *testing.T) {
	text := "# VoiceOver Basics\n\n## Learning Objectives\n- Turn on VoiceOver\n- Navigate with swipes\n\nPlain paragraph with **bold** word.\n"

	doc := render.NewRenderer(render.RendererConfig{Profile: defaultProfile(t)}).Render(text, testMeta())

	want := []blockView{
		{Kind: document.KindHeading, Level: 1, Runs: []document.Run{{Text: "VoiceOver Basics", Bold: true}}},
		{Kind: document.KindSpacer},
		{Kind: document.KindHeading, Level: 2, Runs: []document.Run{{Text: "Learning Objectives", Bold: true}}},
		{Kind: document.KindBullet, Runs: []document.Run{{Text: "Turn on VoiceOver"}}},
		{Kind: document.KindBullet, Runs: []document.Run{{Text: "Navigate with swipes"}}},
		{Kind: document.KindSpacer},
		{Kind: document.KindParagraph, Runs: []document.Run{{Text: "Plain paragraph with "}, {Text: "bold", Bold: true}, {Text: " word."}}},
	}
	assert.Equal(t, want, view(doc.Blocks))
	assert.Empty(t, doc.Warnings)
}

func TestRender_CollapsesBlankLines(t *testing.T) {
	doc := render.NewRenderer(render.RendererConfig{Profile: defaultProfile(t)}).Render("one\n\n\n\ntwo", testMeta())

	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, document.KindSpacer, doc.Blocks[1].Kind)

	empty := render.NewRenderer(render.RendererConfig{Profile: defaultProfile(t)}).Render("", testMeta())
	require.Len(t, empty.Blocks, 1)
	assert.Equal(t, document.KindSpacer, empty.Blocks[0].Kind)
}

func TestRender_Idempotent(t *testing.T) {
	text := "# T\n\n- a **b**\n1. c\n\nd"
	r := render.NewRenderer(render.RendererConfig{Profile: defaultProfile(t)})

	first := r.Render(text, testMeta())
	second := r.Render(text, testMeta())

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestRender_HeaderAndFooter(t *testing.T) {
	doc := render.NewRenderer(render.RendererConfig{Profile: defaultProfile(t)}).Render("body", testMeta())

	assert.Nil(t, doc.Header.Logo)
	assert.Equal(t, "Voiceover Basics - Learning Guide", doc.Header.Title.Text())
	assert.Equal(t, 26.0, doc.Header.Title.Runs[0].Font.Size)
	assert.True(t, doc.Header.Organization.Runs[0].Italic)
	assert.Equal(t, "Generated: March 04, 2025 • VoiceOver basics", doc.Header.Generated.Text())
	assert.Equal(t, 16.0, doc.Header.Generated.Runs[0].Font.Size)
	assert.Equal(t, "●●●●●●●●●●●●●●●●●●●●●●●●●", doc.Header.Separator.Text())

	assert.Equal(t, "MyVision Oxfordshire\nEmail: info@myvision.org.uk\nWeb: www.myvision.org.uk", doc.Footer.Contact.Text())
	require.NotNil(t, doc.Footer.Notice)
	assert.Equal(t, "This document has been formatted for accessibility with large print (18pt minimum font size)", doc.Footer.Notice.Text())
	assert.Equal(t, 14.0, doc.Footer.Notice.Runs[0].Font.Size)

	assert.Equal(t, "3f2a", doc.Properties.ID)
	assert.Equal(t, "VoiceOver basics", doc.Properties.Subject)
}

func TestRender_NoNoticeBelowFloor(t *testing.T) {
	p, err := render.NewStyleProfile(render.StyleConfig{BodyFontSize: 14, Heading1Size: 20, Heading2Size: 18, Heading3Size: 16})
	require.NoError(t, err)

	doc := render.NewRenderer(render.RendererConfig{Profile: p}).Render("body", testMeta())
	assert.Nil(t, doc.Footer.Notice)
	assert.Equal(t, 12.0, doc.Header.Generated.Runs[0].Font.Size)
}

func TestRender_Logo(t *testing.T) {
	dir := t.TempDir()
	logoPath := filepath.Join(dir, "logo.png")
	f, err := os.Create(logoPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 20))))
	require.NoError(t, f.Close())

	doc := render.NewRenderer(render.RendererConfig{Profile: defaultProfile(t), LogoPath: logoPath}).Render("body", testMeta())

	require.NotNil(t, doc.Header.Logo)
	assert.Equal(t, "png", doc.Header.Logo.Format)
	assert.Equal(t, 40, doc.Header.Logo.Width)
	assert.Equal(t, 20, doc.Header.Logo.Height)
	assert.Equal(t, 2.0, doc.Header.Logo.DisplayWidth)
	assert.Empty(t, doc.Warnings)
}

func TestRender_LogoFallback(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not an image"), 0o644))

	for name, path := range map[string]string{
		"missing":   filepath.Join(dir, "missing.png"),
		"undecoded": broken,
	} {
		t.Run(name, func(t *testing.T) {
			doc := render.NewRenderer(render.RendererConfig{Profile: defaultProfile(t), LogoPath: path}).Render("# Still here", testMeta())

			assert.Nil(t, doc.Header.Logo)
			require.Len(t, doc.Warnings, 1)
			assert.Contains(t, doc.Warnings[0], "logo not added")
			require.Len(t, doc.Blocks, 1)
			assert.Equal(t, "Still here", doc.Blocks[0].Text())
		})
	}
}
