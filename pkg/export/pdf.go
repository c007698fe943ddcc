package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/pkg/render"
	"pkt.systems/mdf"
	"pkt.systems/mdf/pdf"
)

// PDF typesets the guide with mdf's PDF renderer on a white page with
// black text, using the embedded Unicode fonts.
type PDF struct {
	renderer *render.Renderer
}

func NewPDF(r *render.Renderer) *PDF {
	return &PDF{renderer: r}
}

func (p *PDF) Format() string    { return FormatPDF }
func (p *PDF) Extension() string { return "pdf" }

func (p *PDF) Export(w io.Writer, guide models.Guide) error {
	if p.renderer == nil {
		return fmt.Errorf("pdf export: no renderer configured")
	}
	profile := p.renderer.Profile()
	doc := p.renderer.Render(guide.Content.Text, guide.Metadata)

	regular, bold, italic, boldItalic, err := pdf.EmbeddedHackFonts()
	if err != nil {
		return fmt.Errorf("pdf export: %w", err)
	}

	cfg := pdf.DefaultConfig()
	cfg.Margin = 54
	cfg.FontFamily = pdf.EmbeddedFontFamily
	cfg.RegularFontBytes = regular
	cfg.BoldFontBytes = bold
	cfg.ItalicFontBytes = italic
	cfg.BoldItalicFontBytes = boldItalic
	cfg.FontSize = profile.BodyFontSize
	cfg.LineHeight = 1.2 * profile.LineSpacing
	cfg.HeadingScale[0] = profile.Heading1Size / profile.BodyFontSize
	cfg.HeadingScale[1] = profile.Heading2Size / profile.BodyFontSize
	cfg.HeadingScale[2] = profile.Heading3Size / profile.BodyFontSize
	cfg.Boring = true
	if logo := doc.Header.Logo; logo != nil {
		cfg.CornerImagePath = logo.Path
		cfg.CornerImageMaxWidth = 144
		cfg.CornerImageMaxHeight = 144
	}

	var src strings.Builder
	fmt.Fprintf(&src, "# %s\n\n", doc.Header.Title.Text())
	fmt.Fprintf(&src, "*%s*\n\n", doc.Header.Organization.Text())
	fmt.Fprintf(&src, "%s\n\n", doc.Header.Generated.Text())
	fmt.Fprintf(&src, "%s\n\n", doc.Header.Separator.Text())
	src.WriteString(strings.TrimRight(guide.Content.Text, "\n"))
	src.WriteString("\n\n")
	fmt.Fprintf(&src, "%s\n\n", doc.Footer.Separator.Text())
	for _, line := range strings.Split(doc.Footer.Contact.Text(), "\n") {
		fmt.Fprintf(&src, "%s  \n", line)
	}
	if doc.Footer.Notice != nil {
		fmt.Fprintf(&src, "\n*%s*\n", doc.Footer.Notice.Text())
	}

	if err := pdf.Render(pdf.RenderRequest{
		Reader: strings.NewReader(src.String()),
		Writer: w,
		Theme:  mdf.DefaultTheme(),
		Config: cfg,
	}); err != nil {
		return fmt.Errorf("pdf export: %w", err)
	}
	return nil
}
