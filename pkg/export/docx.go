package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/common/units"
	"github.com/gomutex/godocx/docx"
	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/pkg/document"
	"github.com/xhad/guidegen/pkg/render"
)

// Paragraph style IDs of the default Word template.
const (
	styleListBullet = "ListBullet"
	styleListNumber = "ListNumber"
)

// Docx writes a Word document built from the rendered document.
type Docx struct {
	renderer *render.Renderer
}

func NewDocx(r *render.Renderer) *Docx {
	return &Docx{renderer: r}
}

func (d *Docx) Format() string    { return FormatDocx }
func (d *Docx) Extension() string { return "docx" }

func (d *Docx) Export(w io.Writer, guide models.Guide) error {
	if d.renderer == nil {
		return fmt.Errorf("docx export: no renderer configured")
	}
	doc := d.renderer.Render(guide.Content.Text, guide.Metadata)
	return WriteDocx(w, doc)
}

// WriteDocx writes doc as a .docx package. Headings use the template's
// Heading 1-3 styles so screen readers can navigate by outline level.
func WriteDocx(w io.Writer, doc *document.Document) error {
	rd, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("docx: new document: %w", err)
	}

	h := doc.Header
	if h.Logo != nil {
		if err := addLogo(rd, h.Logo); err != nil {
			return err
		}
	}
	for _, p := range []document.Paragraph{h.Title, h.Organization, h.Generated, h.Separator} {
		if err := addParagraph(rd, p.Style, p.Runs); err != nil {
			return err
		}
	}

	for _, block := range doc.Blocks {
		if err := addBlock(rd, block); err != nil {
			return err
		}
	}

	f := doc.Footer
	rd.AddEmptyParagraph()
	footer := []document.Paragraph{f.Separator, f.Contact}
	if f.Notice != nil {
		footer = append(footer, *f.Notice)
	}
	for _, p := range footer {
		if err := addParagraph(rd, p.Style, p.Runs); err != nil {
			return err
		}
	}

	return save(rd, w)
}

func addBlock(rd *docx.RootDoc, block document.Block) error {
	switch block.Kind {
	case document.KindHeading:
		p, err := rd.AddHeading("", uint(block.Level))
		if err != nil {
			return fmt.Errorf("docx: heading: %w", err)
		}
		addRuns(p, block.Runs)
		return nil
	case document.KindBullet:
		addRuns(rd.AddEmptyParagraph().Style(styleListBullet), block.Runs)
		return nil
	case document.KindNumbered:
		addRuns(rd.AddEmptyParagraph().Style(styleListNumber), block.Runs)
		return nil
	case document.KindSpacer:
		rd.AddEmptyParagraph()
		return nil
	default:
		return addParagraph(rd, block.Style, block.Runs)
	}
}

// addParagraph writes runs as one paragraph per line, since the contact
// block carries embedded newlines.
func addParagraph(rd *docx.RootDoc, style document.ParagraphStyle, runs []document.Run) error {
	for _, line := range splitRunLines(runs) {
		p := rd.AddEmptyParagraph()
		if style.Alignment == document.AlignCenter {
			if err := p.Justification("center"); err != nil {
				return fmt.Errorf("docx: alignment: %w", err)
			}
		}
		addRuns(p, line)
	}
	return nil
}

func addRuns(p *docx.Paragraph, runs []document.Run) {
	for _, run := range runs {
		r := p.AddText(run.Text)
		if run.Bold {
			r.Bold(true)
		}
		if run.Italic {
			r.Italic(true)
		}
		if run.Font.Family != "" {
			r.Font(run.Font.Family)
		}
		if run.Font.Size > 0 {
			r.Size(uint(math.Round(run.Font.Size)))
		}
		r.Color(run.Font.Color.Hex())
	}
}

// splitRunLines breaks runs at newlines into one slice of runs per line.
func splitRunLines(runs []document.Run) [][]document.Run {
	lines := [][]document.Run{nil}
	for _, run := range runs {
		for i, text := range strings.Split(run.Text, "\n") {
			if i > 0 {
				lines = append(lines, nil)
			}
			if text == "" {
				continue
			}
			part := run
			part.Text = text
			lines[len(lines)-1] = append(lines[len(lines)-1], part)
		}
	}
	return lines
}

func addLogo(rd *docx.RootDoc, img *document.Image) error {
	width := img.DisplayWidth
	height := width * float64(img.Height) / float64(img.Width)
	if _, err := rd.AddPicture(img.Path, units.Inch(width), units.Inch(height)); err != nil {
		return fmt.Errorf("docx: logo: %w", err)
	}
	return nil
}

// save goes through a temporary file because the document is written by
// path.
func save(rd *docx.RootDoc, w io.Writer) error {
	tmp, err := os.CreateTemp("", "guide-*.docx")
	if err != nil {
		return fmt.Errorf("docx: %w", err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(name)

	if err := rd.SaveTo(name); err != nil {
		return fmt.Errorf("docx: save: %w", err)
	}
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("docx: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("docx: copy: %w", err)
	}
	return nil
}
