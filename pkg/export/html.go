package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	texttemplate "text/template"

	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/pkg/document"
	"github.com/xhad/guidegen/pkg/render"
	"github.com/yuin/goldmark"
)

var pageTemplate = template.Must(template.New("guide").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header>
{{- if .Logo}}
<img class="logo" src="{{.Logo}}" alt="{{.Organization}} logo">
{{- end}}
<p class="title">{{.Title}}</p>
<p class="organization">{{.Organization}}</p>
<p class="generated">{{.Generated}}</p>
<p class="separator" aria-hidden="true">{{.Separator}}</p>
</header>
<main>
{{.Body}}
</main>
<footer>
<p class="separator" aria-hidden="true">{{.Separator}}</p>
<p class="contact">{{.Organization}}<br>Email: <a href="mailto:{{.Email}}">{{.Email}}</a><br>Web: {{.Website}}</p>
{{- if .Notice}}
<p class="notice">{{.Notice}}</p>
{{- end}}
</footer>
</body>
</html>
`))

var cssTemplate = texttemplate.Must(texttemplate.New("css").Parse(`body { font-family: "{{.FontFamily}}", sans-serif; font-size: {{.BodyFontSize}}pt; line-height: {{.LineSpacing}}; color: #{{.TextColor.Hex}}; background: #FFFFFF; max-width: 48em; margin: 0 auto; padding: 1em; }
p, li { margin: 0 0 {{.ParagraphSpacing}}pt 0; }
li { margin-bottom: 3pt; }
ul, ol { padding-left: 0.25in; margin-left: 1em; }
h1, h2, h3 { color: #{{.HeadingColor.Hex}}; margin: 18pt 0 12pt 0; line-height: 1.2; }
h1 { font-size: {{.Heading1Size}}pt; }
h2 { font-size: {{.Heading2Size}}pt; }
h3 { font-size: {{.Heading3Size}}pt; }
header, footer { text-align: center; }
.logo { width: 2in; height: auto; }
.title { font-size: {{.TitleSize}}pt; font-weight: bold; color: #{{.HeadingColor.Hex}}; }
.organization { font-style: italic; color: #{{.MutedColor.Hex}}; }
.generated, .contact { font-size: {{.SmallSize}}pt; color: #{{.MutedColor.Hex}}; }
.separator { color: #{{.AccentColor.Hex}}; }
.notice { font-size: {{.NoticeSize}}pt; font-style: italic; color: #{{.NoticeColor.Hex}}; }
a { color: #{{.HeadingColor.Hex}}; }
`))

// HTML writes a standalone web page: the body converted with goldmark,
// wrapped in the same header and footer as the Word document.
type HTML struct {
	renderer *render.Renderer
	md       goldmark.Markdown
}

func NewHTML(r *render.Renderer) *HTML {
	return &HTML{renderer: r, md: goldmark.New()}
}

func (h *HTML) Format() string    { return FormatHTML }
func (h *HTML) Extension() string { return "html" }

type cssData struct {
	render.StyleProfile
	TitleSize  float64
	SmallSize  float64
	NoticeSize float64
}

type pageData struct {
	Title        string
	Organization string
	Email        string
	Website      string
	Generated    string
	Separator    string
	Notice       string
	Logo         template.URL
	CSS          template.CSS
	Body         template.HTML
}

func (h *HTML) Export(w io.Writer, guide models.Guide) error {
	if h.renderer == nil {
		return fmt.Errorf("html export: no renderer configured")
	}
	doc := h.renderer.Render(guide.Content.Text, guide.Metadata)

	var body bytes.Buffer
	if err := h.md.Convert([]byte(guide.Content.Text), &body); err != nil {
		return fmt.Errorf("html export: convert markdown: %w", err)
	}

	var css bytes.Buffer
	if err := cssTemplate.Execute(&css, cssData{
		StyleProfile: h.renderer.Profile(),
		TitleSize:    runSize(doc.Header.Title),
		SmallSize:    runSize(doc.Header.Generated),
		NoticeSize:   noticeSize(doc.Footer.Notice),
	}); err != nil {
		return fmt.Errorf("html export: build stylesheet: %w", err)
	}

	data := pageData{
		Title:        doc.Header.Title.Text(),
		Organization: guide.Metadata.OrganizationName,
		Email:        guide.Metadata.ContactEmail,
		Website:      guide.Metadata.Website,
		Generated:    doc.Header.Generated.Text(),
		Separator:    doc.Header.Separator.Text(),
		CSS:          template.CSS(css.String()),
		Body:         template.HTML(body.String()),
	}
	if doc.Footer.Notice != nil {
		data.Notice = doc.Footer.Notice.Text()
	}
	if logo := doc.Header.Logo; logo != nil {
		data.Logo = template.URL("data:image/" + logo.Format + ";base64," + base64.StdEncoding.EncodeToString(logo.Data))
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("html export: %w", err)
	}
	return nil
}

func runSize(p document.Paragraph) float64 {
	if len(p.Runs) == 0 {
		return 0
	}
	return p.Runs[0].Font.Size
}

func noticeSize(p *document.Paragraph) float64 {
	if p == nil {
		return 0
	}
	return runSize(*p)
}
