// Package export writes guides to the supported file formats.
package export

import (
	"fmt"
	"sort"

	"github.com/xhad/guidegen/internal/types"
	"github.com/xhad/guidegen/pkg/render"
)

const (
	FormatMarkdown = "markdown"
	FormatDocx     = "docx"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

var constructors = map[string]func(*render.Renderer) types.Exporter{
	FormatMarkdown: func(*render.Renderer) types.Exporter { return NewMarkdown() },
	FormatDocx:     func(r *render.Renderer) types.Exporter { return NewDocx(r) },
	FormatHTML:     func(r *render.Renderer) types.Exporter { return NewHTML(r) },
	FormatPDF:      func(r *render.Renderer) types.Exporter { return NewPDF(r) },
}

// aliases accepted on the command line and in configuration
var aliases = map[string]string{
	"md":   FormatMarkdown,
	"word": FormatDocx,
	"htm":  FormatHTML,
}

// New returns the exporter for format.
func New(format string, r *render.Renderer) (types.Exporter, error) {
	if canonical, ok := aliases[format]; ok {
		format = canonical
	}
	ctor, ok := constructors[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q (supported: %v)", format, Formats())
	}
	return ctor(r), nil
}

// Formats lists the supported format names.
func Formats() []string {
	formats := make([]string, 0, len(constructors))
	for f := range constructors {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Supported reports whether format (or one of its aliases) can be exported.
func Supported(format string) bool {
	_, err := New(format, nil)
	return err == nil
}
