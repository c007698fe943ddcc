package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xhad/guidegen/internal/models"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// FrontMatter is the metadata block written at the top of markdown guides.
type FrontMatter struct {
	Title        string `yaml:"title"`
	Topic        string `yaml:"topic,omitempty"`
	Type         string `yaml:"type"`
	ID           string `yaml:"id,omitempty"`
	Created      string `yaml:"created"`
	Organization string `yaml:"organization,omitempty"`
	ContactEmail string `yaml:"contact_email,omitempty"`
	Website      string `yaml:"website,omitempty"`
	Streamed     bool   `yaml:"streamed"`
}

type Markdown struct{}

func NewMarkdown() *Markdown {
	return &Markdown{}
}

func (m *Markdown) Format() string    { return FormatMarkdown }
func (m *Markdown) Extension() string { return "md" }

// Export writes the front matter, a blank line and the body unmodified.
func (m *Markdown) Export(w io.Writer, guide models.Guide) error {
	meta := guide.Metadata
	header, err := yaml.Marshal(FrontMatter{
		Title:        meta.Title,
		Topic:        meta.Topic,
		Type:         string(meta.Type),
		ID:           meta.ID,
		Created:      meta.CreatedAt.Format(time.RFC3339),
		Organization: meta.OrganizationName,
		ContactEmail: meta.ContactEmail,
		Website:      meta.Website,
		Streamed:     meta.Streamed,
	})
	if err != nil {
		return fmt.Errorf("failed to encode front matter: %w", err)
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(frontMatterDelimiter + "\n")
	bw.Write(header)
	bw.WriteString(frontMatterDelimiter + "\n\n")
	bw.WriteString(guide.Content.Text)
	return bw.Flush()
}

// ReadFrontMatter splits a markdown guide into its front matter and body.
// A file without front matter returns a zero FrontMatter and the whole text.
func ReadFrontMatter(r io.Reader) (FrontMatter, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return FrontMatter{}, "", err
	}
	text := string(data)

	if !strings.HasPrefix(text, frontMatterDelimiter+"\n") {
		return FrontMatter{}, text, nil
	}
	rest := text[len(frontMatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelimiter+"\n")
	if end < 0 {
		return FrontMatter{}, text, nil
	}

	var fm FrontMatter
	if err := yaml.NewDecoder(bytes.NewReader([]byte(rest[:end+1]))).Decode(&fm); err != nil && err != io.EOF {
		return FrontMatter{}, text, fmt.Errorf("invalid front matter: %w", err)
	}

	body := rest[end+len(frontMatterDelimiter)+2:]
	body = strings.TrimPrefix(body, "\n")
	return fm, body, nil
}
