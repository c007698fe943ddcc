package processor

import (
	"strings"

	"github.com/xhad/guidegen/internal/models"
)

type ProcessorConfig struct {
	ChunkSize      int // characters per chunk
	MaxChunks      int // chunks kept per reference
	MinChunkLength int
	MaxReferences  int
}

type Processor struct {
	config ProcessorConfig
}

var sentenceEnders = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.MaxChunks == 0 {
		config.MaxChunks = 4
	}
	if config.MinChunkLength == 0 {
		config.MinChunkLength = 40
	}
	if config.MaxReferences == 0 {
		config.MaxReferences = 5
	}

	return Processor{
		config: config,
	}
}

// Process condenses scraped references so they fit into a prompt. Each
// reference keeps at most MaxChunks chunks of whole sentences.
func (p *Processor) Process(refs []models.Reference) []models.Reference {
	var processed []models.Reference

	for _, ref := range refs {
		if len(processed) == p.config.MaxReferences {
			break
		}

		chunks := p.splitIntoChunks(CleanText(ref.Content))
		if len(chunks) == 0 {
			continue
		}
		if len(chunks) > p.config.MaxChunks {
			chunks = chunks[:p.config.MaxChunks]
		}

		processed = append(processed, models.Reference{
			URL:     ref.URL,
			Title:   CleanText(ref.Title),
			Content: strings.Join(chunks, "\n"),
		})
	}

	return processed
}

// CleanText collapses runs of whitespace into single spaces.
func CleanText(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}

func (p *Processor) splitIntoChunks(text string) []string {
	var chunks []string

	currentChunk := strings.Builder{}

	for _, sentence := range SplitSentences(text) {
		if currentChunk.Len() > 0 && currentChunk.Len()+len(sentence) > p.config.ChunkSize {
			if currentChunk.Len() >= p.config.MinChunkLength {
				chunks = append(chunks, strings.TrimSpace(currentChunk.String()))
			}
			currentChunk.Reset()
		}

		currentChunk.WriteString(sentence)
		currentChunk.WriteString(" ")
	}

	if currentChunk.Len() >= p.config.MinChunkLength {
		chunks = append(chunks, strings.TrimSpace(currentChunk.String()))
	}

	return chunks
}

// SplitSentences splits text after every sentence terminator.
func SplitSentences(text string) []string {
	var sentences []string

	current := strings.Builder{}

	for i := 0; i < len(text); i++ {
		current.WriteByte(text[i])

		for _, ender := range sentenceEnders {
			if strings.HasSuffix(current.String(), ender) {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
				break
			}
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// SentenceBoundary returns the offset just past the last sentence terminator
// or newline in s, or -1 when s holds no complete sentence.
func SentenceBoundary(s string) int {
	best := -1
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		best = i + 1
	}
	for _, ender := range sentenceEnders {
		if i := strings.LastIndex(s, ender); i >= 0 && i+len(ender) > best {
			best = i + len(ender)
		}
	}
	return best
}

// ParagraphBoundary returns the offset just past the last blank line in s,
// or -1.
func ParagraphBoundary(s string) int {
	i := strings.LastIndex(s, "\n\n")
	if i < 0 {
		return -1
	}
	return i + 2
}
