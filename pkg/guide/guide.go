// Package guide runs the guide pipeline: prompt, generation, accumulation
// and storage.
package guide

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/internal/types"
	"github.com/xhad/guidegen/pkg/accumulator"
	"github.com/xhad/guidegen/pkg/export"
	"github.com/xhad/guidegen/pkg/llm"
	"github.com/xhad/guidegen/pkg/processor"
	"github.com/xhad/guidegen/pkg/render"
)

var (
	ErrEmptyTopic  = errors.New("topic is empty")
	ErrNoContent   = errors.New("no content received from the generation service")
	ErrNoGenerator = errors.New("no generation service configured")
)

// Stage names reported through Request.OnStage.
const (
	StageReferences = "references"
	StageGenerating = "generating"
	StageFallback   = "fallback"
	StageSaving     = "saving"
)

// ReferenceFetcher fetches reference pages for a topic.
type ReferenceFetcher interface {
	Scrape(ctx context.Context, url string) ([]models.Reference, error)
}

type Organization struct {
	Name         string
	ContactEmail string
	Website      string
}

type ServiceConfig struct {
	// Generator may be nil for a service that only saves finished text.
	Generator llm.Generator
	Store     types.GuideStore
	Renderer  *render.Renderer
	Prompt    llm.PromptOptions

	Streaming bool
	Fallback  bool
	Grouping  accumulator.Grouping

	Organization Organization

	// optional
	Fetcher   ReferenceFetcher
	Processor *processor.Processor
	Now       func() time.Time
	Log       logrus.FieldLogger
}

type Service struct {
	config ServiceConfig
}

func NewWithConfig(config ServiceConfig) (*Service, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("guide service needs a store")
	}
	if config.Renderer == nil {
		return nil, fmt.Errorf("guide service needs a renderer")
	}
	if config.Processor == nil {
		p := processor.NewWithConfig(processor.ProcessorConfig{})
		config.Processor = &p
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Log == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		config.Log = log
	}
	if config.Prompt.Organization == "" {
		config.Prompt.Organization = config.Organization.Name
	}
	return &Service{config: config}, nil
}

type Request struct {
	Topic  string
	Format string
	// ReferenceURLs are scraped and condensed into the prompt.
	ReferenceURLs []string
	References    []models.Reference
	// Sink receives the text while it streams. It may be nil and is not
	// closed by the service.
	Sink    types.Sink
	OnStage func(stage string)
}

type Result struct {
	Path       string
	Guide      models.Guide
	Streamed   bool
	FellBack   bool
	References int
	Elapsed    time.Duration
}

// GenerateTopicGuide produces a learning guide for req.Topic and saves it in
// req.Format. When streaming fails and fallback is enabled, one
// non-streaming request replaces the stream.
func (s *Service) GenerateTopicGuide(ctx context.Context, req Request) (Result, error) {
	start := s.config.Now()

	if s.config.Generator == nil {
		return Result{}, ErrNoGenerator
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return Result{}, ErrEmptyTopic
	}
	exporter, err := export.New(req.Format, s.config.Renderer)
	if err != nil {
		return Result{}, err
	}

	refs, err := s.references(ctx, req)
	if err != nil {
		return Result{}, err
	}

	prompt := llm.BuildTopicPrompt(topic, s.config.Prompt, refs)
	result := Result{References: len(refs)}

	stage(req, StageGenerating)
	var content models.GeneratedContent
	if s.config.Streaming {
		content, err = s.stream(ctx, prompt, req.Sink)
		if err == nil && strings.TrimSpace(content.Text) == "" {
			err = &accumulator.StreamError{Partial: content, Err: ErrNoContent}
		}
		result.Streamed = err == nil
		var streamErr *accumulator.StreamError
		if err != nil && s.config.Fallback && ctx.Err() == nil && (errors.As(err, &streamErr) || isGenerationError(err)) {
			s.config.Log.WithFields(logrus.Fields{
				"topic": topic,
				"error": err,
			}).Warn("streaming failed, falling back to a single request")
			stage(req, StageFallback)
			result.FellBack = true
			content, err = s.generate(ctx, prompt)
		}
	} else {
		content, err = s.generate(ctx, prompt)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate guide: %w", err)
	}
	if strings.TrimSpace(content.Text) == "" {
		return Result{}, ErrNoContent
	}

	guide := models.Guide{
		Content: content,
		Metadata: s.metadata(models.DocumentMetadata{
			Type:     models.GuideLearning,
			Title:    llm.TitleCase(topic) + " - Learning Guide",
			Topic:    topic,
			Streamed: result.Streamed,
		}),
	}

	stage(req, StageSaving)
	path, err := s.config.Store.Save(ctx, guide, exporter)
	if err != nil {
		return Result{}, err
	}

	s.config.Log.WithFields(logrus.Fields{
		"topic":     topic,
		"format":    exporter.Format(),
		"streamed":  result.Streamed,
		"fell_back": result.FellBack,
		"bytes":     len(content.Text),
	}).Info("guide generated")

	result.Path = path
	result.Guide = guide
	result.Elapsed = s.config.Now().Sub(start)
	return result, nil
}

// SaveContent stores finished text without calling the generation service.
func (s *Service) SaveContent(ctx context.Context, text string, meta models.DocumentMetadata, format string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}
	exporter, err := export.New(format, s.config.Renderer)
	if err != nil {
		return "", err
	}
	if meta.Type == "" {
		meta.Type = models.GuideLearning
	}
	guide := models.Guide{
		Content:  models.GeneratedContent{Text: text, IsComplete: true},
		Metadata: s.metadata(meta),
	}
	return s.config.Store.Save(ctx, guide, exporter)
}

func (s *Service) metadata(meta models.DocumentMetadata) models.DocumentMetadata {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.OrganizationName == "" {
		meta.OrganizationName = s.config.Organization.Name
	}
	if meta.ContactEmail == "" {
		meta.ContactEmail = s.config.Organization.ContactEmail
	}
	if meta.Website == "" {
		meta.Website = s.config.Organization.Website
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.config.Now()
	}
	return meta
}

func (s *Service) references(ctx context.Context, req Request) ([]models.Reference, error) {
	refs := req.References
	if len(req.ReferenceURLs) > 0 {
		if s.config.Fetcher == nil {
			return nil, fmt.Errorf("reference URLs given but no fetcher is configured")
		}
		stage(req, StageReferences)
		for _, u := range req.ReferenceURLs {
			fetched, err := s.config.Fetcher.Scrape(ctx, u)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch reference %s: %w", u, err)
			}
			refs = append(refs, fetched...)
		}
	}
	if len(refs) == 0 {
		return nil, nil
	}
	return s.config.Processor.Process(refs), nil
}

func (s *Service) stream(ctx context.Context, prompt llm.Prompt, sink types.Sink) (models.GeneratedContent, error) {
	chunks, err := s.config.Generator.Stream(ctx, prompt)
	if err != nil {
		return models.GeneratedContent{}, err
	}
	acc := accumulator.New(accumulator.Options{Grouping: s.config.Grouping})
	return acc.Drain(ctx, chunks, sink)
}

func (s *Service) generate(ctx context.Context, prompt llm.Prompt) (models.GeneratedContent, error) {
	text, err := s.config.Generator.Generate(ctx, prompt)
	if err != nil {
		return models.GeneratedContent{}, err
	}
	return models.GeneratedContent{Text: text, IsComplete: true}, nil
}

func isGenerationError(err error) bool {
	var genErr *llm.GenerationError
	return errors.As(err, &genErr)
}

func stage(req Request, name string) {
	if req.OnStage != nil {
		req.OnStage(name)
	}
}
