package llm

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
)

const offlineGuide = `# Offline Learning Guide

This guide was produced without contacting a generation service.

## Learning Objectives
- Confirm that the guide pipeline works end to end
- Check the **large print** formatting of the saved document

## Prerequisites
- No network connection is required

## Step-by-Step Instructions
1. Open the saved document in your word processor
2. Press **Control + Home** to move to the top
3. Read each heading with your screen reader

## Next Steps
Set ANTHROPIC_API_KEY and run the command again for a full guide.
`

// ScriptedConfig controls what a ScriptedGenerator replays.
type ScriptedConfig struct {
	Text         string        // defaults to a short offline guide
	Fragments    []string      // used as-is instead of splitting Text
	FragmentSize int           // runes per fragment when splitting Text
	Delay        time.Duration // pause between fragments

	StreamErr   error // sent after FailAfter fragments
	FailAfter   int
	FailStreams int // number of Stream calls that fail; 0 means all of them

	GenerateErr error
}

// ScriptedGenerator replays canned text. It backs the offline provider and
// the tests of everything downstream of a Generator.
type ScriptedGenerator struct {
	config        ScriptedConfig
	streamCalls   atomic.Int32
	generateCalls atomic.Int32
}

func NewScriptedGenerator(config ScriptedConfig) *ScriptedGenerator {
	if config.Text == "" && config.Fragments == nil {
		config.Text = offlineGuide
	}
	if config.FragmentSize <= 0 {
		config.FragmentSize = 16
	}
	return &ScriptedGenerator{config: config}
}

func (s *ScriptedGenerator) Generate(ctx context.Context, _ Prompt) (string, error) {
	s.generateCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.config.GenerateErr != nil {
		return "", s.config.GenerateErr
	}
	return strings.Join(s.fragments(), ""), nil
}

func (s *ScriptedGenerator) Stream(ctx context.Context, _ Prompt) (<-chan Chunk, error) {
	call := int(s.streamCalls.Add(1))
	fail := s.config.StreamErr != nil && (s.config.FailStreams == 0 || call <= s.config.FailStreams)

	out := make(chan Chunk)
	go func() {
		defer close(out)
		for i, f := range s.fragments() {
			if fail && i == s.config.FailAfter {
				break
			}
			if i > 0 && s.config.Delay > 0 {
				select {
				case <-time.After(s.config.Delay):
				case <-ctx.Done():
					return
				}
			}
			if !sendChunk(ctx, out, Chunk{Text: f}) {
				return
			}
		}
		if fail {
			sendChunk(ctx, out, Chunk{Err: s.config.StreamErr})
		}
	}()
	return out, nil
}

// StreamCalls returns how many times Stream has been called.
func (s *ScriptedGenerator) StreamCalls() int { return int(s.streamCalls.Load()) }

// GenerateCalls returns how many times Generate has been called.
func (s *ScriptedGenerator) GenerateCalls() int { return int(s.generateCalls.Load()) }

func (s *ScriptedGenerator) fragments() []string {
	if s.config.Fragments != nil {
		return s.config.Fragments
	}
	runes := []rune(s.config.Text)
	var parts []string
	for start := 0; start < len(runes); start += s.config.FragmentSize {
		end := min(start+s.config.FragmentSize, len(runes))
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
