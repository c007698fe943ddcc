package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/pkg/llm"
)

func TestBuildTopicPrompt(t *testing.T) {
	prompt := llm.BuildTopicPrompt("VoiceOver rotor navigation", llm.PromptOptions{}, nil)

	assert.Contains(t, prompt.System, "assistive technology trainer at MyVision Oxfordshire")
	assert.Contains(t, prompt.User, "Create a comprehensive learning guide for: VoiceOver rotor navigation")
	assert.Contains(t, prompt.User, "# Voiceover Rotor Navigation - Learning Guide")
	for _, section := range []string{
		"## Learning Objectives",
		"## Prerequisites",
		"## Step-by-Step Instructions",
		"## Practice Activities",
		"## Troubleshooting",
		"## Next Steps",
	} {
		assert.Contains(t, prompt.User, section)
	}
	assert.NotContains(t, prompt.User, "IMPORTANT:")
}

func TestBuildTopicPrompt_Thinking(t *testing.T) {
	tests := []struct {
		detail string
		want   string
	}{
		{llm.ThinkingDetailed, "Show your complete thought process"},
		{llm.ThinkingExpert, "expert-level educational reasoning"},
		{llm.ThinkingBasic, "Think out loud as you create this guide"},
		{"unknown", "Think out loud as you create this guide"},
	}

	for _, tt := range tests {
		t.Run(tt.detail, func(t *testing.T) {
			prompt := llm.BuildTopicPrompt("NVDA", llm.PromptOptions{ThinkAloud: true, Detail: tt.detail}, nil)
			assert.Contains(t, prompt.User, tt.want)
		})
	}
}

func TestBuildTopicPrompt_References(t *testing.T) {
	refs := []models.Reference{
		{URL: "https://example.com/jaws", Title: "JAWS Keys", Content: "Insert is the JAWS key."},
		{URL: "https://example.com/untitled", Content: "More text."},
	}

	prompt := llm.BuildTopicPrompt("JAWS", llm.PromptOptions{Organization: "Sight Club"}, refs)

	assert.Contains(t, prompt.System, "trainer at Sight Club")
	assert.Contains(t, prompt.User, "[1] JAWS Keys (https://example.com/jaws)\nInsert is the JAWS key.")
	assert.Contains(t, prompt.User, "[2] https://example.com/untitled (https://example.com/untitled)")
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Setting Up Jaws Screen Reader On Windows", llm.TitleCase("Setting up JAWS screen reader on Windows"))
}
