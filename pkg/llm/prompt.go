package llm

import (
	"fmt"
	"strings"

	"github.com/xhad/guidegen/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ThinkingBasic    = "basic"
	ThinkingDetailed = "detailed"
	ThinkingExpert   = "expert"
)

const systemTemplate = `You are an expert assistive technology trainer at %s
with 15+ years of experience helping people with visual impairments.

Your expertise includes:
- All major screen readers (VoiceOver, JAWS, NVDA, TalkBack)
- Magnification software and tools
- Voice control systems
- Mobile and desktop accessibility features

Your teaching philosophy:
- Start with empathy and encouragement
- Break complex concepts into manageable steps
- Use clear, jargon-free language
- Provide context for why each step matters
- Include practical tips and troubleshooting

Your goal is to create learning guides that empower independence
and build confidence with assistive technology.`

const topicTemplate = `Create a comprehensive learning guide for: %s

Structure your guide with these sections:

# %s - Learning Guide

## Learning Objectives
What the learner will accomplish by completing this guide

## Prerequisites
What they should know or have set up before starting

## Step-by-Step Instructions
Detailed, numbered steps with clear explanations
Include specific gesture commands, keyboard shortcuts, or menu paths

## Practice Activities
Hands-on exercises to reinforce the learning

## Troubleshooting
Common issues and how to resolve them

## Next Steps
What to learn next to build on this foundation

Guidelines:
- Use encouraging, supportive language throughout
- Explain WHY steps are important, not just HOW
- Include specific examples and scenarios
- Consider the emotional journey of learning new technology
- Use active voice and clear instructions`

var thinkingInstructions = map[string]string{
	ThinkingDetailed: `IMPORTANT: Show your complete thought process as you work.

Think out loud about:
- How you analyze this topic and its complexity
- What you know about the target audience
- Your pedagogical decisions and why you make them
- How you structure content for maximum learning
- What examples and activities would be most effective

Format your thinking clearly, then create the guide.`,
	ThinkingExpert: `IMPORTANT: Demonstrate expert-level educational reasoning.

Show your complete analysis including:
- Topic complexity assessment and prerequisite mapping
- Learner persona analysis and accessibility considerations
- Cognitive load management and chunking strategies
- Multi-modal learning approach selection
- Common failure points and mitigation strategies
- Assessment and practice activity design rationale

Provide deep insight into your educational decision-making process.`,
	ThinkingBasic: `IMPORTANT: Think out loud as you create this guide.

Show me your reasoning about:
- What makes this topic challenging for learners
- How you'll structure the content
- Why you choose specific examples

Then create the guide based on your analysis.`,
}

type PromptOptions struct {
	Organization string
	ThinkAloud   bool
	Detail       string // basic, detailed or expert
}

// BuildTopicPrompt assembles the trainer system prompt and the guide request
// for topic. References, when present, are appended as source material.
func BuildTopicPrompt(topic string, opts PromptOptions, refs []models.Reference) Prompt {
	org := opts.Organization
	if org == "" {
		org = "MyVision Oxfordshire"
	}

	var user strings.Builder
	fmt.Fprintf(&user, topicTemplate, topic, TitleCase(topic))

	if opts.ThinkAloud {
		instruction, ok := thinkingInstructions[opts.Detail]
		if !ok {
			instruction = thinkingInstructions[ThinkingBasic]
		}
		user.WriteString("\n\n")
		user.WriteString(instruction)
	}

	if len(refs) > 0 {
		user.WriteString("\n\nUse the following reference material where it is accurate and relevant:\n")
		for i, ref := range refs {
			title := ref.Title
			if title == "" {
				title = ref.URL
			}
			fmt.Fprintf(&user, "\n[%d] %s (%s)\n%s\n", i+1, title, ref.URL, ref.Content)
		}
	}

	return Prompt{
		System: fmt.Sprintf(systemTemplate, org),
		User:   user.String(),
	}
}

// TitleCase capitalizes the first letter of every word and lowercases the rest.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}
