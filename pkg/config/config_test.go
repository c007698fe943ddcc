package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/guidegen/pkg/render"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OLLAMA_BASE_URL",
		"GUIDEGEN_PROVIDER", "GUIDEGEN_MODEL", "GUIDEGEN_OUTPUT_DIR",
		"MYVISION_STREAMING_ENABLED", "MYVISION_STREAMING_FALLBACK",
		"MYVISION_STREAMING_DELAY_MS", "MYVISION_STREAMING_RETRY",
		"MYVISION_STREAM_THINKING", "MYVISION_THINKING_DETAIL", "MYVISION_LARGE_PRINT",
		"MYVISION_BODY_FONT_SIZE", "MYVISION_H1_FONT_SIZE", "MYVISION_H2_FONT_SIZE",
		"MYVISION_H3_FONT_SIZE", "MYVISION_FONT", "MYVISION_LINE_SPACING",
		"MYVISION_PARAGRAPH_SPACING", "MYVISION_HIGH_CONTRAST", "MYVISION_ORG_NAME",
		"MYVISION_CONTACT_EMAIL", "MYVISION_WEBSITE", "MYVISION_LOGO_PATH",
		"GUIDEGEN_LOG_LEVEL", "GUIDEGEN_LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	clearEnv(t)
	config, err := getDefaultConfig()
	require.NoError(t, err)
	return config
}

func TestDefaults(t *testing.T) {
	config := defaultConfig(t)

	assert.Equal(t, "anthropic", config.LLM.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", config.LLM.Model)
	assert.Equal(t, 3000, config.LLM.MaxTokens)
	assert.Equal(t, 0.2, config.LLM.Temperature)
	assert.Equal(t, 2*time.Minute, config.LLM.Timeout)

	assert.True(t, config.Streaming.Enabled)
	assert.True(t, config.Streaming.Fallback)
	assert.True(t, config.Streaming.Retry)
	assert.Equal(t, 15, config.Streaming.DelayMS)
	assert.Equal(t, "detailed", config.Streaming.ThinkingDetail)

	assert.Equal(t, "docx", config.Output.Format)
	assert.Equal(t, "MyVision_Guides", filepath.Base(config.Output.Dir))

	assert.Equal(t, "MyVision Oxfordshire", config.Organization.Name)
	assert.Equal(t, "info@myvision.org.uk", config.Organization.ContactEmail)
	assert.Equal(t, "www.myvision.org.uk", config.Organization.Website)

	assert.True(t, config.Accessibility.LargePrint)
	assert.Equal(t, 18.0, config.Accessibility.BodyFontSize)
	assert.Equal(t, 24.0, config.Accessibility.Heading1Size)
	assert.Equal(t, 22.0, config.Accessibility.Heading2Size)
	assert.Equal(t, 20.0, config.Accessibility.Heading3Size)
	assert.Equal(t, "Arial", config.Accessibility.Font)
	assert.Equal(t, 1.15, config.Accessibility.LineSpacing)
	assert.Equal(t, 6.0, config.Accessibility.ParagraphSpacing)
	assert.False(t, config.Accessibility.HighContrast)

	assert.Equal(t, "markdown", config.UI.Display)
	assert.Equal(t, "default", config.UI.Theme)
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configData := `
llm:
  provider: ollama
  model: "llama3"
  max_tokens: 1000
  temperature: 0
  timeout: 45s

streaming:
  enabled: false
  delay_ms: 0
  grouping: paragraph

output:
  dir: /tmp/guides
  format: pdf

organization:
  name: "Sight Club"

accessibility:
  body_font_size: 20
  h1_font_size: 28
  h2_font_size: 25
  h3_font_size: 22
  high_contrast: true

scraper:
  max_depth: 0
  rate_limit: 1.5
  ignore_patterns:
    - "/test/"

log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(configData), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "ollama", config.LLM.Provider)
	assert.Equal(t, "llama3", config.LLM.Model)
	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.0, config.LLM.Temperature)
	assert.Equal(t, 45*time.Second, config.LLM.Timeout)

	assert.False(t, config.Streaming.Enabled)
	assert.True(t, config.Streaming.Fallback, "unset switches keep their default")
	assert.Equal(t, 0, config.Streaming.DelayMS)
	assert.Equal(t, "paragraph", config.Streaming.Grouping)

	assert.Equal(t, "/tmp/guides", config.Output.Dir)
	assert.Equal(t, "pdf", config.Output.Format)
	assert.Equal(t, "Sight Club", config.Organization.Name)
	assert.Equal(t, "info@myvision.org.uk", config.Organization.ContactEmail)
	assert.Equal(t, 20.0, config.Accessibility.BodyFontSize)
	assert.Equal(t, "boring", config.UI.Theme)
	assert.Equal(t, 0, config.Scraper.MaxDepth)
	assert.Equal(t, []string{"/test/"}, config.Scraper.IgnorePatterns)
	assert.Equal(t, "json", config.Log.Format)

	assert.Empty(t, config.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("llm: [unclosed"), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("GUIDEGEN_OUTPUT_DIR", "/srv/guides")
	t.Setenv("MYVISION_STREAMING_ENABLED", "false")
	t.Setenv("MYVISION_STREAMING_DELAY_MS", "40")
	t.Setenv("MYVISION_THINKING_DETAIL", "expert")
	t.Setenv("MYVISION_BODY_FONT_SIZE", "20")
	t.Setenv("MYVISION_H1_FONT_SIZE", "30")
	t.Setenv("MYVISION_FONT", "Verdana")
	t.Setenv("MYVISION_LINE_SPACING", "1.5")
	t.Setenv("MYVISION_HIGH_CONTRAST", "TRUE")
	t.Setenv("MYVISION_ORG_NAME", "Sight Club")
	t.Setenv("GUIDEGEN_LOG_LEVEL", "debug")

	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-test", config.LLM.APIKey)
	assert.Equal(t, "/srv/guides", config.Output.Dir)
	assert.False(t, config.Streaming.Enabled)
	assert.Equal(t, 40, config.Streaming.DelayMS)
	assert.Equal(t, "expert", config.Streaming.ThinkingDetail)
	assert.Equal(t, 20.0, config.Accessibility.BodyFontSize)
	assert.Equal(t, 30.0, config.Accessibility.Heading1Size)
	assert.Equal(t, "Verdana", config.Accessibility.Font)
	assert.Equal(t, 1.5, config.Accessibility.LineSpacing)
	assert.True(t, config.Accessibility.HighContrast)
	assert.Equal(t, "Sight Club", config.Organization.Name)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestEnvironmentOverrides_Provider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GUIDEGEN_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, "sk-openai", config.LLM.APIKey)
	assert.Equal(t, "gpt-4o", config.LLM.Model)
}

func TestEnvironmentOverrides_Malformed(t *testing.T) {
	clearEnv(t)
	t.Setenv("MYVISION_BODY_FONT_SIZE", "large")

	_, err := getDefaultConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MYVISION_BODY_FONT_SIZE")
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		fields []string
	}{
		{
			name:   "valid config",
			modify: func(c *Config) { c.LLM.APIKey = "sk-ant-test" },
		},
		{
			name:   "missing api key",
			modify: func(c *Config) {},
			fields: []string{"llm.api_key"},
		},
		{
			name: "offline needs no key",
			modify: func(c *Config) {
				c.LLM.Provider = "offline"
			},
		},
		{
			name: "bad llm settings",
			modify: func(c *Config) {
				c.LLM.APIKey = "k"
				c.LLM.MaxTokens = 0
				c.LLM.Temperature = 1.5
			},
			fields: []string{"llm.max_tokens", "llm.temperature"},
		},
		{
			name: "ollama url",
			modify: func(c *Config) {
				c.LLM.Provider = "ollama"
				c.LLM.BaseURL = "localhost"
			},
			fields: []string{"llm.base_url"},
		},
		{
			name: "unknown provider and format",
			modify: func(c *Config) {
				c.LLM.Provider = "carrier-pigeon"
				c.Output.Format = "rtf"
			},
			fields: []string{"llm.provider", "output.format"},
		},
		{
			name: "heading hierarchy",
			modify: func(c *Config) {
				c.LLM.APIKey = "k"
				c.Accessibility.Heading2Size = 24
			},
			fields: []string{"accessibility"},
		},
		{
			name: "large print floor",
			modify: func(c *Config) {
				c.LLM.APIKey = "k"
				c.Accessibility.BodyFontSize = 14
			},
			fields: []string{"accessibility.body_font_size"},
		},
		{
			name: "small print allowed without large print",
			modify: func(c *Config) {
				c.LLM.APIKey = "k"
				c.Accessibility.LargePrint = false
				c.Accessibility.BodyFontSize = 14
			},
		},
		{
			name: "streaming and ui",
			modify: func(c *Config) {
				c.LLM.APIKey = "k"
				c.Streaming.ThinkingDetail = "verbose"
				c.Streaming.Grouping = "word"
				c.UI.Display = "hologram"
				c.Scraper.AllowedExtensions = []string{"html"}
			},
			fields: []string{"streaming.thinking_detail", "streaming.grouping", "ui.display", "scraper.allowed_extensions"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaultConfig(t)
			tt.modify(config)

			var fields []string
			for _, err := range config.Validate() {
				fields = append(fields, err.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestFontFloorsFollowStyleProfile(t *testing.T) {
	tests := []struct {
		size       float64
		largePrint bool
		valid      bool
	}{
		{render.DefaultMinFontSize - 1, false, false},
		{render.DefaultMinFontSize, false, true},
		{render.DefaultLargePrintFloor - 1, true, false},
		{render.DefaultLargePrintFloor, true, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%gpt", tt.size), func(t *testing.T) {
			config := defaultConfig(t)
			config.LLM.APIKey = "k"
			config.Accessibility.LargePrint = tt.largePrint
			config.Accessibility.BodyFontSize = tt.size
			assert.Equal(t, tt.valid, len(config.Validate()) == 0)

			a := config.Accessibility
			profile, err := render.NewStyleProfile(render.StyleConfig{
				BodyFontSize:    a.BodyFontSize,
				Heading1Size:    a.Heading1Size,
				Heading2Size:    a.Heading2Size,
				Heading3Size:    a.Heading3Size,
				MinFontSize:     render.DefaultMinFontSize,
				LargePrintFloor: render.DefaultLargePrintFloor,
			})
			if tt.largePrint {
				require.NoError(t, err)
				assert.Equal(t, tt.valid, profile.LargePrint())
			} else {
				assert.Equal(t, tt.valid, err == nil)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := ValidationError{Field: "llm.api_key", Message: "ANTHROPIC_API_KEY is not set"}
	assert.Equal(t, "llm.api_key: ANTHROPIC_API_KEY is not set", err.Error())
}

func TestAccessibilityReport(t *testing.T) {
	config := defaultConfig(t)

	report := config.AccessibilityReport()
	assert.True(t, report.MeetsStandards)
	require.Len(t, report.Items, 3)
	assert.Equal(t, ReportItem{ReportPass, "Large print enabled (18pt body text)"}, report.Items[0])
	assert.Equal(t, ReportItem{ReportPass, "Accessible font selected (Arial)"}, report.Items[1])
	assert.Equal(t, ReportItem{ReportPass, "Good line spacing (1.15)"}, report.Items[2])
}

func TestAccessibilityReport_Failures(t *testing.T) {
	config := defaultConfig(t)
	config.Accessibility.BodyFontSize = 12
	config.Accessibility.Heading1Size = 18
	config.Accessibility.Heading2Size = 18
	config.Accessibility.Font = "Comic Sans MS"
	config.Accessibility.LineSpacing = 1.0
	config.Accessibility.HighContrast = true

	report := config.AccessibilityReport()
	assert.False(t, report.MeetsStandards)

	var messages []string
	levels := map[ReportLevel]int{}
	for _, item := range report.Items {
		messages = append(messages, item.Message)
		levels[item.Level]++
	}
	assert.Contains(t, messages, "Body font size (12pt) below large print minimum (18pt)")
	assert.Contains(t, messages, "H1 font size (18pt) should be at least 20pt")
	assert.Contains(t, messages, "Font 'Comic Sans MS' may not be optimal for accessibility")
	assert.Contains(t, messages, "Line spacing (1) below recommended minimum (1.15)")
	assert.Contains(t, messages, "H1 should be larger than H2 for clear hierarchy")
	assert.Contains(t, messages, "High contrast mode enabled for maximum visibility")
	assert.Equal(t, 2, levels[ReportWarn])
	assert.Equal(t, 5, levels[ReportFail])
}
