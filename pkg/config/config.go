package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider    string        `yaml:"provider"`
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		Model       string        `yaml:"model"`
		MaxTokens   int           `yaml:"max_tokens"`
		Temperature float64       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Streaming struct {
		Enabled        bool   `yaml:"enabled"`
		Fallback       bool   `yaml:"fallback"`
		DelayMS        int    `yaml:"delay_ms"`
		Retry          bool   `yaml:"retry"`
		RetryAttempts  int    `yaml:"retry_attempts"`
		Thinking       bool   `yaml:"thinking"`
		ThinkingDetail string `yaml:"thinking_detail"`
		Grouping       string `yaml:"grouping"`
	} `yaml:"streaming"`

	Output struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"`
	} `yaml:"output"`

	Organization struct {
		Name         string `yaml:"name"`
		ContactEmail string `yaml:"contact_email"`
		Website      string `yaml:"website"`
		LogoPath     string `yaml:"logo_path"`
	} `yaml:"organization"`

	Accessibility struct {
		LargePrint       bool    `yaml:"large_print"`
		BodyFontSize     float64 `yaml:"body_font_size"`
		Heading1Size     float64 `yaml:"h1_font_size"`
		Heading2Size     float64 `yaml:"h2_font_size"`
		Heading3Size     float64 `yaml:"h3_font_size"`
		Font             string  `yaml:"font"`
		LineSpacing      float64 `yaml:"line_spacing"`
		ParagraphSpacing float64 `yaml:"paragraph_spacing"`
		HighContrast     bool    `yaml:"high_contrast"`
	} `yaml:"accessibility"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	UI struct {
		Display string `yaml:"display"` // plain, markdown or none
		Theme   string `yaml:"theme"`
		Width   int    `yaml:"width"`
	} `yaml:"ui"`

	Scraper struct {
		MaxDepth          int      `yaml:"max_depth"`
		MaxPages          int      `yaml:"max_pages"`
		RateLimit         float64  `yaml:"rate_limit"`
		IgnorePatterns    []string `yaml:"ignore_patterns"`
		AllowedExtensions []string `yaml:"allowed_extensions"`
		ChunkSize         int      `yaml:"chunk_size"`
		MaxReferences     int      `yaml:"max_references"`
	} `yaml:"scraper"`
}

// LoadConfig reads path, or the first config file found in the default
// locations, on top of the defaults. Environment variables override the
// file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		for _, loc := range Locations() {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := newConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if err := mergeWithEnv(config); err != nil {
		return nil, err
	}

	applyDefaults(config)

	return config, nil
}

// Locations lists the config files LoadConfig looks for, in order.
func Locations() []string {
	locations := []string{"config.yaml", "config.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config/guidegen/config.yaml"))
	}
	return append(locations, "/etc/guidegen/config.yaml")
}

func getDefaultConfig() (*Config, error) {
	config := newConfig()
	if err := mergeWithEnv(config); err != nil {
		return nil, err
	}
	applyDefaults(config)
	return config, nil
}

// newConfig returns a config with the defaults whose zero value is
// meaningful already set, so a file can still turn them off or to zero.
func newConfig() *Config {
	config := &Config{}
	config.Streaming.Enabled = true
	config.Streaming.Fallback = true
	config.Streaming.Retry = true
	config.Streaming.Thinking = true
	config.Streaming.DelayMS = 15
	config.LLM.Temperature = 0.2
	config.Scraper.MaxDepth = 1
	config.Accessibility.LargePrint = true
	return config
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = "anthropic"
	}
	if config.LLM.Model == "" {
		switch config.LLM.Provider {
		case "anthropic":
			config.LLM.Model = "claude-sonnet-4-20250514"
		case "openai":
			config.LLM.Model = "gpt-4o"
		case "ollama":
			config.LLM.Model = "mistral"
		}
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 3000
	}
	if config.LLM.Timeout == 0 {
		config.LLM.Timeout = 2 * time.Minute
	}
	if config.LLM.BaseURL == "" && config.LLM.Provider == "ollama" {
		config.LLM.BaseURL = "http://localhost:11434"
	}

	if config.Streaming.RetryAttempts == 0 {
		config.Streaming.RetryAttempts = 3
	}
	if config.Streaming.ThinkingDetail == "" {
		config.Streaming.ThinkingDetail = "detailed"
	}
	if config.Streaming.Grouping == "" {
		config.Streaming.Grouping = "sentence"
	}

	if config.Output.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		config.Output.Dir = filepath.Join(home, "Desktop", "MyVision_Guides")
	}
	if config.Output.Format == "" {
		config.Output.Format = "docx"
	}

	if config.Organization.Name == "" {
		config.Organization.Name = "MyVision Oxfordshire"
	}
	if config.Organization.ContactEmail == "" {
		config.Organization.ContactEmail = "info@myvision.org.uk"
	}
	if config.Organization.Website == "" {
		config.Organization.Website = "www.myvision.org.uk"
	}
	if config.Organization.LogoPath == "" {
		config.Organization.LogoPath = filepath.Join("assets", "myvision_Logo.png")
	}

	if config.Accessibility.BodyFontSize == 0 {
		config.Accessibility.BodyFontSize = 18
	}
	if config.Accessibility.Heading1Size == 0 {
		config.Accessibility.Heading1Size = 24
	}
	if config.Accessibility.Heading2Size == 0 {
		config.Accessibility.Heading2Size = 22
	}
	if config.Accessibility.Heading3Size == 0 {
		config.Accessibility.Heading3Size = 20
	}
	if config.Accessibility.Font == "" {
		config.Accessibility.Font = "Arial"
	}
	if config.Accessibility.LineSpacing == 0 {
		config.Accessibility.LineSpacing = 1.15
	}
	if config.Accessibility.ParagraphSpacing == 0 {
		config.Accessibility.ParagraphSpacing = 6
	}

	if config.Log.Level == "" {
		config.Log.Level = "warn"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if config.UI.Display == "" {
		config.UI.Display = "markdown"
	}
	if config.UI.Theme == "" {
		config.UI.Theme = "default"
	}
	if config.UI.Theme == "default" && config.Accessibility.HighContrast {
		config.UI.Theme = "boring"
	}

	if config.Scraper.MaxPages == 0 {
		config.Scraper.MaxPages = 10
	}
	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if len(config.Scraper.AllowedExtensions) == 0 {
		config.Scraper.AllowedExtensions = []string{".html", ".htm", "/", ""}
	}
	if config.Scraper.ChunkSize == 0 {
		config.Scraper.ChunkSize = 1000
	}
	if config.Scraper.MaxReferences == 0 {
		config.Scraper.MaxReferences = 5
	}
}

// mergeWithEnv applies environment overrides. A variable that is set but
// cannot be parsed is an error rather than silently ignored.
func mergeWithEnv(config *Config) error {
	env := envReader{}

	if provider := os.Getenv("GUIDEGEN_PROVIDER"); provider != "" {
		config.LLM.Provider = strings.ToLower(provider)
	}
	env.str("GUIDEGEN_MODEL", &config.LLM.Model)
	env.str("OLLAMA_BASE_URL", &config.LLM.BaseURL)
	if config.LLM.APIKey == "" {
		switch config.LLM.Provider {
		case "openai":
			env.str("OPENAI_API_KEY", &config.LLM.APIKey)
		case "", "anthropic":
			env.str("ANTHROPIC_API_KEY", &config.LLM.APIKey)
		}
	}

	env.boolean("MYVISION_STREAMING_ENABLED", &config.Streaming.Enabled)
	env.boolean("MYVISION_STREAMING_FALLBACK", &config.Streaming.Fallback)
	env.integer("MYVISION_STREAMING_DELAY_MS", &config.Streaming.DelayMS)
	env.boolean("MYVISION_STREAMING_RETRY", &config.Streaming.Retry)
	env.boolean("MYVISION_STREAM_THINKING", &config.Streaming.Thinking)
	env.str("MYVISION_THINKING_DETAIL", &config.Streaming.ThinkingDetail)

	env.str("GUIDEGEN_OUTPUT_DIR", &config.Output.Dir)

	env.str("MYVISION_ORG_NAME", &config.Organization.Name)
	env.str("MYVISION_CONTACT_EMAIL", &config.Organization.ContactEmail)
	env.str("MYVISION_WEBSITE", &config.Organization.Website)
	env.str("MYVISION_LOGO_PATH", &config.Organization.LogoPath)

	env.boolean("MYVISION_LARGE_PRINT", &config.Accessibility.LargePrint)
	env.float("MYVISION_BODY_FONT_SIZE", &config.Accessibility.BodyFontSize)
	env.float("MYVISION_H1_FONT_SIZE", &config.Accessibility.Heading1Size)
	env.float("MYVISION_H2_FONT_SIZE", &config.Accessibility.Heading2Size)
	env.float("MYVISION_H3_FONT_SIZE", &config.Accessibility.Heading3Size)
	env.str("MYVISION_FONT", &config.Accessibility.Font)
	env.float("MYVISION_LINE_SPACING", &config.Accessibility.LineSpacing)
	env.float("MYVISION_PARAGRAPH_SPACING", &config.Accessibility.ParagraphSpacing)
	env.boolean("MYVISION_HIGH_CONTRAST", &config.Accessibility.HighContrast)

	env.str("GUIDEGEN_LOG_LEVEL", &config.Log.Level)
	env.str("GUIDEGEN_LOG_FORMAT", &config.Log.Format)
	env.str("GUIDEGEN_DISPLAY", &config.UI.Display)
	env.str("GUIDEGEN_THEME", &config.UI.Theme)

	return env.err
}

// envReader remembers the first malformed variable.
type envReader struct {
	err error
}

func (e *envReader) str(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func (e *envReader) boolean(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		*dst = strings.EqualFold(v, "true") || v == "1"
	}
}

func (e *envReader) integer(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, v)
		return
	}
	*dst = n
}

func (e *envReader) float(name string, dst *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(name, v)
		return
	}
	*dst = f
}

func (e *envReader) fail(name, value string) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid value %q for %s", value, name)
	}
}
