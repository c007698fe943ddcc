package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/xhad/guidegen/pkg/export"
	"github.com/xhad/guidegen/pkg/render"
)

const (
	minFontSize       = render.DefaultMinFontSize
	largePrintMinimum = render.DefaultLargePrintFloor
	minHeading1Size   = 20
	minLineSpacing    = 1.15
)

// AccessibleFonts are the sans-serif faces recommended for low vision
// readers.
var AccessibleFonts = []string{"Arial", "Verdana", "Tahoma", "Calibri", "Helvetica", "Open Sans"}

var (
	providers       = []string{"anthropic", "openai", "ollama", "offline"}
	thinkingDetails = []string{"basic", "detailed", "expert"}
	groupings       = []string{"none", "sentence", "paragraph"}
	displays        = []string{"plain", "markdown", "none"}
	logLevels       = []string{"debug", "info", "warn", "error"}
	logFormats      = []string{"text", "json"}
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	add := func(field, format string, args ...any) {
		errors = append(errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Validate LLM config
	if !slices.Contains(providers, c.LLM.Provider) {
		add("llm.provider", "unknown provider %q (supported: %s)", c.LLM.Provider, strings.Join(providers, ", "))
	}

	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.APIKey == "" {
			add("llm.api_key", "ANTHROPIC_API_KEY is not set")
		}
	case "openai":
		if c.LLM.APIKey == "" {
			add("llm.api_key", "OPENAI_API_KEY is not set")
		}
	case "ollama":
		if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("llm.base_url", "invalid Ollama base URL %q", c.LLM.BaseURL)
		}
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 8192 {
		add("llm.max_tokens", "max_tokens must be between 1 and 8192")
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		add("llm.temperature", "temperature must be between 0 and 1")
	}

	if c.LLM.Timeout < 0 {
		add("llm.timeout", "timeout must not be negative")
	}

	// Validate streaming config
	if c.Streaming.DelayMS < 0 {
		add("streaming.delay_ms", "delay_ms must not be negative")
	}
	if c.Streaming.RetryAttempts < 1 {
		add("streaming.retry_attempts", "retry_attempts must be positive")
	}
	if !slices.Contains(thinkingDetails, c.Streaming.ThinkingDetail) {
		add("streaming.thinking_detail", "thinking_detail must be one of %s", strings.Join(thinkingDetails, ", "))
	}
	if !slices.Contains(groupings, c.Streaming.Grouping) {
		add("streaming.grouping", "grouping must be one of %s", strings.Join(groupings, ", "))
	}

	// Validate output config
	if c.Output.Dir == "" {
		add("output.dir", "output directory is required")
	}
	if !export.Supported(c.Output.Format) {
		add("output.format", "unsupported format %q (supported: %s)", c.Output.Format, strings.Join(export.Formats(), ", "))
	}

	// Validate accessibility config
	a := c.Accessibility
	if a.Heading1Size <= a.Heading2Size || a.Heading2Size <= a.Heading3Size || a.Heading3Size <= a.BodyFontSize {
		add("accessibility", "font sizes must satisfy h1 > h2 > h3 > body (got %g > %g > %g > %g)",
			a.Heading1Size, a.Heading2Size, a.Heading3Size, a.BodyFontSize)
	}
	if a.BodyFontSize < minFontSize {
		add("accessibility.body_font_size", "body font size must be at least %dpt", minFontSize)
	} else if a.LargePrint && a.BodyFontSize < largePrintMinimum {
		add("accessibility.body_font_size", "large print needs a body font size of at least %dpt", largePrintMinimum)
	}
	if a.Font == "" {
		add("accessibility.font", "font is required")
	}
	if a.LineSpacing < 1 {
		add("accessibility.line_spacing", "line_spacing must be at least 1")
	}
	if a.ParagraphSpacing < 0 {
		add("accessibility.paragraph_spacing", "paragraph_spacing must not be negative")
	}

	// Validate log and UI config
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		add("log.level", "level must be one of debug, info, warn, error")
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		add("log.format", "format must be text or json")
	}
	if !slices.Contains(displays, c.UI.Display) {
		add("ui.display", "display must be one of %s", strings.Join(displays, ", "))
	}
	if c.UI.Width < 0 {
		add("ui.width", "width must not be negative")
	}

	// Validate Scraper config
	if c.Scraper.MaxDepth < 0 {
		add("scraper.max_depth", "max_depth must not be negative")
	}
	if c.Scraper.RateLimit <= 0 {
		add("scraper.rate_limit", "rate_limit must be positive")
	}
	for _, ext := range c.Scraper.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") && ext != "" && ext != "/" {
			add("scraper.allowed_extensions", "invalid extension format: %s", ext)
		}
	}

	return errors
}

type ReportLevel int

const (
	ReportPass ReportLevel = iota
	ReportWarn
	ReportFail
)

type ReportItem struct {
	Level   ReportLevel
	Message string
}

// AccessibilityReport checks the document settings against large print
// guidance. It reports whether they meet the standard and the findings
// behind that verdict.
type AccessibilityReport struct {
	MeetsStandards bool
	Items          []ReportItem
}

func (c *Config) AccessibilityReport() AccessibilityReport {
	a := c.Accessibility
	report := AccessibilityReport{MeetsStandards: true}
	pass := func(format string, args ...any) {
		report.Items = append(report.Items, ReportItem{ReportPass, fmt.Sprintf(format, args...)})
	}
	warn := func(format string, args ...any) {
		report.Items = append(report.Items, ReportItem{ReportWarn, fmt.Sprintf(format, args...)})
	}
	fail := func(format string, args ...any) {
		report.Items = append(report.Items, ReportItem{ReportFail, fmt.Sprintf(format, args...)})
		report.MeetsStandards = false
	}

	if a.BodyFontSize < largePrintMinimum {
		fail("Body font size (%gpt) below large print minimum (%dpt)", a.BodyFontSize, largePrintMinimum)
	} else {
		pass("Large print enabled (%gpt body text)", a.BodyFontSize)
	}

	if a.Heading1Size < minHeading1Size {
		fail("H1 font size (%gpt) should be at least %dpt", a.Heading1Size, minHeading1Size)
	}

	if slices.Contains(AccessibleFonts, a.Font) {
		pass("Accessible font selected (%s)", a.Font)
	} else {
		warn("Font '%s' may not be optimal for accessibility", a.Font)
		warn("Recommended fonts: %s", strings.Join(AccessibleFonts, ", "))
	}

	if a.LineSpacing < minLineSpacing {
		fail("Line spacing (%g) below recommended minimum (%g)", a.LineSpacing, minLineSpacing)
	} else {
		pass("Good line spacing (%g)", a.LineSpacing)
	}

	if a.Heading1Size <= a.Heading2Size {
		fail("H1 should be larger than H2 for clear hierarchy")
	}
	if a.Heading2Size <= a.Heading3Size {
		fail("H2 should be larger than H3 for clear hierarchy")
	}

	if a.HighContrast {
		pass("High contrast mode enabled for maximum visibility")
	}

	return report
}
