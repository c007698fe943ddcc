package guide

import (
	"fmt"

	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/pkg/render"
)

const accessibilityTestTemplate = `Accessibility Test Guide - Font Size %[1]gpt

This comprehensive test guide validates all accessibility formatting features to ensure proper large print compliance for visually impaired users.

# Main Heading Test (H1) - Should be %[2]gpt

This is the primary heading style used for major sections. It should be bold, clearly visible, and significantly larger than body text.

## Secondary Heading Test (H2) - Should be %[3]gpt

This is the secondary heading style for subsections. It should be smaller than H1 but larger than H3, creating clear visual hierarchy.

### Tertiary Heading Test (H3) - Should be %[4]gpt

This is the third-level heading for detailed subsections.

## Body Text and Formatting Tests

This paragraph tests the standard body text formatting. The font should be %[5]s at %[1]gpt with %[6]g line spacing. This size meets large print standards for accessibility.

**This text tests bold formatting** and should be clearly distinguishable from regular text while maintaining the same large print size.

## List Formatting Tests

### Bullet List Test

The following bullet points test list formatting with proper spacing:

- First bullet point with accessible font size
- Second bullet point demonstrating spacing
- Third bullet point showing indentation
- Fourth bullet point validating alignment

### Numbered List Test

The following numbered items test ordered list formatting:

1. First numbered item with large print formatting
2. Second numbered item demonstrating hierarchy
3. Third numbered item showing proper spacing
4. Fourth numbered item validating accessibility compliance

## Accessibility Features Summary

This test document validates:

- Large print body text (%[1]gpt minimum)
- Clear heading hierarchy (H1: %[2]gpt, H2: %[3]gpt, H3: %[4]gpt)
- Enhanced line spacing (%[6]g) for readability
- Accessible font selection (%[5]s)
- Proper paragraph spacing (%[7]gpt)
- Professional %[8]s branding
- Contact information accessibility
- High contrast options when enabled

## Conclusion

If this document displays correctly with all specified font sizes and formatting, the accessibility system is functioning properly and meets large print standards for visually impaired users.`

// AccessibilityTestContent returns a guide exercising every block kind at
// the sizes of profile, with metadata ready for SaveContent. It needs no
// generation service.
func AccessibilityTestContent(profile render.StyleProfile, org string) (string, models.DocumentMetadata) {
	if org == "" {
		org = "MyVision"
	}
	text := fmt.Sprintf(accessibilityTestTemplate,
		profile.BodyFontSize,
		profile.Heading1Size,
		profile.Heading2Size,
		profile.Heading3Size,
		profile.FontFamily,
		profile.LineSpacing,
		profile.ParagraphSpacing,
		org,
	)
	meta := models.DocumentMetadata{
		Type:  models.GuideAccessibilityTest,
		Title: fmt.Sprintf("Accessibility Test Guide - Font Size %gpt", profile.BodyFontSize),
		Topic: "accessibility_test",
	}
	return text, meta
}
