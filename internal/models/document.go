package models

import "time"

type GuideType string

const (
	GuideLearning          GuideType = "learning"
	GuideAccessibilityTest GuideType = "accessibility_test"
	GuideSession           GuideType = "session"
)

// GeneratedContent is the text accumulated from one generation request.
type GeneratedContent struct {
	Text       string
	IsComplete bool
}

// DocumentMetadata describes one generated guide. CreatedAt is stamped once,
// when the guide is saved.
type DocumentMetadata struct {
	ID               string
	Type             GuideType
	Title            string
	Topic            string
	CreatedAt        time.Time
	OrganizationName string
	ContactEmail     string
	Website          string
	Streamed         bool
}

type Guide struct {
	Content  GeneratedContent
	Metadata DocumentMetadata
}

type Reference struct {
	URL     string
	Title   string
	Content string
}
