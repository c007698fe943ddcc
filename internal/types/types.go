package types

import (
	"context"
	"io"
	"time"

	"github.com/xhad/guidegen/internal/models"
)

// Sink receives display events while a guide is streaming.
type Sink interface {
	Write(text string) error
	Close() error
}

// Exporter serialises a finished guide into one output format.
type Exporter interface {
	Format() string
	Extension() string
	Export(w io.Writer, guide models.Guide) error
}

type GuideStore interface {
	Save(ctx context.Context, guide models.Guide, exporter Exporter) (string, error)
	Recent(limit int) ([]StoredGuide, error)
}

type StoredGuide struct {
	Path     string
	Name     string
	Title    string
	Format   string
	Size     int64
	Modified time.Time
}
