package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xhad/guidegen/internal/models"
	"github.com/xhad/guidegen/internal/types"
	"github.com/xhad/guidegen/pkg/export"
)

const (
	LearningDir = "Learning_Guides"
	SessionDir  = "Session_Guides"

	timestampLayout = "20060102150405"
	maxNameLength   = 50
)

var (
	unsafeChars    = regexp.MustCompile(`[^a-z0-9\s_-]`)
	separatorRuns  = regexp.MustCompile(`[-\s_]+`)
	guideExtension = map[string]string{
		".md":   export.FormatMarkdown,
		".docx": export.FormatDocx,
		".html": export.FormatHTML,
		".pdf":  export.FormatPDF,
	}
)

type StoreConfig struct {
	Root string
	// Now stamps guides that arrive without a creation time. Defaults to
	// time.Now.
	Now func() time.Time
	Log logrus.FieldLogger
}

// FileStore keeps guides as files under Root, one subdirectory per kind of
// guide.
type FileStore struct {
	config StoreConfig
}

func NewWithConfig(config StoreConfig) (*FileStore, error) {
	if config.Root == "" {
		return nil, fmt.Errorf("output directory is not set")
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Log == nil {
		config.Log = logrus.StandardLogger()
	}

	s := &FileStore{config: config}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) initialize() error {
	for _, dir := range []string{s.config.Root, filepath.Join(s.config.Root, LearningDir), filepath.Join(s.config.Root, SessionDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}

func (s *FileStore) Root() string {
	return s.config.Root
}

// Dir returns the directory guides of type t are saved in.
func (s *FileStore) Dir(t models.GuideType) string {
	if t == models.GuideSession {
		return filepath.Join(s.config.Root, SessionDir)
	}
	return filepath.Join(s.config.Root, LearningDir)
}

// Save exports guide into a temporary file next to its destination and
// renames it into place, so a failed export leaves nothing behind. It
// returns the final path.
func (s *FileStore) Save(ctx context.Context, guide models.Guide, exporter types.Exporter) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if guide.Metadata.CreatedAt.IsZero() {
		guide.Metadata.CreatedAt = s.config.Now()
	}

	dir := s.Dir(guide.Metadata.Type)
	path, err := s.freePath(dir, guide.Metadata, exporter.Extension())
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".guide-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := exporter.Export(tmp, guide); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s guide: %w", exporter.Format(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}

	s.config.Log.WithFields(logrus.Fields{
		"path":   path,
		"format": exporter.Format(),
	}).Info("guide saved")

	return path, nil
}

// freePath picks the first unused filename, moving the timestamp forward a
// second at a time if a guide with the same name was saved in the same
// second.
func (s *FileStore) freePath(dir string, meta models.DocumentMetadata, ext string) (string, error) {
	at := meta.CreatedAt
	for i := 0; i < 60; i++ {
		path := filepath.Join(dir, Filename(meta.Title, string(meta.Type), ext, at))
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", path, err)
		}
		at = at.Add(time.Second)
	}
	return "", fmt.Errorf("no free filename for %q in %s", meta.Title, dir)
}

// Recent lists saved guides, newest first. A limit of zero or less returns
// every guide.
func (s *FileStore) Recent(limit int) ([]types.StoredGuide, error) {
	var guides []types.StoredGuide

	for _, sub := range []string{LearningDir, SessionDir} {
		dir := filepath.Join(s.config.Root, sub)
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}

		for _, entry := range entries {
			format, ok := guideExtension[strings.ToLower(filepath.Ext(entry.Name()))]
			if entry.IsDir() || !ok {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			guides = append(guides, types.StoredGuide{
				Path:     path,
				Name:     entry.Name(),
				Title:    s.title(path, format),
				Format:   format,
				Size:     info.Size(),
				Modified: info.ModTime(),
			})
		}
	}

	sort.Slice(guides, func(i, j int) bool {
		if !guides[i].Modified.Equal(guides[j].Modified) {
			return guides[i].Modified.After(guides[j].Modified)
		}
		return guides[i].Name > guides[j].Name
	})

	if limit > 0 && len(guides) > limit {
		guides = guides[:limit]
	}
	return guides, nil
}

func (s *FileStore) title(path, format string) string {
	if format == export.FormatMarkdown {
		if f, err := os.Open(path); err == nil {
			defer f.Close()
			if fm, _, err := export.ReadFrontMatter(f); err == nil && fm.Title != "" {
				return fm.Title
			}
		}
	}
	return TitleFromFilename(filepath.Base(path))
}

// Filename builds {title}_{type}_guide_{YYYYMMDDhhmmss}.{ext}.
func Filename(title, guideType, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s_guide_%s.%s", Sanitize(title), Sanitize(guideType), at.Format(timestampLayout), ext)
}

// Sanitize lowercases text and reduces it to ASCII letters, digits and
// single underscores, at most 50 characters long.
func Sanitize(text string) string {
	s := strings.ToLower(text)
	s = unsafeChars.ReplaceAllString(s, "")
	s = separatorRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxNameLength {
		s = strings.TrimRight(s[:maxNameLength], "_")
	}
	if s == "" {
		return "guide"
	}
	return s
}

var filenameSuffix = regexp.MustCompile(`_(accessibility_test|[a-z0-9]+)_guide_\d{14}$`)

// TitleFromFilename recovers a readable title from a generated filename.
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if loc := filenameSuffix.FindStringIndex(base); loc != nil && loc[0] > 0 {
		base = base[:loc[0]]
	}
	return strings.ReplaceAll(base, "_", " ")
}
