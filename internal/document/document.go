package document

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Renderer stores a tailored resume. It reports success and never fails the caller.
type Renderer interface {
	Render(markdown, idHint, titleHint string) bool
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLength = 60

// Directory writes each resume as {id}-{title}.md into dir.
type Directory struct {
	dir    string
	logger *zap.Logger
}

var _ Renderer = (*Directory)(nil)

func NewDirectory(dir string, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{dir: dir, logger: logger}
}

func (d *Directory) Render(markdown, idHint, titleHint string) bool {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		d.logger.Warn("skipping empty resume document", zap.String("posting_id", idHint))
		return false
	}

	path := d.Path(idHint, titleHint)
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		d.logger.Error("creating documents directory", zap.String("dir", d.dir), zap.Error(err))
		return false
	}

	if err := os.WriteFile(path, []byte(markdown+"\n"), 0o644); err != nil {
		d.logger.Error("writing resume document", zap.String("path", path), zap.Error(err))
		return false
	}

	d.logger.Info("resume document saved", zap.String("path", path))
	return true
}

// Path returns the file the document for id and title is written to.
func (d *Directory) Path(id, title string) string {
	name := slug(id)
	if t := slug(title); t != "" {
		if name == "" {
			name = t
		} else {
			name = fmt.Sprintf("%s-%s", name, t)
		}
	}
	if name == "" {
		name = "resume"
	}
	return filepath.Join(d.dir, name+".md")
}

func slug(s string) string {
	s = unsafeChars.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	return s
}
