package filtering

import (
	"context"
	"strings"

	"github.com/spigell/jobfit/internal/posting"
	"go.uber.org/zap"
)

type titleFilter struct {
	keywords []string
	logger   *zap.Logger
}

// NewExcludedTitles creates a filter that removes postings whose title
// contains any of keywords, e.g. "intern" or "lead".
func NewExcludedTitles(keywords []string, logger *zap.Logger) Filter {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &titleFilter{keywords: lowered, logger: logger}
}

func (f *titleFilter) Name() string { return "titles" }

func (f *titleFilter) IsEnabled() bool { return len(f.keywords) > 0 }

func (f *titleFilter) Apply(_ context.Context, postings []posting.RawPosting) ([]posting.RawPosting, Step, error) {
	initial := len(postings)

	kept, dropped := exclude(postings, func(p posting.RawPosting) bool {
		title := strings.ToLower(p.Title)
		for _, kw := range f.keywords {
			if strings.Contains(title, kw) {
				return true
			}
		}
		return false
	})

	if len(dropped) > 0 {
		f.logger.Info("excluding postings by title keywords",
			zap.Strings("keywords", f.keywords),
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}
