package filtering

import (
	"context"
	"strings"

	"github.com/spigell/jobfit/internal/posting"
	"go.uber.org/zap"
)

type companiesFilter struct {
	companies map[string]struct{}
	logger    *zap.Logger
}

// NewExcludedCompanies creates a filter that removes postings of the given
// companies. Names are compared case-insensitively.
func NewExcludedCompanies(companies []string, logger *zap.Logger) Filter {
	set := make(map[string]struct{}, len(companies))
	for _, c := range companies {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			set[c] = struct{}{}
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &companiesFilter{companies: set, logger: logger}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) IsEnabled() bool { return len(f.companies) > 0 }

func (f *companiesFilter) Apply(_ context.Context, postings []posting.RawPosting) ([]posting.RawPosting, Step, error) {
	initial := len(postings)

	kept, dropped := exclude(postings, func(p posting.RawPosting) bool {
		_, ok := f.companies[strings.ToLower(strings.TrimSpace(p.Company))]
		return ok
	})

	if len(dropped) > 0 {
		f.logger.Info("excluding postings by companies",
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}
