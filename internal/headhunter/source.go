package headhunter

import (
	"context"
	"fmt"

	"github.com/spigell/jobfit/internal/posting"
	"go.uber.org/zap"
)

// Source searches hh.ru and emits one posting per vacancy with full details.
type Source struct {
	client   *Client
	params   *SearchParams
	pageSize int
	logger   *zap.Logger
}

var _ posting.Source = (*Source)(nil)

// NewSource wraps client. Request pacing is left to client.Limiter.
func NewSource(client *Client, params *SearchParams, pageSize int, logger *zap.Logger) *Source {
	if pageSize <= 0 {
		pageSize = posting.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		client:   client,
		params:   params,
		pageSize: pageSize,
		logger:   logger,
	}
}

func (s *Source) Run(ctx context.Context, h posting.Handlers) error {
	vacancies, err := s.client.Search(ctx, s.params)
	if err != nil {
		return h.Fail(fmt.Errorf("search: %w", err))
	}

	s.logger.Info("getting vacancies", zap.Int("count", vacancies.Len()))

	page := posting.Metrics{Page: 1}
	inPage := 0

	for _, found := range vacancies.Items {
		if err := ctx.Err(); err != nil {
			return h.Fail(err)
		}

		if found.Archived {
			page.Skipped++
		} else if detailed, err := s.client.GetVacancy(ctx, found.ID); err != nil {
			if ctx.Err() != nil {
				return h.Fail(ctx.Err())
			}
			s.logger.Warn("skipping vacancy", zap.String("vacancy_id", found.ID), zap.Error(err))
			page.Failed++
		} else {
			h.Emit(detailed.ToPosting())
			page.Processed++
		}

		inPage++
		if inPage >= s.pageSize {
			h.Report(page)
			page = posting.Metrics{Page: page.Page + 1}
			inPage = 0
		}
	}

	if inPage > 0 {
		h.Report(page)
	}

	h.End()
	return nil
}
