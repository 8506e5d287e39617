package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/jobfit/internal/posting"
	"go.uber.org/zap"
)

// Filter drops postings before they reach the scoring pipeline.
type Filter interface {
	Name() string
	IsEnabled() bool
	Apply(ctx context.Context, postings []posting.RawPosting) ([]posting.RawPosting, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

type Filtering struct {
	steps  []Filter
	logger *zap.Logger
}

func New(steps []Filter, logger *zap.Logger) *Filtering {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filtering{steps: steps, logger: logger}
}

// RunFilters applies the enabled steps in order.
func (f *Filtering) RunFilters(ctx context.Context, postings []posting.RawPosting) ([]posting.RawPosting, error) {
	for _, step := range f.steps {
		if !step.IsEnabled() {
			f.logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, postings)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		f.logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		postings = next
	}

	return postings, nil
}

// exclude keeps postings for which drop is false and returns the dropped ids.
func exclude(postings []posting.RawPosting, drop func(posting.RawPosting) bool) ([]posting.RawPosting, []string) {
	kept := make([]posting.RawPosting, 0, len(postings))
	var dropped []string
	for _, p := range postings {
		if drop(p) {
			dropped = append(dropped, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	return kept, dropped
}
