package pipeline

import (
	"sync"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/salary"
	"go.uber.org/zap"
)

// State is the terminal state of a posting.
type State string

const (
	StateAdmitted                State = "admitted"
	StateSkippedDuplicate        State = "skipped_duplicate"
	StateSkippedBelowSalaryFloor State = "skipped_below_salary_floor"
	StateFailed                  State = "failed"
)

type Result struct {
	PostingID         string
	State             State
	Salary            salary.Assessment
	Primary           *ai.FitAssessment
	Customized        bool
	DocumentSaved     bool
	SecondaryFailures []string
	Err               error
}

func (r Result) fail(log *zap.Logger, err error) Result {
	r.State = StateFailed
	r.Err = err
	log.Warn("posting failed", zap.String(logger.FieldPostingState, string(r.State)), zap.Error(err))
	return r
}

// Summary counts postings per terminal state.
type Summary struct {
	mu sync.Mutex

	Total                   int
	Admitted                int
	SkippedDuplicate        int
	SkippedBelowSalaryFloor int
	Failed                  int
	Customized              int
}

func (s *Summary) Add(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Total++
	switch r.State {
	case StateAdmitted:
		s.Admitted++
	case StateSkippedDuplicate:
		s.SkippedDuplicate++
	case StateSkippedBelowSalaryFloor:
		s.SkippedBelowSalaryFloor++
	case StateFailed:
		s.Failed++
	}
	if r.Customized {
		s.Customized++
	}
}

func (s *Summary) Log(log *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info("enrichment finished",
		zap.Int("total", s.Total),
		zap.Int("admitted", s.Admitted),
		zap.Int("skipped_duplicate", s.SkippedDuplicate),
		zap.Int("skipped_below_salary_floor", s.SkippedBelowSalaryFloor),
		zap.Int("failed", s.Failed),
		zap.Int("customized", s.Customized),
	)
}
