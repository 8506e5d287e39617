package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/dedup"
	"github.com/spigell/jobfit/internal/document"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/posting"
	"github.com/spigell/jobfit/internal/salary"
	"github.com/spigell/jobfit/internal/sink"
	"go.uber.org/zap"
)

// ErrIntake marks unexpected failures while evaluating a single posting.
var ErrIntake = errors.New("intake failure")

const (
	// IDColumn is the sink column holding posting identifiers.
	IDColumn          = 0
	SalaryColumn      = "Salary"
	DefaultHeaderRows = 1
)

// Scorer is implemented by *ai.Aggregator.
type Scorer interface {
	Score(ctx context.Context, backend ai.Backend, job, resume string) (*ai.FitAssessment, error)
	Customize(ctx context.Context, backend ai.Backend, job, resume, digest, atsIssues string) (string, error)
}

type Config struct {
	PromotionThreshold int
	// KeyColumns decide whether the sink already holds a record. Defaults to the id column.
	KeyColumns []int
	HeaderRows int
}

// Deps aggregates the collaborators of the pipeline.
type Deps struct {
	Salary    *salary.Extractor
	Index     *dedup.Index
	Scorer    Scorer
	Primary   ai.Backend
	Secondary []ai.Backend
	Sink      sink.Sink
	// Documents is optional. Without it no resume is customized.
	Documents document.Renderer
	Resume    string
	Logger    *zap.Logger
}

// Pipeline carries postings from intake to commit, one at a time.
type Pipeline struct {
	cfg  Config
	deps Deps
	log  *zap.Logger
}

func New(cfg Config, deps Deps) (*Pipeline, error) {
	switch {
	case deps.Salary == nil:
		return nil, errors.New("salary extractor is required")
	case deps.Scorer == nil:
		return nil, errors.New("scorer is required")
	case deps.Primary == nil:
		return nil, errors.New("primary backend is required")
	case deps.Sink == nil:
		return nil, errors.New("sink is required")
	case strings.TrimSpace(deps.Resume) == "":
		return nil, errors.New("resume text is required")
	}

	if deps.Index == nil {
		deps.Index = dedup.New()
	}
	if cfg.PromotionThreshold <= 0 {
		cfg.PromotionThreshold = ai.DefaultPromotionThreshold
	}
	if len(cfg.KeyColumns) == 0 {
		cfg.KeyColumns = []int{IDColumn}
	}
	if cfg.HeaderRows < 0 {
		cfg.HeaderRows = DefaultHeaderRows
	}

	return &Pipeline{cfg: cfg, deps: deps, log: logger.WithFields(deps.Logger)}, nil
}

// Header is the sink header: posting columns, salary text, then one block
// per backend in scoring order.
func Header(backendNames []string) []string {
	header := append(posting.Columns(), SalaryColumn)
	for _, name := range backendNames {
		header = append(header, ai.BlockColumns(name)...)
	}
	return header
}

// Header returns the sink header for the configured backends.
func (p *Pipeline) Header() []string {
	names := []string{p.deps.Primary.Name()}
	for _, b := range p.deps.Secondary {
		names = append(names, b.Name())
	}
	return Header(names)
}

// Seed writes the header where the sink supports it and loads the
// identifiers already stored into the index.
func (p *Pipeline) Seed(ctx context.Context) error {
	if hw, ok := p.deps.Sink.(sink.HeaderWriter); ok {
		if err := hw.EnsureHeader(ctx, p.Header()); err != nil {
			return fmt.Errorf("ensure header: %w", err)
		}
	}

	rows, err := p.deps.Sink.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read existing records: %w", err)
	}

	ids := sink.Column(sink.DataRows(rows, p.cfg.HeaderRows), IDColumn)
	p.deps.Index.Seed(ids)

	p.log.Info("dedup index seeded", zap.Int("rows", len(rows)), zap.Int("ids", p.deps.Index.Len()))
	return nil
}

// Run processes postings in order. It stops early only when ctx is done.
func (p *Pipeline) Run(ctx context.Context, postings []posting.RawPosting) (*Summary, error) {
	summary := &Summary{}
	for _, raw := range postings {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Add(p.Process(ctx, raw))
	}

	summary.Log(p.log)
	return summary, nil
}

// OnData returns a source callback that processes postings as they arrive.
func (p *Pipeline) OnData(ctx context.Context, summary *Summary) func(posting.RawPosting) {
	return func(raw posting.RawPosting) {
		if ctx.Err() != nil {
			return
		}
		summary.Add(p.Process(ctx, raw))
	}
}

// Process runs a posting through every stage. It never panics: unexpected
// failures end the posting in StateFailed.
func (p *Pipeline) Process(ctx context.Context, raw posting.RawPosting) (res Result) {
	res.PostingID = raw.ID
	log := p.log.With(logger.PostingFields(raw.ID, raw.Title, raw.Company)...)

	defer func() {
		if r := recover(); r != nil {
			res.State = StateFailed
			res.Err = fmt.Errorf("%w: %v", ErrIntake, r)
			log.Error("posting failed", zap.String(logger.FieldPostingState, string(res.State)), zap.Error(res.Err), zap.Stack("stack"))
		}
	}()

	return p.process(ctx, raw, log)
}

func (p *Pipeline) process(ctx context.Context, raw posting.RawPosting, log *zap.Logger) Result {
	res := Result{PostingID: raw.ID}

	if strings.TrimSpace(raw.ID) == "" {
		return res.fail(log, fmt.Errorf("%w: posting has no identifier", ErrIntake))
	}

	res.Salary = p.deps.Salary.Assess(raw.Description)
	if !res.Salary.MeetsThreshold {
		res.State = StateSkippedBelowSalaryFloor
		log.Info("posting skipped",
			zap.String(logger.FieldPostingState, string(res.State)),
			zap.String("salary_text", res.Salary.MatchedText),
			zap.Float64("floor", p.deps.Salary.Floor()),
			zap.String("mode", string(p.deps.Salary.Mode())),
		)
		return res
	}

	if !p.deps.Index.Reserve(raw.ID) {
		res.State = StateSkippedDuplicate
		log.Info("posting skipped", zap.String(logger.FieldPostingState, string(res.State)))
		return res
	}
	defer func() {
		if res.State != StateAdmitted {
			p.deps.Index.Release(raw.ID)
		}
	}()

	job := jobText(raw)

	primary, err := p.deps.Scorer.Score(ctx, p.deps.Primary, job, p.deps.Resume)
	if err != nil {
		return res.fail(log, fmt.Errorf("primary score (%s): %w", p.deps.Primary.Name(), err))
	}
	res.Primary = primary

	log.Info("posting scored",
		zap.String("backend", p.deps.Primary.Name()),
		zap.Int("overall_score", primary.Overall),
		zap.Intp("ats_score", primary.ATS.Score),
	)

	if ai.PromotionReached(primary.Overall, p.cfg.PromotionThreshold) {
		res.Customized, res.DocumentSaved = p.customize(ctx, raw, job, primary, log)
	}

	blocks := [][]any{ai.Flatten(primary)}
	for _, backend := range p.deps.Secondary {
		assessment, err := p.deps.Scorer.Score(ctx, backend, job, p.deps.Resume)
		if err != nil {
			log.Warn("secondary scoring failed", zap.String("backend", backend.Name()), zap.Error(err))
			res.SecondaryFailures = append(res.SecondaryFailures, backend.Name())
			blocks = append(blocks, ai.FailedBlock())
			continue
		}
		blocks = append(blocks, ai.Flatten(assessment))
	}

	row := assemble(raw, res.Salary.MatchedText, blocks)

	appended, err := p.deps.Sink.Append(ctx, row, p.cfg.KeyColumns)
	if err != nil {
		return res.fail(log, fmt.Errorf("commit: %w", err))
	}
	if !appended.Accepted {
		return res.fail(log, fmt.Errorf("%w: record not accepted: %s", sink.ErrSink, appended.Message))
	}

	p.deps.Index.Add(raw.ID)
	res.State = StateAdmitted

	log.Info("posting admitted",
		zap.String(logger.FieldPostingState, string(res.State)),
		zap.Int("overall_score", primary.Overall),
		zap.Bool("customized", res.Customized),
		zap.Strings("degraded_backends", res.SecondaryFailures),
		zap.String("sink_message", appended.Message),
	)

	return res
}

// customize reports whether a tailored resume was produced and whether it was saved.
func (p *Pipeline) customize(ctx context.Context, raw posting.RawPosting, job string, primary *ai.FitAssessment, log *zap.Logger) (bool, bool) {
	markdown, err := p.deps.Scorer.Customize(ctx, p.deps.Primary, job, p.deps.Resume,
		ai.Digest(primary.Recommendations), ai.IssuesText(primary.ATS.Issues))
	if err != nil {
		log.Warn("resume customization failed", zap.Error(err))
		return false, false
	}

	if p.deps.Documents == nil {
		log.Debug("resume documents disabled, tailored resume not saved")
		return true, false
	}

	saved := p.deps.Documents.Render(markdown, raw.ID, raw.Title)
	if !saved {
		log.Warn("resume document was not saved")
	}

	return true, saved
}

func jobText(raw posting.RawPosting) string {
	var b strings.Builder
	for _, line := range [][2]string{
		{"Title", raw.Title},
		{"Company", raw.Company},
		{"Location", raw.Location},
		{"Skills", raw.Skills},
		{"Insights", raw.Insights},
	} {
		if strings.TrimSpace(line[1]) != "" {
			fmt.Fprintf(&b, "%s: %s\n", line[0], line[1])
		}
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(raw.Description)
	return b.String()
}

func assemble(raw posting.RawPosting, salaryText string, blocks [][]any) []any {
	row := append(raw.Fields(), salaryText)
	for _, block := range blocks {
		row = append(row, block...)
	}
	return row
}
