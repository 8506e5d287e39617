package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/utils"
	"go.uber.org/zap"
)

const (
	DefaultTimeout      = 2 * time.Minute
	defaultMaxLogLength = 200

	scoringSystem   = "You evaluate resumes against job descriptions and answer with strict JSON."
	customizeSystem = "You tailor resumes to job descriptions without inventing facts."
)

//go:embed prompts/fit_assessment.md
var fitPromptTemplate string

//go:embed prompts/customize_resume.md
var customizePromptTemplate string

type Config struct {
	// Timeout bounds every single backend call.
	Timeout      time.Duration
	Weights      Weights
	MaxLogLength int
}

// Aggregator scores postings with backends and asks for tailored resumes.
// Each call is a single attempt.
type Aggregator struct {
	timeout   time.Duration
	weights   Weights
	maxLogLen int
	logger    *zap.Logger
}

func NewAggregator(cfg Config, log *zap.Logger) *Aggregator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if len(cfg.Weights) == 0 {
		cfg.Weights = DefaultWeights()
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}

	return &Aggregator{
		timeout:   cfg.Timeout,
		weights:   cfg.Weights,
		maxLogLen: cfg.MaxLogLength,
		logger:    logger.WithFields(log),
	}
}

// Score asks backend for a fit assessment of resume against job.
// Errors wrap ErrBackend or ErrParse.
func (a *Aggregator) Score(ctx context.Context, backend Backend, job, resume string) (*FitAssessment, error) {
	prompt := renderPrompt(fitPromptTemplate,
		"{{RESUME}}", resume,
		"{{JOB_DESCRIPTION}}", job,
	)

	raw, err := a.invoke(ctx, backend, Request{System: scoringSystem, Prompt: prompt, JSON: true})
	if err != nil {
		return nil, err
	}

	assessment, err := ParseAssessment(raw, a.weights)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", backend.Name(), err)
	}
	assessment.Backend = backend.Name()

	return assessment, nil
}

// Customize asks backend for a tailored resume in markdown.
func (a *Aggregator) Customize(ctx context.Context, backend Backend, job, resume, digest, atsIssues string) (string, error) {
	prompt := renderPrompt(customizePromptTemplate,
		"{{RESUME}}", resume,
		"{{JOB_DESCRIPTION}}", job,
		"{{RECOMMENDATIONS}}", orNone(digest),
		"{{ATS_ISSUES}}", orNone(atsIssues),
	)

	raw, err := a.invoke(ctx, backend, Request{System: customizeSystem, Prompt: prompt})
	if err != nil {
		return "", err
	}

	markdown := stripFence(raw, "markdown")
	if markdown == "" {
		return "", fmt.Errorf("%s: %w: empty resume", backend.Name(), ErrParse)
	}

	return markdown, nil
}

func (a *Aggregator) invoke(ctx context.Context, backend Backend, req Request) (string, error) {
	if backend == nil {
		return "", fmt.Errorf("%w: backend is not configured", ErrBackend)
	}

	log := logger.WithCommonFields(a.logger, backend.Name(), backend.Model())

	log.Debug("backend request",
		zap.Bool("json", req.JSON),
		zap.Int("prompt_length", utf8.RuneCountInString(req.Prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(req.Prompt, a.maxLogLen)),
	)

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := backend.Invoke(callCtx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s: timed out after %s: %w", ErrBackend, backend.Name(), a.timeout, err)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrBackend, backend.Name(), err)
	}

	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: %s: empty response", ErrBackend, backend.Name())
	}

	log.Debug("backend response",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return raw, nil
}

// renderPrompt fills placeholder/value pairs in a single pass, so placeholders
// that appear inside substituted values are left as they are.
func renderPrompt(template string, pairs ...string) string {
	args := make([]string, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		args[i] = pairs[i]
		args[i+1] = strings.TrimSpace(pairs[i+1])
	}
	return strings.NewReplacer(args...).Replace(template)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
