package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/ai/anthropic"
	"github.com/spigell/jobfit/internal/ai/gemini"
	"github.com/spigell/jobfit/internal/ai/openai"
	"github.com/spigell/jobfit/internal/document"
	"github.com/spigell/jobfit/internal/filtering"
	"github.com/spigell/jobfit/internal/headhunter"
	"github.com/spigell/jobfit/internal/posting"
	"github.com/spigell/jobfit/internal/salary"
	"github.com/spigell/jobfit/internal/secrets"
	"github.com/spigell/jobfit/internal/sink"

	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func newExtractor(cfg *SalaryConfig) (*salary.Extractor, error) {
	if cfg == nil {
		cfg = &SalaryConfig{}
	}

	mode, err := salary.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	return salary.New(salary.Config{
		Floor:    cfg.Floor,
		Mode:     mode,
		Keywords: cfg.Keywords,
	})
}

func newSource(cfg *SourceConfig, logger *zap.Logger) (posting.Source, error) {
	if cfg == nil {
		return nil, errors.New("source section is required")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "file":
		if strings.TrimSpace(cfg.File) == "" {
			return nil, errors.New("source.file is required for the file source")
		}
		return posting.NewFileSource(cfg.File, cfg.PageSize, logger), nil
	case "headhunter":
		hh := cfg.Headhunter
		if hh == nil {
			hh = &HeadhunterConfig{}
		}

		var token string
		if hh.TokenFile != "" {
			var err error
			token, err = secrets.Load(secrets.Source{Name: "headhunter token", File: hh.TokenFile})
			if err != nil {
				return nil, err
			}
		}

		client := headhunter.New(logger, token)
		if hh.UserAgent != "" {
			client.UserAgent = hh.UserAgent
		}
		client.SetRateLimit(hh.RequestsPerSecond)

		return headhunter.NewSource(client, hh.Search, cfg.PageSize, logger), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Type)
	}
}

// newSink returns the sink and a function releasing it.
func newSink(ctx context.Context, cfg *SinkConfig, dryRun bool) (sink.Sink, func() error, error) {
	noop := func() error { return nil }

	if cfg == nil {
		cfg = &SinkConfig{}
	}

	kind := strings.ToLower(strings.TrimSpace(cfg.Type))
	if dryRun {
		kind = "memory"
	}

	switch kind {
	case "memory":
		return sink.NewMemory(), noop, nil
	case "", "sqlite":
		path := ""
		if cfg.SQLite != nil {
			path = cfg.SQLite.Path
		}
		s, err := sink.NewSQLite(path, cfg.Table)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case "sheets":
		if cfg.Sheets == nil {
			return nil, noop, errors.New("sink.sheets section is required for the sheets sink")
		}

		var opts []option.ClientOption
		if cfg.Sheets.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
		}

		s, err := sink.NewSheets(ctx, cfg.Sheets.SpreadsheetID, cfg.Table, opts...)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported sink type: %s", cfg.Type)
	}
}

// newBackends builds the primary backend and the enabled secondary ones in order.
func newBackends(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Backend, []ai.Backend, error) {
	if cfg == nil {
		cfg = &AIConfig{}
	}

	primaryName := strings.ToLower(strings.TrimSpace(cfg.Primary))
	if primaryName == "" {
		primaryName = gemini.Name
	}

	primary, err := newBackend(ctx, primaryName, cfg.Backends[primaryName], logger)
	if err != nil {
		return nil, nil, fmt.Errorf("primary backend %s: %w", primaryName, err)
	}

	seen := map[string]bool{primaryName: true}
	secondary := make([]ai.Backend, 0, len(cfg.Secondary))

	for _, name := range cfg.Secondary {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		bc := cfg.Backends[name]
		if bc != nil && bc.Enabled != nil && !*bc.Enabled {
			logger.Info("secondary backend disabled", zap.String("backend", name))
			continue
		}

		backend, err := newBackend(ctx, name, bc, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("secondary backend %s: %w", name, err)
		}
		secondary = append(secondary, backend)
	}

	return primary, secondary, nil
}

func newBackend(ctx context.Context, name string, cfg *BackendConfig, logger *zap.Logger) (ai.Backend, error) {
	if cfg == nil {
		cfg = &BackendConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  name + " api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.backends.%s.api-key-file or %s_API_KEY)", err, name, strings.ToUpper(name))
	}

	logger.Debug("api key loaded", zap.String("backend", name), zap.String("key", secrets.Mask(apiKey)))

	var (
		backend  ai.Backend
		buildErr error
	)

	switch name {
	case gemini.Name:
		backend, buildErr = gemini.New(ctx, apiKey, cfg.Model)
	case openai.Name:
		backend, buildErr = openai.New(openai.Config{
			APIKey:    apiKey,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			MaxTokens: cfg.MaxTokens,
		}, nil)
	case anthropic.Name:
		backend, buildErr = anthropic.New(anthropic.Config{
			APIKey:    apiKey,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			MaxTokens: cfg.MaxTokens,
		}, nil)
	default:
		return nil, fmt.Errorf("unsupported ai backend: %s", name)
	}

	if buildErr != nil {
		return nil, buildErr
	}
	return backend, nil
}

func newFilters(cfg *FiltersConfig, logger *zap.Logger) *filtering.Filtering {
	return filtering.New([]filtering.Filter{
		filtering.NewExcludedCompanies(cfg.ExcludeCompanies, logger),
		filtering.NewExcludedTitles(cfg.ExcludeTitles, logger),
		filtering.NewExcludeFile(cfg.ExcludeFile, logger),
	}, logger)
}

func newDocuments(cfg *DocumentsConfig, logger *zap.Logger) document.Renderer {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return document.NewDirectory(cfg.Directory, logger)
}

func readResume(cfg *ResumeConfig) (string, error) {
	if cfg == nil || strings.TrimSpace(cfg.Path) == "" {
		return "", errors.New("resume.path is required")
	}

	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return "", fmt.Errorf("reading resume: %w", err)
	}

	resume := strings.TrimSpace(string(data))
	if resume == "" {
		return "", fmt.Errorf("resume file %q is empty", cfg.Path)
	}

	return resume, nil
}

func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
