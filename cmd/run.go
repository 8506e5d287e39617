package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/dedup"
	"github.com/spigell/jobfit/internal/filtering"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/pipeline"
	"github.com/spigell/jobfit/internal/posting"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes               = "Yes"
	PromptNo                = "No"
	PromptReportByCompanies = "Report by companies"
	PromptPostingsToFile    = "Dump postings to file"
	PromptAppendToExclude   = "Append all postings to exclude file"
)

var errExit = errors.New("exit requested")

func newPrompt(excludeFile string) promptui.Select {
	items := []string{PromptYes, PromptNo, PromptReportByCompanies, PromptPostingsToFile}
	if excludeFile != "" {
		items = append(items, PromptAppendToExclude)
	}
	return promptui.Select{
		Label: "Proceed?",
		Items: items,
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Gather postings, score them and store the results",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before scoring")
	runCmd.Flags().Bool("dry-run", false, "keep results in memory instead of the configured sink")
	runCmd.Flags().Int("limit", 0, "process at most this many postings (0 means all)")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	runID := uuid.NewString()
	logger := logger.WithRunID(base, runID)

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the jobfit", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	limit, _ := cmd.Flags().GetInt("limit")

	p, closeSink := preparePipeline(ctx, config, dryRun, logger)
	defer func() {
		if err := closeSink(); err != nil {
			logger.Warn("closing the sink", zap.Error(err))
		}
	}()

	source, err := newSource(config.Source, logger)
	if err != nil {
		logger.Fatal("preparing the source", zap.Error(err))
	}

	postings, err := posting.Collect(ctx, source, posting.Handlers{
		OnMetrics: func(m posting.Metrics) {
			logger.Info("source page",
				zap.Int("page", m.Page),
				zap.Int("processed", m.Processed),
				zap.Int("skipped", m.Skipped),
				zap.Int("failed", m.Failed),
			)
		},
	})
	if err != nil {
		logger.Fatal("gathering postings", zap.Error(err), zap.Int("gathered", len(postings)))
	}

	filters := config.Filters
	if filters == nil {
		filters = &FiltersConfig{}
	}

	postings, err = newFilters(filters, logger).RunFilters(ctx, postings)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if limit > 0 && len(postings) > limit {
		postings = postings[:limit]
	}

	logger.Info("gathered postings", zap.Int("count", len(postings)))

	if len(postings) == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	prompt := newPrompt(filters.ExcludeFile)
	for !autoApprove {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, postings, filters.ExcludeFile); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		autoApprove = action == PromptYes
	}

	if err := enrich(ctx, p, postings); err != nil {
		logger.Fatal("enrichment did not complete", zap.Error(err))
	}
}

// enrich seeds the dedup index and runs every posting through p. An interrupted
// run is an error so the process exits non-zero.
func enrich(ctx context.Context, p *pipeline.Pipeline, postings []posting.RawPosting) error {
	if err := p.Seed(ctx); err != nil {
		return fmt.Errorf("seeding the dedup index: %w", err)
	}

	summary, err := p.Run(ctx, postings)
	if err != nil {
		return fmt.Errorf("run interrupted after %d of %d postings: %w", summary.Total, len(postings), err)
	}

	return nil
}

func handleAction(action string, logger *zap.Logger, postings []posting.RawPosting, excludeFile string) error {
	switch action {
	case PromptYes:
		return nil
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(posting.ReportByCompany(postings), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", len(postings)))
		return nil
	case PromptPostingsToFile:
		filename, err := posting.DumpToTmpFile(postings)
		if err != nil {
			return fmt.Errorf("dump postings to file: %w", err)
		}
		logger.Info("dumping postings to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExclude:
		if err := filtering.AppendToExcludeFile(excludeFile, postings); err != nil {
			return fmt.Errorf("append to exclude file: %w", err)
		}
		logger.Info("appended to exclude file", zap.String("filename", excludeFile))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// preparePipeline builds every collaborator of the pipeline. Setup failures are fatal.
func preparePipeline(ctx context.Context, config *Config, dryRun bool, logger *zap.Logger) (*pipeline.Pipeline, func() error) {
	extractor, err := newExtractor(config.Salary)
	if err != nil {
		logger.Fatal("preparing the salary gate", zap.Error(err))
	}

	resume, err := readResume(config.Resume)
	if err != nil {
		logger.Fatal("reading the resume", zap.Error(err), zap.String("hint", "set resume.path in the configuration file"))
	}

	aiConfig := config.AI
	if aiConfig == nil {
		aiConfig = &AIConfig{}
	}

	primary, secondary, err := newBackends(ctx, aiConfig, logger)
	if err != nil {
		logger.Fatal("preparing ai backends", zap.Error(err))
	}

	sinkConfig := config.Sink
	if sinkConfig == nil {
		sinkConfig = &SinkConfig{HeaderRows: pipeline.DefaultHeaderRows}
	}

	s, closeSink, err := newSink(ctx, sinkConfig, dryRun)
	if err != nil {
		logger.Fatal("preparing the sink", zap.Error(err))
	}

	if dryRun {
		logger.Info("dry run: results are kept in memory")
	}

	aggregator := ai.NewAggregator(ai.Config{
		Timeout:      aiConfig.Timeout,
		Weights:      ai.Weights(aiConfig.Weights),
		MaxLogLength: aiConfig.MaxLogLength,
	}, logger)

	p, err := pipeline.New(pipeline.Config{
		PromotionThreshold: aiConfig.PromotionThreshold,
		KeyColumns:         []int{sinkConfig.DedupKeyColumn},
		HeaderRows:         sinkConfig.HeaderRows,
	}, pipeline.Deps{
		Salary:    extractor,
		Index:     dedup.New(),
		Scorer:    aggregator,
		Primary:   primary,
		Secondary: secondary,
		Sink:      s,
		Documents: newDocuments(config.Documents, logger),
		Resume:    resume,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("preparing the pipeline", zap.Error(err))
	}

	return p, closeSink
}
