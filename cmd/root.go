package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/headhunter"
	"github.com/spigell/jobfit/internal/posting"
	"github.com/spigell/jobfit/internal/salary"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobfit"
)

type Config struct {
	Source    *SourceConfig    `mapstructure:"source"`
	Sink      *SinkConfig      `mapstructure:"sink"`
	Resume    *ResumeConfig    `mapstructure:"resume"`
	Salary    *SalaryConfig    `mapstructure:"salary"`
	AI        *AIConfig        `mapstructure:"ai"`
	Documents *DocumentsConfig `mapstructure:"documents"`
	Filters   *FiltersConfig   `mapstructure:"filters"`
}

type SourceConfig struct {
	// Type is either file or headhunter.
	Type       string            `mapstructure:"type"`
	File       string            `mapstructure:"file"`
	PageSize   int               `mapstructure:"page-size"`
	Headhunter *HeadhunterConfig `mapstructure:"headhunter"`
}

type HeadhunterConfig struct {
	Search            *headhunter.SearchParams `mapstructure:"search"`
	TokenFile         string                   `mapstructure:"token-file"`
	UserAgent         string                   `mapstructure:"user-agent"`
	RequestsPerSecond float64                  `mapstructure:"requests-per-second"`
}

type SinkConfig struct {
	// Type is one of sqlite, sheets or memory.
	Type           string        `mapstructure:"type"`
	Table          string        `mapstructure:"table"`
	HeaderRows     int           `mapstructure:"header-rows"`
	DedupKeyColumn int           `mapstructure:"dedup-key-column"`
	SQLite         *SQLiteConfig `mapstructure:"sqlite"`
	Sheets         *SheetsConfig `mapstructure:"sheets"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type SheetsConfig struct {
	CredentialsFile string `mapstructure:"credentials-file"`
	SpreadsheetID   string `mapstructure:"spreadsheet-id"`
}

type ResumeConfig struct {
	Path string `mapstructure:"path"`
}

type SalaryConfig struct {
	Floor    float64  `mapstructure:"floor"`
	Mode     string   `mapstructure:"mode"`
	Keywords []string `mapstructure:"keywords"`
}

type AIConfig struct {
	Primary            string                    `mapstructure:"primary"`
	Secondary          []string                  `mapstructure:"secondary"`
	PromotionThreshold int                       `mapstructure:"promotion-threshold"`
	Timeout            time.Duration             `mapstructure:"timeout"`
	MaxLogLength       int                       `mapstructure:"max-log-length"`
	Weights            map[string]float64        `mapstructure:"weights"`
	Backends           map[string]*BackendConfig `mapstructure:"backends"`
}

type BackendConfig struct {
	Enabled    *bool  `mapstructure:"enabled"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
	MaxTokens  int    `mapstructure:"max-tokens"`
}

// FiltersConfig drops postings before scoring.
type FiltersConfig struct {
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeTitles    []string `mapstructure:"exclude-titles"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
}

type DocumentsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobfit scores job postings against a resume and keeps the results in a table",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

// credentialEnv maps config keys to the environment variables that may set them.
var credentialEnv = map[string]string{
	"ai.backends.gemini.api-key":         "GEMINI_API_KEY",
	"ai.backends.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
	"ai.backends.openai.api-key":         "OPENAI_API_KEY",
	"ai.backends.openai.api-key-file":    "OPENAI_API_KEY_FILE",
	"ai.backends.anthropic.api-key":      "ANTHROPIC_API_KEY",
	"ai.backends.anthropic.api-key-file": "ANTHROPIC_API_KEY_FILE",
	"source.headhunter.token-file":       "HH_TOKEN_FILE",
	"sink.sheets.credentials-file":       "GOOGLE_APPLICATION_CREDENTIALS",
}

func init() {
	for key, env := range credentialEnv {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobfit.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("source.type", "file")
	viper.SetDefault("source.page-size", posting.DefaultPageSize)
	viper.SetDefault("source.headhunter.requests-per-second", headhunter.DefaultRequestsPerSecond)

	viper.SetDefault("sink.type", "sqlite")
	viper.SetDefault("sink.table", "Jobs")
	viper.SetDefault("sink.header-rows", 1)
	viper.SetDefault("sink.dedup-key-column", 0)
	viper.SetDefault("sink.sqlite.path", app+".db")

	viper.SetDefault("salary.floor", salary.DefaultFloor)
	viper.SetDefault("salary.mode", string(salary.DefaultMode))

	viper.SetDefault("ai.primary", "gemini")
	viper.SetDefault("ai.promotion-threshold", ai.DefaultPromotionThreshold)
	viper.SetDefault("ai.timeout", ai.DefaultTimeout)
	viper.SetDefault("ai.max-log-length", 200)

	viper.SetDefault("documents.enabled", true)
	viper.SetDefault("documents.directory", "resumes")
}

func initConfig() {
	// Only run and salary read the config file.
	if runCmd.CalledAs() == "" && salaryCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	// salary works on defaults alone.
	if errors.As(err, &notFound) && salaryCmd.CalledAs() != "" {
		return
	}

	// We can't proceed if the config file parsed with error.
	if err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
