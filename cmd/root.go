package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-research/internal/events"
	"github.com/spigell/job-research/internal/filtering"
	"github.com/spigell/job-research/internal/scoring"
)

const (
	app       = "job-research"
	envPrefix = "JOB_RESEARCH"
)

type Config struct {
	Database  DatabaseConfig   `mapstructure:"database"`
	HTTP      HTTPConfig       `mapstructure:"http"`
	Scraper   ScraperConfig    `mapstructure:"scraper"`
	Schedule  ScheduleConfig   `mapstructure:"schedule"`
	Profile   ProfileConfig    `mapstructure:"profile"`
	Scoring   ScoringConfig    `mapstructure:"scoring"`
	Filters   filtering.Config `mapstructure:"filters"`
	Companies []CompanyConfig  `mapstructure:"companies"`
	Events    EventsConfig     `mapstructure:"events"`
	AI        AIConfig         `mapstructure:"ai"`
	LogOutput string           `mapstructure:"log-output"`
}

type DatabaseConfig struct {
	// Driver is sqlite or postgres.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type ScraperConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user-agent"`
}

type ScheduleConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	RunOnStart bool          `mapstructure:"run-on-start"`
}

type ProfileConfig struct {
	CVPath string `mapstructure:"cv-path"`
	Text   string `mapstructure:"text"`
}

type ScoringConfig struct {
	Weights []scoring.Keyword `mapstructure:"weights"`
}

// CompanyConfig seeds the watch list. Active defaults to true.
type CompanyConfig struct {
	Name       string `mapstructure:"name"`
	CareersURL string `mapstructure:"careers-url"`
	Vendor     string `mapstructure:"vendor"`
	Board      string `mapstructure:"board"`
	Active     *bool  `mapstructure:"active"`
}

type EventsConfig struct {
	RedisURL string `mapstructure:"redis-url"`
	Channel  string `mapstructure:"channel"`
}

type AIConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-research tracks job postings from company job boards and scores them against your CV",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-research.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every key so environment overrides are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "job-research.db")
	v.SetDefault("http.addr", ":3001")
	v.SetDefault("scraper.timeout", 30*time.Second)
	v.SetDefault("scraper.user-agent", "")
	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.interval", 6*time.Hour)
	v.SetDefault("schedule.run-on-start", true)
	v.SetDefault("profile.cv-path", "")
	v.SetDefault("profile.text", "")
	v.SetDefault("filters.remote-only", false)
	v.SetDefault("events.redis-url", "")
	v.SetDefault("events.channel", events.DefaultChannel)
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("log-output", "stderr")
}

func initConfig() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config must exist; the default file is optional.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
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
