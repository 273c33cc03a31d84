package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/ai"
	"github.com/spigell/job-research/internal/ai/gemini"
	"github.com/spigell/job-research/internal/ats"
	"github.com/spigell/job-research/internal/events"
	"github.com/spigell/job-research/internal/filtering"
	"github.com/spigell/job-research/internal/ingest"
	"github.com/spigell/job-research/internal/jobs"
	"github.com/spigell/job-research/internal/logger"
	"github.com/spigell/job-research/internal/report"
	"github.com/spigell/job-research/internal/scoring"
	"github.com/spigell/job-research/internal/secrets"
	"github.com/spigell/job-research/internal/store"
	"github.com/spigell/job-research/internal/tools"
	"github.com/spigell/job-research/internal/tracking"
)

// defaultCompanies is the watch list used when the config names none.
var defaultCompanies = []jobs.CompanyWatch{
	{Name: "Anthropic", CareersURL: "https://www.anthropic.com/careers", Vendor: ats.VendorGreenhouse, Board: "anthropic", Active: true},
	{Name: "OpenAI", CareersURL: "https://openai.com/careers", Active: true},
	{Name: "Vercel", CareersURL: "https://vercel.com/careers", Vendor: ats.VendorGreenhouse, Board: "vercel", Active: true},
	{Name: "Cursor", CareersURL: "https://www.cursor.com/careers", Vendor: ats.VendorGreenhouse, Board: "cursor", Active: true},
	{Name: "Hugging Face", CareersURL: "https://huggingface.co/jobs", Active: true},
	{Name: "GitHub", CareersURL: "https://github.com/about/careers", Active: true},
	{Name: "Microsoft", CareersURL: "https://careers.microsoft.com", Active: true},
	{Name: "Google DeepMind", CareersURL: "https://deepmind.google/about/careers", Active: true},
	{Name: "Perplexity", CareersURL: "https://www.perplexity.ai/hub/careers", Vendor: ats.VendorGreenhouse, Board: "perplexityai", Active: true},
	{Name: "Replit", CareersURL: "https://replit.com/careers", Vendor: ats.VendorGreenhouse, Board: "replit", Active: true},
}

// application holds the wired services shared by the commands.
type application struct {
	config     *Config
	logger     *zap.Logger
	store      *store.Store
	publisher  events.Publisher
	ingester   *ingest.Ingester
	filters    []filtering.Filter
	analyzer   *scoring.Analyzer
	tracker    *tracking.Tracker
	profiles   scoring.ProfileLoader
	dispatcher *tools.Dispatcher
	exporter   *report.Exporter
	closers    []func() error
}

// newApplication builds the logger, the store and every service on top of them.
func newApplication(ctx context.Context) *application {
	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	logger, err := logger.NewWithOptions(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: config.LogOutput,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(*config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	a := &application{config: config, logger: logger}

	a.store, err = store.Open(config.Database.Driver, config.Database.DSN)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err), zap.String("driver", config.Database.Driver))
	}
	a.closers = append(a.closers, a.store.Close)

	if err := a.store.SeedCompanies(ctx, watchList(config.Companies)); err != nil {
		logger.Fatal("seeding the watch list", zap.Error(err))
	}

	a.publisher = a.newPublisher(ctx)

	table := scoring.DefaultTable()
	if len(config.Scoring.Weights) > 0 {
		table, err = table.WithWeights(config.Scoring.Weights)
		if err != nil {
			logger.Fatal("invalid scoring weights", zap.Error(err))
		}
	}

	client := ats.NewClient(logger.Named("ats"), config.Scraper.Timeout)
	if ua := strings.TrimSpace(config.Scraper.UserAgent); ua != "" {
		client.UserAgent = ua
	}

	filterCfg := config.Filters
	steps := filtering.Default()
	for _, step := range steps {
		if err := step.Validate(&filterCfg); err != nil {
			logger.Fatal("invalid filter configuration", zap.String("filter", step.Name()), zap.Error(err))
		}
	}
	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
		)
	}

	a.filters = steps
	scraper := ats.NewWatchedScraper(a.store, client, logger.Named("ats"))
	a.ingester = ingest.New(a.store, scraper, a.publisher, logger.Named("ingest")).WithFilters(&filterCfg, steps)
	a.analyzer = scoring.NewAnalyzer(a.store, table, a.publisher, logger.Named("scoring"))
	a.tracker = tracking.New(a.store, a.publisher, logger.Named("tracking"))
	a.profiles = scoring.ProfileLoader{
		DefaultPath: config.Profile.CVPath,
		DefaultText: config.Profile.Text,
		Logger:      logger,
	}
	a.exporter = report.New(a.tracker, logger.Named("report"))

	agent, err := newAgent(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("configuring the agent", zap.Error(err))
	}

	a.dispatcher = tools.NewDispatcher(tools.Deps{
		Searcher:  a.ingester,
		Analyzer:  a.analyzer,
		Tracker:   a.tracker,
		WatchList: a.store,
		Profiles:  a.profiles,
		Agent:     agent,
		Logger:    logger.Named("tools"),
	})

	return a
}

func (a *application) newPublisher(ctx context.Context) events.Publisher {
	url := strings.TrimSpace(a.config.Events.RedisURL)
	if url == "" {
		return events.Nop{}
	}

	publisher, err := events.NewRedis(ctx, url, a.config.Events.Channel, a.logger.Named("events"))
	if err != nil {
		// events are optional, the tracker keeps working without them
		a.logger.Warn("redis is unavailable, events disabled", zap.Error(err))
		return events.Nop{}
	}
	a.closers = append(a.closers, publisher.Close)
	return publisher
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func newAgent(ctx context.Context, cfg AIConfig, logger *zap.Logger) (ai.Agent, error) {
	if !cfg.Enabled {
		logger.Debug("ai agent disabled, invoke_agent answers with a placeholder")
		return ai.Placeholder{}, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		if errors.Is(err, secrets.ErrNotConfigured) {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewAgent(generator, logger.Named("agent"), cfg.Gemini.MaxLogLength), nil
}

// watchList converts configured companies, falling back to the defaults.
func watchList(companies []CompanyConfig) []jobs.CompanyWatch {
	if len(companies) == 0 {
		return defaultCompanies
	}

	result := make([]jobs.CompanyWatch, 0, len(companies))
	for _, c := range companies {
		result = append(result, jobs.CompanyWatch{
			Name:       strings.TrimSpace(c.Name),
			CareersURL: strings.TrimSpace(c.CareersURL),
			Vendor:     strings.ToLower(strings.TrimSpace(c.Vendor)),
			Board:      strings.TrimSpace(c.Board),
			Active:     c.Active == nil || *c.Active,
		})
	}
	return result
}

func redacted(c Config) Config {
	if c.AI.Gemini.APIKey != "" {
		c.AI.Gemini.APIKey = "***"
	}
	if c.Events.RedisURL != "" {
		c.Events.RedisURL = "***"
	}
	if c.Database.Driver == store.DriverPostgres {
		c.Database.DSN = "***"
	}
	return c
}
