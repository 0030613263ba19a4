// Package app assembles the resort agents from configuration: storage,
// language model, external clients, agents and the use cases built on them.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	v1 "github.com/linapoint/resortagents/internal/api/rest/v1"
	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/config"
	"github.com/linapoint/resortagents/internal/db"
	"github.com/linapoint/resortagents/internal/llm"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/media"
	"github.com/linapoint/resortagents/internal/ota"
	"github.com/linapoint/resortagents/internal/payments"
	"github.com/linapoint/resortagents/internal/recursion"
	"github.com/linapoint/resortagents/internal/repository"
	"github.com/linapoint/resortagents/internal/service"
	"github.com/linapoint/resortagents/internal/whatsapp"
)

const externalTimeout = 10 * time.Second

// App holds every wired component. Close releases the database.
type App struct {
	Config *config.Config
	Log    logger.Logger
	DB     *sqlx.DB

	Scout   *agents.PriceScout
	Curator *agents.Curator
	Content *agents.Content

	Auth        service.AuthService
	Booking     service.BookingService
	Magic       service.MagicService
	Concierge   service.ConciergeService
	WhatsApp    service.WhatsAppJobs
	Marketing   service.MarketingService
	SelfImprove service.SelfImproveService
	Events      service.EventService
	Payments    service.PaymentService
}

// Options overrides collaborators, mostly for tests. Zero values build the
// configured defaults.
type Options struct {
	LLM        llm.LLMClient
	Sender     service.MessageSender
	Sources    []ota.Source
	HTTPClient *http.Client
}

// New opens the database named in cfg and wires the application.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a, err := wire(ctx, cfg, log, database, opts)
	if err != nil {
		database.Close()
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, cfg *config.Config, log logger.Logger, database *sqlx.DB, opts Options) (*App, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: externalTimeout}
	}

	client := opts.LLM
	if client == nil {
		llmCfg := llm.FromSettings(cfg.LLM)
		var observer llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			observer = llm.NewLogObserver(log)
		}
		c, err := llm.NewClient(ctx, llmCfg, observer)
		if err != nil {
			return nil, fmt.Errorf("building llm client: %w", err)
		}
		client = c
	}

	sender := opts.Sender
	if sender == nil {
		sender = whatsapp.NewClient(cfg.WhatsApp, httpClient)
	}

	sources := opts.Sources
	if len(sources) == 0 {
		sources = ota.Catalogue()
	}

	// Repositories
	profiles := repository.NewSQLiteProfileRepo(database)
	reservations := repository.NewSQLiteReservationRepo(database)
	tours := repository.NewSQLiteTourBookingRepo(database)
	questionnaires := repository.NewSQLiteQuestionnaireRepo(database)
	magicContents := repository.NewSQLiteMagicContentRepo(database)
	chats := repository.NewSQLiteWhatsAppRepo(database)
	campaigns := repository.NewSQLiteCampaignRepo(database)
	marketingContent := repository.NewSQLiteMarketingContentRepo(database)
	marketingLogs := repository.NewSQLiteMarketingLogRepo(database)
	emails := repository.NewSQLiteEmailListRepo(database)
	runs := repository.NewSQLiteAgentRunRepo(database)
	prompts := repository.NewSQLiteAgentPromptRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Agents
	loop := recursion.Options{MaxIterations: cfg.Agents.MaxIterations, MinScore: recursion.Threshold(cfg.Agents.MinScore)}
	systemPrompts := agents.NewPrompts(prompts)
	scanner := ota.NewScanner(sources, log, ota.ScannerOptions{
		CacheSize: cfg.Agents.ScanCacheSize,
		CacheTTL:  cfg.Agents.ScanCacheTTL,
	})
	scout := agents.NewPriceScout(scanner)
	curator := agents.NewCurator()
	content := agents.NewContent(client, media.NewMockStudio(), systemPrompts, loop, log)
	concierge := agents.NewConcierge(client, systemPrompts, loop, log)
	crew := agents.NewMarketingCrew(client, systemPrompts, loop, log)
	improver := agents.NewSelfImprover(client, systemPrompts, log)
	analyst := agents.NewProfileAnalyst(client, systemPrompts)

	gateway := payments.NewGatewayFromConfig(cfg.Payments, httpClient, log)
	observer := service.NewLogUseCaseObserver(log, cfg.Server.SlowRequest)

	marketing := service.NewMarketingService(crew, campaigns, marketingContent, marketingLogs, emails, profiles, runs, log, observer)
	selfImprove := service.NewSelfImproveService(improver, runs, reservations, tours, profiles, prompts, log, observer)

	return &App{
		Config:      cfg,
		Log:         log,
		DB:          database,
		Scout:       scout,
		Curator:     curator,
		Content:     content,
		Auth:        service.NewAuthService(profiles, cfg.Server.AdminEmails),
		Booking:     service.NewBookingService(scout, curator, profiles, tours, uow, runs, observer),
		Magic:       service.NewMagicService(content, reservations, profiles, questionnaires, magicContents, runs, sender, log, observer),
		Concierge:   service.NewConciergeService(concierge, profiles, chats, sender, runs, log, observer),
		WhatsApp:    service.NewWhatsAppJobs(sender, profiles, reservations, chats, cfg.WhatsApp.SendsPerSecond, log, observer),
		Marketing:   marketing,
		SelfImprove: selfImprove,
		Events:      service.NewEventService(profiles, analyst, selfImprove, runs, log, observer),
		Payments:    service.NewPaymentService(gateway, tours, profiles, marketing, cfg.Payments.StripeWebhookSecret, log, observer),
	}, nil
}

// APIServices exposes the use cases to the HTTP layer.
func (a *App) APIServices() v1.Services {
	return v1.Services{
		Auth:        a.Auth,
		Booking:     a.Booking,
		Magic:       a.Magic,
		Concierge:   a.Concierge,
		WhatsApp:    a.WhatsApp,
		Marketing:   a.Marketing,
		SelfImprove: a.SelfImprove,
		Events:      a.Events,
		Payments:    a.Payments,
	}
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
