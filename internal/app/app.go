// Package app wires configuration, storage, clients, and services into a
// running Folio instance. It is the shared core used by cmd/folio-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/folioworks/folio/internal/clients/brokergw"
	"github.com/folioworks/folio/internal/clients/quotes"
	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
	"github.com/folioworks/folio/internal/services/fno"
	"github.com/folioworks/folio/internal/services/marketdata"
	"github.com/folioworks/folio/internal/services/portfoliosync"
	"github.com/folioworks/folio/internal/services/summary"
	"github.com/folioworks/folio/internal/services/syncsafety"
	"github.com/folioworks/folio/internal/storage/surrealdb"
)

// App holds all initialized services and clients.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Storage        interfaces.StorageManager
	QuoteClient    interfaces.QuoteProvider
	BrokerClients  map[models.BrokerType]interfaces.BrokerClient
	MarketService  interfaces.MarketDataService
	SafetyService  interfaces.SyncSafetyService
	SyncService    interfaces.PortfolioSyncService
	FnoService     interfaces.FnoPositionService
	SummaryService interfaces.SummaryService
	StartupTime    time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Load configuration - check provided path, FOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Resolve API keys
	ctx := context.Background()
	internalStore := storageManager.InternalStore()

	gatewayKey, err := common.ResolveAPIKey(ctx, internalStore, "broker_gateway_api_key", config.Clients.BrokerGateway.APIKey)
	if err != nil {
		logger.Warn().Msg("Broker gateway API key not configured - position sync will be unavailable")
	}

	quotesKey, err := common.ResolveAPIKey(ctx, internalStore, "quotes_api_key", config.Clients.Quotes.APIKey)
	if err != nil {
		logger.Warn().Msg("Quote API key not configured - pricing will be unavailable")
	}

	// Initialize API clients
	gatewayClient := brokergw.NewClient(gatewayKey,
		brokergw.WithBaseURL(config.Clients.BrokerGateway.BaseURL),
		brokergw.WithLogger(logger),
		brokergw.WithRateLimit(config.Clients.BrokerGateway.RateLimit),
		brokergw.WithTimeout(config.Clients.BrokerGateway.GetTimeout()),
	)

	quoteClient := quotes.NewClient(quotesKey,
		quotes.WithBaseURL(config.Clients.Quotes.BaseURL),
		quotes.WithLogger(logger),
		quotes.WithRateLimit(config.Clients.Quotes.RateLimit),
		quotes.WithTimeout(config.Clients.Quotes.GetTimeout()),
	)

	// All supported brokers go through the same gateway client; the broker
	// tag in the request path selects the integration.
	brokerClients := map[models.BrokerType]interfaces.BrokerClient{
		models.BrokerZerodha:  gatewayClient,
		models.BrokerUpstox:   gatewayClient,
		models.BrokerAngelOne: gatewayClient,
	}

	// Initialize services
	marketService := marketdata.NewService(quoteClient, marketdata.NewNSECalendar(), config.Market, logger)
	safetyService := syncsafety.NewService(marketService, logger)
	syncService := portfoliosync.NewService(storageManager, brokerClients, safetyService, marketService, logger)
	fnoService := fno.NewService(storageManager.PositionStore(), marketService, logger)
	summaryService := summary.NewService(storageManager.PositionStore(), marketService, logger)

	a := &App{
		Config:         config,
		Logger:         logger,
		Storage:        storageManager,
		QuoteClient:    quoteClient,
		BrokerClients:  brokerClients,
		MarketService:  marketService,
		SafetyService:  safetyService,
		SyncService:    syncService,
		FnoService:     fnoService,
		SummaryService: summaryService,
		StartupTime:    startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartSyncScheduler launches the background full-sync goroutine.
func (a *App) StartSyncScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startSyncScheduler(schedulerCtx, a.SyncService, a.SafetyService, a.Logger, a.Config.Sync.GetInterval())
}
