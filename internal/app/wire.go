package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quantasea/coinsentry/internal/alert"
	s3blob "github.com/quantasea/coinsentry/internal/blob/s3"
	"github.com/quantasea/coinsentry/internal/cache/memory"
	"github.com/quantasea/coinsentry/internal/cache/redis"
	"github.com/quantasea/coinsentry/internal/config"
	"github.com/quantasea/coinsentry/internal/crypto"
	"github.com/quantasea/coinsentry/internal/display"
	"github.com/quantasea/coinsentry/internal/domain"
	"github.com/quantasea/coinsentry/internal/gateway/binance"
	"github.com/quantasea/coinsentry/internal/gateway/lunarcrush"
	"github.com/quantasea/coinsentry/internal/gateway/static"
	"github.com/quantasea/coinsentry/internal/market"
	"github.com/quantasea/coinsentry/internal/notify"
	"github.com/quantasea/coinsentry/internal/quotes"
	"github.com/quantasea/coinsentry/internal/risk"
	"github.com/quantasea/coinsentry/internal/store/postgres"
)

// Dependencies bundles every concrete dependency the application modes need.
// It is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Portfolio *domain.Portfolio

	Cache     domain.QuoteCache
	Quotes    *quotes.Service
	Evaluator *risk.Evaluator
	Detector  *alert.Detector
	Notifier  *notify.Notifier
	Renderer  *display.Renderer
	Markets   domain.MarketProvider

	// Ledger is nil in modes that do not persist trades.
	Ledger domain.TradeLedger

	// StreamFeed is non-nil only when the exchange stream is enabled.
	StreamFeed *binance.StreamFeed

	// Archiver is non-nil only when ledger archival is enabled.
	Archiver *s3blob.LedgerArchiver
}

// needsPostgres returns true for modes that execute trades and therefore
// require the persistent ledger.
func needsPostgres(mode string) bool {
	switch mode {
	case "portfolio", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Portfolio: buildPortfolio(cfg.Portfolio),
	}

	// --- Quote cache ---
	switch cfg.Cache.Backend {
	case "redis":
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Cache.Redis.Addr,
			Password:   cfg.Cache.Redis.Password,
			DB:         cfg.Cache.Redis.DB,
			PoolSize:   cfg.Cache.Redis.PoolSize,
			MaxRetries: cfg.Cache.Redis.MaxRetries,
			TLSEnabled: cfg.Cache.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Cache = redis.NewQuoteCache(redisClient)
	default:
		deps.Cache = memory.NewQuoteCache()
	}

	// --- Gateways ---
	var (
		prices     domain.PriceGateway
		sentiments domain.SentimentGateway
	)
	var staticGW *static.Gateway
	if cfg.Exchange.Name == "static" || cfg.Sentiment.Provider == "static" {
		staticGW = static.New()
		// Seed prices from the configured purchase prices so the static
		// exchange is usable out of the box.
		for _, h := range cfg.Portfolio.Holdings {
			staticGW.SetPrice(h.Symbol, h.PurchasePrice)
		}
	}

	switch cfg.Exchange.Name {
	case "binance":
		prices = binance.NewClient(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, cfg.Exchange.SymbolMap)
		if cfg.Exchange.StreamEnabled && cfg.Exchange.StreamURL != "" {
			deps.StreamFeed = binance.NewStreamFeed(
				cfg.Exchange.StreamURL,
				cfg.Exchange.SymbolMap,
				deps.Cache,
				logger,
			)
		}
	default:
		prices = staticGW
	}

	switch cfg.Sentiment.Provider {
	case "lunarcrush":
		sentiments = lunarcrush.NewClient(cfg.Sentiment.APIURL, cfg.Sentiment.APIKey)
	default:
		sentiments = staticGW
	}

	deps.Quotes = quotes.NewService(deps.Cache, prices, sentiments, cfg.Sentiment.CacheTTL(), logger)
	deps.Markets = market.NewProvider(cfg.Market.BaseURL)

	// --- Risk and change detection ---
	deps.Evaluator = risk.NewEvaluator(
		cfg.Portfolio.MaxAllocation,
		cfg.Sentiment.PositiveThreshold,
		cfg.Sentiment.NegativeThreshold,
		logger,
	)
	deps.Detector = alert.NewDetector(alert.Thresholds{
		PortfolioValuePct: cfg.Notify.Thresholds.PortfolioValueChangePercent,
		HoldingPricePct:   cfg.Notify.Thresholds.HoldingValueChangePercent,
		SentimentDelta:    cfg.Notify.Thresholds.SentimentChange,
	}, logger)

	// --- Notifications ---
	notifier, err := buildNotifier(cfg.Notify, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Notifier = notifier

	// --- Display ---
	deps.Renderer = display.NewRenderer(
		cfg.Display.UseColors,
		cfg.Sentiment.PositiveThreshold,
		cfg.Sentiment.NegativeThreshold,
	)

	// --- PostgreSQL trade ledger (only for modes that execute trades) ---
	if needsPostgres(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.Ledger = postgres.NewTradeStore(pgClient.Pool())
	}

	// --- Signed ledger archival (requires both the ledger and S3) ---
	if cfg.Archive.Enabled && deps.Ledger != nil {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.Archive.S3.Endpoint,
			Region:         cfg.Archive.S3.Region,
			Bucket:         cfg.Archive.S3.Bucket,
			AccessKey:      cfg.Archive.S3.AccessKey,
			SecretKey:      cfg.Archive.S3.SecretKey,
			UseSSL:         cfg.Archive.S3.UseSSL,
			ForcePathStyle: cfg.Archive.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		var signer s3blob.Signer
		if cfg.Archive.SigningKey != "" {
			signer = crypto.NewHMACSigner([]byte(cfg.Archive.SigningKey))
		}
		deps.Archiver = s3blob.NewLedgerArchiver(
			s3blob.NewWriter(s3Client),
			deps.Ledger,
			signer,
			logger,
		)
	}

	return deps, cleanup, nil
}

// buildPortfolio converts the configured holdings into the in-memory
// portfolio the monitor mutates.
func buildPortfolio(cfg config.PortfolioConfig) *domain.Portfolio {
	p := &domain.Portfolio{
		Cash:     cfg.Cash,
		Holdings: make([]domain.Holding, 0, len(cfg.Holdings)),
	}
	for _, h := range cfg.Holdings {
		p.Holdings = append(p.Holdings, domain.Holding{
			Symbol:        h.Symbol,
			Quantity:      h.Quantity,
			PurchasePrice: h.PurchasePrice,
			StopLoss:      h.StopLoss,
		})
	}
	return p
}

// buildNotifier assembles the enabled senders. When a credentials file is
// configured it supplies the Twilio auth token and SendGrid API key instead
// of the plaintext config fields.
func buildNotifier(cfg config.NotifyConfig, logger *slog.Logger) (*notify.Notifier, error) {
	twilioToken := cfg.Twilio.AuthToken
	sendgridKey := cfg.SendGrid.APIKey
	if cfg.CredentialsPath != "" {
		creds, err := crypto.LoadCredentials(cfg.CredentialsPath, cfg.CredentialsPassword)
		if err != nil {
			return nil, fmt.Errorf("wire: load credentials: %w", err)
		}
		if creds.TwilioAuthToken != "" {
			twilioToken = creds.TwilioAuthToken
		}
		if creds.SendGridAPIKey != "" {
			sendgridKey = creds.SendGridAPIKey
		}
	}

	var senders []notify.Sender
	if cfg.SMSEnabled {
		senders = append(senders, notify.NewTwilioSender(
			cfg.Twilio.AccountSID,
			twilioToken,
			cfg.Twilio.FromNumber,
			cfg.Twilio.ToNumber,
		))
	}
	if cfg.EmailEnabled {
		senders = append(senders, notify.NewSendGridSender(
			sendgridKey,
			cfg.SendGrid.FromEmail,
			cfg.SendGrid.ToEmail,
		))
	}
	return notify.NewNotifier(senders, logger), nil
}
