// Package config defines the top-level configuration for coinsentry and
// provides loading and validation helpers.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by COINSENTRY_* environment
// variables.
type Config struct {
	Exchange  ExchangeConfig  `toml:"exchange"`
	Sentiment SentimentConfig `toml:"sentiment"`
	Cache     CacheConfig     `toml:"cache"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Portfolio PortfolioConfig `toml:"portfolio"`
	Notify    NotifyConfig    `toml:"notify"`
	Market    MarketConfig    `toml:"market"`
	Display   DisplayConfig   `toml:"display"`
	Archive   ArchiveConfig   `toml:"archive"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ExchangeConfig holds the spot-price provider parameters. SymbolMap maps
// app symbols to exchange symbols (e.g. "SUI" -> "SUIUSDT").
type ExchangeConfig struct {
	Name          string            `toml:"name"`
	BaseURL       string            `toml:"base_url"`
	APIKey        string            `toml:"api_key"`
	APISecret     string            `toml:"api_secret"`
	SymbolMap     map[string]string `toml:"symbol_map"`
	StreamEnabled bool              `toml:"stream_enabled"`
	StreamURL     string            `toml:"stream_url"`
}

// SentimentConfig holds the sentiment provider parameters and the decision
// thresholds derived from its scores.
type SentimentConfig struct {
	Provider          string  `toml:"provider"`
	APIURL            string  `toml:"api_url"`
	APIKey            string  `toml:"api_key"`
	CacheTTLSecs      int     `toml:"cache_ttl_secs"`
	PositiveThreshold float64 `toml:"positive_threshold"`
	NegativeThreshold float64 `toml:"negative_threshold"`
}

// CacheTTL returns the sentiment cache lifetime as a duration.
func (c SentimentConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// CacheConfig selects and configures the quote cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"` // "redis" or "memory"
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds the trade-ledger database connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// HoldingConfig is one initial position. Holdings are always supplied as
// data, never compiled in.
type HoldingConfig struct {
	Symbol        string  `toml:"symbol"`
	Quantity      float64 `toml:"quantity"`
	PurchasePrice float64 `toml:"purchase_price"`
	StopLoss      float64 `toml:"stop_loss"`
}

// PortfolioConfig holds the monitored positions and the rebalancing cap.
type PortfolioConfig struct {
	CheckIntervalSecs int             `toml:"check_interval_secs"`
	MaxAllocation     float64         `toml:"max_allocation"`
	Cash              float64         `toml:"cash"`
	Holdings          []HoldingConfig `toml:"holdings"`
}

// CheckInterval returns the monitoring cycle interval as a duration.
func (c PortfolioConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSecs) * time.Second
}

// ThresholdConfig gates change-detection alerts. All three are independent;
// a delta must strictly exceed its threshold to fire.
type ThresholdConfig struct {
	PortfolioValueChangePercent float64 `toml:"portfolio_value_change_percent"`
	HoldingValueChangePercent   float64 `toml:"holding_value_change_percent"`
	SentimentChange             float64 `toml:"sentiment_change"`
}

// TwilioConfig holds SMS delivery credentials.
type TwilioConfig struct {
	AccountSID string `toml:"account_sid"`
	AuthToken  string `toml:"auth_token"`
	FromNumber string `toml:"from_number"`
	ToNumber   string `toml:"to_number"`
}

// SendGridConfig holds email delivery credentials.
type SendGridConfig struct {
	APIKey    string `toml:"api_key"`
	FromEmail string `toml:"from_email"`
	ToEmail   string `toml:"to_email"`
}

// NotifyConfig holds the per-channel toggles, credentials, and alert
// thresholds. CredentialsPath optionally points at an encrypted credentials
// file (see internal/crypto) that supplies the Twilio auth token and
// SendGrid API key instead of the plaintext fields.
type NotifyConfig struct {
	SMSEnabled          bool            `toml:"sms_enabled"`
	EmailEnabled        bool            `toml:"email_enabled"`
	Twilio              TwilioConfig    `toml:"twilio"`
	SendGrid            SendGridConfig  `toml:"sendgrid"`
	CredentialsPath     string          `toml:"credentials_path"`
	CredentialsPassword string          `toml:"credentials_password"`
	Thresholds          ThresholdConfig `toml:"thresholds"`
}

// MarketConfig holds the market overview screen parameters.
type MarketConfig struct {
	RefreshSecs   int      `toml:"refresh_secs"`
	SortBy        string   `toml:"sort_by"` // "market_cap" or "price_change_24h"
	PinnedSymbols []string `toml:"pinned_symbols"`
	BaseURL       string   `toml:"base_url"`
}

// DisplayConfig holds terminal rendering parameters.
type DisplayConfig struct {
	SentimentRefreshSecs int  `toml:"sentiment_refresh_secs"`
	UseColors            bool `toml:"use_colors"`
}

// S3Config holds S3-compatible object storage parameters for ledger archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArchiveConfig controls the signed daily ledger export.
type ArchiveConfig struct {
	Enabled    bool     `toml:"enabled"`
	SigningKey string   `toml:"signing_key"`
	S3         S3Config `toml:"s3"`
}

// Validate checks the configuration for fatal errors. Configuration errors
// are the only fatal error class; everything caught here terminates startup.
func (c *Config) Validate() error {
	switch c.Mode {
	case "portfolio", "sentiment", "market", "full":
	default:
		return fmt.Errorf("config: unsupported mode %q (want portfolio, sentiment, market, or full)", c.Mode)
	}

	switch c.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: unsupported cache backend %q (want redis or memory)", c.Cache.Backend)
	}

	switch c.Exchange.Name {
	case "binance", "static":
	default:
		return fmt.Errorf("config: unsupported exchange %q (want binance or static)", c.Exchange.Name)
	}

	switch c.Sentiment.Provider {
	case "lunarcrush", "static":
	default:
		return fmt.Errorf("config: unsupported sentiment provider %q (want lunarcrush or static)", c.Sentiment.Provider)
	}

	if len(c.Portfolio.Holdings) == 0 {
		return fmt.Errorf("config: portfolio.holdings must not be empty")
	}
	seen := make(map[string]bool, len(c.Portfolio.Holdings))
	for _, h := range c.Portfolio.Holdings {
		if h.Symbol == "" {
			return fmt.Errorf("config: holding with empty symbol")
		}
		if seen[h.Symbol] {
			return fmt.Errorf("config: duplicate holding symbol %q", h.Symbol)
		}
		seen[h.Symbol] = true
		if h.Quantity < 0 {
			return fmt.Errorf("config: holding %s: quantity must be >= 0, got %v", h.Symbol, h.Quantity)
		}
		if h.StopLoss < 0 {
			return fmt.Errorf("config: holding %s: stop_loss must be >= 0, got %v", h.Symbol, h.StopLoss)
		}
	}
	if c.Portfolio.Cash < 0 {
		return fmt.Errorf("config: portfolio.cash must be >= 0, got %v", c.Portfolio.Cash)
	}
	if c.Portfolio.MaxAllocation <= 0 || c.Portfolio.MaxAllocation > 1 {
		return fmt.Errorf("config: portfolio.max_allocation must be in (0,1], got %v", c.Portfolio.MaxAllocation)
	}
	if c.Portfolio.CheckIntervalSecs <= 0 {
		return fmt.Errorf("config: portfolio.check_interval_secs must be > 0, got %d", c.Portfolio.CheckIntervalSecs)
	}

	if t := c.Sentiment.PositiveThreshold; t < 0 || t > 1 {
		return fmt.Errorf("config: sentiment.positive_threshold must be in [0,1], got %v", t)
	}
	if t := c.Sentiment.NegativeThreshold; t < 0 || t > 1 {
		return fmt.Errorf("config: sentiment.negative_threshold must be in [0,1], got %v", t)
	}
	if c.Sentiment.CacheTTLSecs <= 0 {
		return fmt.Errorf("config: sentiment.cache_ttl_secs must be > 0, got %d", c.Sentiment.CacheTTLSecs)
	}

	th := c.Notify.Thresholds
	if th.PortfolioValueChangePercent < 0 || th.HoldingValueChangePercent < 0 || th.SentimentChange < 0 {
		return fmt.Errorf("config: notify.thresholds must all be >= 0")
	}

	if c.Market.RefreshSecs <= 0 {
		return fmt.Errorf("config: market.refresh_secs must be > 0, got %d", c.Market.RefreshSecs)
	}
	if c.Display.SentimentRefreshSecs <= 0 {
		return fmt.Errorf("config: display.sentiment_refresh_secs must be > 0, got %d", c.Display.SentimentRefreshSecs)
	}

	if c.Archive.Enabled {
		if c.Archive.S3.Bucket == "" {
			return fmt.Errorf("config: archive enabled but archive.s3.bucket is empty")
		}
		if c.Archive.S3.Region == "" {
			return fmt.Errorf("config: archive enabled but archive.s3.region is empty")
		}
	}

	return nil
}
