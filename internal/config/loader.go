package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Defaults returns the built-in configuration. Values here are overlaid by
// the TOML file and then by environment variables.
func Defaults() Config {
	return Config{
		Mode:     "portfolio",
		LogLevel: "info",
		Exchange: ExchangeConfig{
			Name:      "binance",
			BaseURL:   "https://api.binance.com",
			StreamURL: "wss://stream.binance.com:9443",
		},
		Sentiment: SentimentConfig{
			Provider:          "lunarcrush",
			APIURL:            "https://lunarcrush.com",
			CacheTTLSecs:      600,
			PositiveThreshold: 0.7,
			NegativeThreshold: 0.3,
		},
		Cache: CacheConfig{
			Backend: "redis",
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
			},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			SSLMode:       "disable",
			PoolMaxConns:  5,
			RunMigrations: true,
		},
		Portfolio: PortfolioConfig{
			CheckIntervalSecs: 60,
			MaxAllocation:     0.5,
		},
		Notify: NotifyConfig{
			Thresholds: ThresholdConfig{
				PortfolioValueChangePercent: 5,
				HoldingValueChangePercent:   10,
				SentimentChange:             0.2,
			},
		},
		Market: MarketConfig{
			RefreshSecs: 120,
			SortBy:      "market_cap",
			BaseURL:     "https://api.coingecko.com",
		},
		Display: DisplayConfig{
			SentimentRefreshSecs: 300,
			UseColors:            true,
		},
	}
}

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies COINSENTRY_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known COINSENTRY_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Mode, "COINSENTRY_MODE")
	setStr(&cfg.LogLevel, "COINSENTRY_LOG_LEVEL")

	setStr(&cfg.Exchange.APIKey, "COINSENTRY_EXCHANGE_API_KEY")
	setStr(&cfg.Exchange.APISecret, "COINSENTRY_EXCHANGE_API_SECRET")
	setStr(&cfg.Exchange.BaseURL, "COINSENTRY_EXCHANGE_BASE_URL")

	setStr(&cfg.Sentiment.APIURL, "COINSENTRY_SENTIMENT_API_URL")
	setStr(&cfg.Sentiment.APIKey, "COINSENTRY_SENTIMENT_API_KEY")

	setStr(&cfg.Cache.Backend, "COINSENTRY_CACHE_BACKEND")
	setStr(&cfg.Cache.Redis.Addr, "COINSENTRY_REDIS_ADDR")
	setStr(&cfg.Cache.Redis.Password, "COINSENTRY_REDIS_PASSWORD")
	setInt(&cfg.Cache.Redis.DB, "COINSENTRY_REDIS_DB")
	setBool(&cfg.Cache.Redis.TLSEnabled, "COINSENTRY_REDIS_TLS_ENABLED")

	setStr(&cfg.Postgres.DSN, "COINSENTRY_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "COINSENTRY_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "COINSENTRY_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "COINSENTRY_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "COINSENTRY_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "COINSENTRY_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "COINSENTRY_POSTGRES_SSLMODE")
	setBool(&cfg.Postgres.RunMigrations, "COINSENTRY_POSTGRES_RUN_MIGRATIONS")

	setBool(&cfg.Notify.SMSEnabled, "COINSENTRY_NOTIFY_SMS_ENABLED")
	setBool(&cfg.Notify.EmailEnabled, "COINSENTRY_NOTIFY_EMAIL_ENABLED")
	setStr(&cfg.Notify.Twilio.AccountSID, "COINSENTRY_TWILIO_ACCOUNT_SID")
	setStr(&cfg.Notify.Twilio.AuthToken, "COINSENTRY_TWILIO_AUTH_TOKEN")
	setStr(&cfg.Notify.Twilio.FromNumber, "COINSENTRY_TWILIO_FROM_NUMBER")
	setStr(&cfg.Notify.Twilio.ToNumber, "COINSENTRY_TWILIO_TO_NUMBER")
	setStr(&cfg.Notify.SendGrid.APIKey, "COINSENTRY_SENDGRID_API_KEY")
	setStr(&cfg.Notify.SendGrid.FromEmail, "COINSENTRY_SENDGRID_FROM_EMAIL")
	setStr(&cfg.Notify.SendGrid.ToEmail, "COINSENTRY_SENDGRID_TO_EMAIL")
	setStr(&cfg.Notify.CredentialsPath, "COINSENTRY_NOTIFY_CREDENTIALS_PATH")
	setStr(&cfg.Notify.CredentialsPassword, "COINSENTRY_NOTIFY_CREDENTIALS_PASSWORD")

	setBool(&cfg.Archive.Enabled, "COINSENTRY_ARCHIVE_ENABLED")
	setStr(&cfg.Archive.SigningKey, "COINSENTRY_ARCHIVE_SIGNING_KEY")
	setStr(&cfg.Archive.S3.Endpoint, "COINSENTRY_S3_ENDPOINT")
	setStr(&cfg.Archive.S3.Region, "COINSENTRY_S3_REGION")
	setStr(&cfg.Archive.S3.Bucket, "COINSENTRY_S3_BUCKET")
	setStr(&cfg.Archive.S3.AccessKey, "COINSENTRY_S3_ACCESS_KEY")
	setStr(&cfg.Archive.S3.SecretKey, "COINSENTRY_S3_SECRET_KEY")
}

func setStr(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, env string) {
	if v := os.Getenv(env); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
