package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	redact(&out.Exchange.APIKey)
	redact(&out.Exchange.APISecret)

	redact(&out.Sentiment.APIKey)

	redact(&out.Cache.Redis.Password)

	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)

	redact(&out.Notify.Twilio.AuthToken)
	redact(&out.Notify.SendGrid.APIKey)
	redact(&out.Notify.CredentialsPassword)

	redact(&out.Archive.SigningKey)
	redact(&out.Archive.S3.AccessKey)
	redact(&out.Archive.S3.SecretKey)

	// Copy slices and maps so callers cannot mutate the original through the
	// redacted copy.
	if cfg.Portfolio.Holdings != nil {
		out.Portfolio.Holdings = make([]HoldingConfig, len(cfg.Portfolio.Holdings))
		copy(out.Portfolio.Holdings, cfg.Portfolio.Holdings)
	}
	if cfg.Market.PinnedSymbols != nil {
		out.Market.PinnedSymbols = make([]string, len(cfg.Market.PinnedSymbols))
		copy(out.Market.PinnedSymbols, cfg.Market.PinnedSymbols)
	}
	if cfg.Exchange.SymbolMap != nil {
		out.Exchange.SymbolMap = make(map[string]string, len(cfg.Exchange.SymbolMap))
		for k, v := range cfg.Exchange.SymbolMap {
			out.Exchange.SymbolMap[k] = v
		}
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
