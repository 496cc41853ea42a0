package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// Postgres
	out.Postgres = cfg.Postgres
	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)

	// S3
	out.S3 = cfg.S3
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	// The Arbitrum RPC URL often embeds a provider API key.
	out.Ostium = cfg.Ostium
	redact(&out.Ostium.ArbitrumRPCURL)

	// Server
	out.Server = cfg.Server
	redact(&out.Server.APIKey)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}
	if cfg.Arbitrage.MonitoredAssets != nil {
		out.Arbitrage.MonitoredAssets = make([]string, len(cfg.Arbitrage.MonitoredAssets))
		copy(out.Arbitrage.MonitoredAssets, cfg.Arbitrage.MonitoredAssets)
	}
	if cfg.Arbitrage.PriorityAssets != nil {
		out.Arbitrage.PriorityAssets = make([]string, len(cfg.Arbitrage.PriorityAssets))
		copy(out.Arbitrage.PriorityAssets, cfg.Arbitrage.PriorityAssets)
	}

	// Copy maps so mutations to the redacted copy do not affect the original.
	if cfg.Arbitrage.ExpectedSpreadUSD != nil {
		out.Arbitrage.ExpectedSpreadUSD = make(map[string]float64, len(cfg.Arbitrage.ExpectedSpreadUSD))
		for k, v := range cfg.Arbitrage.ExpectedSpreadUSD {
			out.Arbitrage.ExpectedSpreadUSD[k] = v
		}
	}
	if cfg.Arbitrage.Aliases != nil {
		out.Arbitrage.Aliases = make(map[string]string, len(cfg.Arbitrage.Aliases))
		for k, v := range cfg.Arbitrage.Aliases {
			out.Arbitrage.Aliases[k] = v
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
