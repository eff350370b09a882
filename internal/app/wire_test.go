package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantasea/coinsentry/internal/config"
	"github.com/quantasea/coinsentry/internal/crypto"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Mode = "sentiment"
	cfg.Cache.Backend = "memory"
	cfg.Exchange.Name = "static"
	cfg.Sentiment.Provider = "static"
	cfg.Portfolio.Cash = 1000
	cfg.Portfolio.Holdings = []config.HoldingConfig{
		{Symbol: "BTC", Quantity: 0.5, PurchasePrice: 60000, StopLoss: 50000},
		{Symbol: "ETH", Quantity: 4, PurchasePrice: 2500, StopLoss: 2000},
	}
	return &cfg
}

func TestWireInMemoryStack(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	deps, cleanup, err := Wire(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, deps.Cache)
	require.NotNil(t, deps.Quotes)
	require.NotNil(t, deps.Evaluator)
	require.NotNil(t, deps.Detector)
	require.NotNil(t, deps.Notifier)
	require.NotNil(t, deps.Renderer)
	require.NotNil(t, deps.Markets)

	// Sentiment mode has no ledger, no stream, no archiver.
	assert.Nil(t, deps.Ledger)
	assert.Nil(t, deps.StreamFeed)
	assert.Nil(t, deps.Archiver)

	// The portfolio is built from the configured holdings.
	require.Len(t, deps.Portfolio.Holdings, 2)
	assert.Equal(t, "BTC", deps.Portfolio.Holdings[0].Symbol)
	assert.Equal(t, 1000.0, deps.Portfolio.Cash)

	// The static exchange serves the configured purchase prices.
	price, err := deps.Quotes.Price(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, price)
}

func TestWireRejectsBadCredentialsFile(t *testing.T) {
	cfg := testConfig()
	cfg.Notify.SMSEnabled = true
	cfg.Notify.CredentialsPath = filepath.Join(t.TempDir(), "missing.enc")
	cfg.Notify.CredentialsPassword = "pw"

	_, _, err := Wire(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load credentials")
}

func TestBuildNotifierLoadsEncryptedCredentials(t *testing.T) {
	blob, err := crypto.EncryptCredentials(crypto.Credentials{
		TwilioAuthToken: "secret-token",
	}, "pw")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "creds.enc")
	require.NoError(t, os.WriteFile(path, blob, 0o600))

	cfg := config.NotifyConfig{
		SMSEnabled:          true,
		Twilio:              config.TwilioConfig{AccountSID: "AC1", FromNumber: "+1", ToNumber: "+2"},
		CredentialsPath:     path,
		CredentialsPassword: "pw",
	}
	notifier, err := buildNotifier(cfg, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, notifier)
}
