package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0xb3e17988e6eE4D31e6D07decf363f736461d9e08", cfg.Payment.PayTo)
	assert.Equal(t, "eip155:8453", cfg.Payment.Network)
	assert.Equal(t, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", cfg.Payment.Asset)
	assert.Equal(t, "100000", cfg.Payment.AmountBaseUnits)
	assert.Equal(t, 300, cfg.Payment.MaxTimeoutSeconds)
	assert.Equal(t, "", cfg.Facilitator.URL)
	assert.Equal(t, "off", cfg.Settlement.Mode)
	assert.Equal(t, 2, cfg.Settlement.WorkerCount)
	assert.Equal(t, "mock", cfg.Finder.DataSource)
	assert.Equal(t, "localhost", cfg.Cache.Host)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PRICE_BASE_UNITS", "250000")
	t.Setenv("X402_FACILITATOR_URL", "https://facilitator.example.com")
	t.Setenv("SETTLEMENT_MODE", "async")
	t.Setenv("SETTLEMENT_WORKERS_COUNT", "4")
	t.Setenv("DATA_SOURCE", "redis")

	cfg := NewConfig()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "250000", cfg.Payment.AmountBaseUnits)
	assert.Equal(t, "https://facilitator.example.com", cfg.Facilitator.URL)
	assert.Equal(t, "async", cfg.Settlement.Mode)
	assert.Equal(t, 4, cfg.Settlement.WorkerCount)
	assert.Equal(t, "redis", cfg.Finder.DataSource)
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("MAX_TIMEOUT_SECONDS", "not a number")

	cfg := NewConfig()

	assert.Equal(t, 300, cfg.Payment.MaxTimeoutSeconds)
}
