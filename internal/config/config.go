package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server
	Payment
	Facilitator
	Settlement
	Finder
	Cache
}

type Server struct {
	Port string
}

// Payment describes what a caller must pay to use the protected routes.
// Read once at startup, immutable afterwards.
type Payment struct {
	PayTo             string
	Network           string
	Asset             string
	AmountBaseUnits   string
	MaxTimeoutSeconds int
}

type Facilitator struct {
	URL                  string
	VerifyTimeoutSeconds int
	SettleTimeoutSeconds int
}

type Settlement struct {
	Mode        string // off, sync or async
	WorkerCount int
	BufferSize  int
}

type Finder struct {
	DataSource string // mock or redis
}

type Cache struct {
	Host     string
	Port     string
	Password string
}

func NewConfig() *Config {
	return &Config{
		Server: Server{
			Port: getEnvString("SERVER_PORT", "8080"),
		},
		Payment: Payment{
			PayTo:             getEnvString("PAY_TO_ADDRESS", "0xb3e17988e6eE4D31e6D07decf363f736461d9e08"),
			Network:           getEnvString("NETWORK_ID", "eip155:8453"),
			Asset:             getEnvString("ASSET_ADDRESS", "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
			AmountBaseUnits:   getEnvString("PRICE_BASE_UNITS", "100000"),
			MaxTimeoutSeconds: getEnvInt("MAX_TIMEOUT_SECONDS", 300),
		},
		Facilitator: Facilitator{
			URL:                  getEnvString("X402_FACILITATOR_URL", ""),
			VerifyTimeoutSeconds: getEnvInt("VERIFY_TIMEOUT_SECONDS", 10),
			SettleTimeoutSeconds: getEnvInt("SETTLE_TIMEOUT_SECONDS", 30),
		},
		Settlement: Settlement{
			Mode:        getEnvString("SETTLEMENT_MODE", "off"),
			WorkerCount: getEnvInt("SETTLEMENT_WORKERS_COUNT", 2),
			BufferSize:  getEnvInt("SETTLEMENT_EVENTS_BUFFER_SIZE", 100),
		},
		Finder: Finder{
			DataSource: getEnvString("DATA_SOURCE", "mock"),
		},
		Cache: Cache{
			Host:     getEnvString("CACHE_HOST", "localhost"),
			Port:     getEnvString("CACHE_PORT", "6379"),
			Password: getEnvString("CACHE_PASSWORD", ""),
		},
	}
}

func getEnvString(key string, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}
