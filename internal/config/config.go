package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Store     StoreConfig
	Logger    LoggerConfig
	Ordering  OrderingConfig
	Documents DocumentConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout int // seconds
}

type StoreConfig struct {
	Driver      string
	DatabaseURL string
	MaxConns    int
	AutoMigrate bool
	SeedCSV     string
}

type LoggerConfig struct {
	Mode       string // development | production
	Level      string
	FileEnable bool
	Filename   string
}

type OrderingConfig struct {
	CountryCode   string
	NumberingNode int64
}

type DocumentConfig struct {
	Dir         string
	ShopName    string
	ShopAddress string
	ShopPhone   string
	ShopGST     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "medorder"),
			Env:  getEnv("APP_ENV", "local"),
		},
		Server: ServerConfig{
			Host:            getEnv("HTTP_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("HTTP_PORT", 8080),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT_SEC", 5),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 10),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
			SeedCSV:     getEnv("CATALOG_SEED_CSV", ""),
		},
		Logger: LoggerConfig{
			Mode:       getEnv("LOG_MODE", "development"),
			Level:      getEnv("LOG_LEVEL", "info"),
			FileEnable: getEnvAsBool("LOG_FILE_ENABLE", false),
			Filename:   getEnv("LOG_FILE", "logs/medorder.log"),
		},
		Ordering: OrderingConfig{
			CountryCode:   getEnv("PHONE_COUNTRY_CODE", "91"),
			NumberingNode: int64(getEnvAsInt("NUMBERING_NODE", 1)),
		},
		Documents: DocumentConfig{
			Dir:         getEnv("DOCUMENT_DIR", ""),
			ShopName:    getEnv("SHOP_NAME", "Sanjivani Medical Store"),
			ShopAddress: getEnv("SHOP_ADDRESS", ""),
			ShopPhone:   getEnv("SHOP_PHONE", ""),
			ShopGST:     getEnv("SHOP_GST", ""),
		},
	}

	return cfg, cfg.validate()
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

/* ================= helpers ================= */

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT is invalid")
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("STORE_DRIVER %q is not supported", c.Store.Driver)
	}
	if c.Ordering.NumberingNode < 0 || c.Ordering.NumberingNode > 1023 {
		return fmt.Errorf("NUMBERING_NODE must be within 0..1023")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return defaultVal
}
