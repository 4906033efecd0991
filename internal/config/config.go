package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Catalog     CatalogConfig
	Engines     EngineConfig
	UserCache   UserCacheConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxConn       int
	EnableMetrics bool
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// JWTConfig guards write routes with storefront-issued service tokens. An
// empty secret disables the check.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CatalogConfig struct {
	UpstreamURL     string
	Limit           int
	TTL             time.Duration
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	SnapshotPath    string
}

// EngineConfig describes where scoring engines live and how they are invoked.
// Remote maps an engine name to an HTTP endpoint; any engine without a remote
// entry is resolved as an executable under Dir.
type EngineConfig struct {
	Dir           string
	Timeout       time.Duration
	MaxConcurrent int
	Remote        map[string]string
}

type UserCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// EngineNames lists the engines the service dispatches to.
var EngineNames = []string{"recommend", "trending", "search", "bought_together", "fav_category"}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "storecore"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "0.0.0.0"),
			Port:          getString("SERVER_PORT", "5001"),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:       getInt("SERVER_MAX_CONN", 0),
			EnableMetrics: getBool("SERVER_ENABLE_METRICS", true),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "ecommerce_db"),
			User:            getString("DB_USER", "storecore"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "storefront"),
		},
		Catalog: CatalogConfig{
			UpstreamURL:     getString("CATALOG_UPSTREAM_URL", "https://dummyjson.com"),
			Limit:           getInt("CATALOG_LIMIT", 100),
			TTL:             getDuration("CATALOG_TTL", time.Hour),
			RefreshInterval: getDuration("CATALOG_REFRESH_INTERVAL", 50*time.Minute),
			FetchTimeout:    getDuration("CATALOG_FETCH_TIMEOUT", 10*time.Second),
			SnapshotPath:    getString("CATALOG_SNAPSHOT_PATH", "./data/catalog.db"),
		},
		Engines: EngineConfig{
			Dir:           getString("ENGINE_DIR", "./cpp_algorithms"),
			Timeout:       getDuration("ENGINE_TIMEOUT", 10*time.Second),
			MaxConcurrent: getInt("ENGINE_MAX_CONCURRENT", 8),
			Remote:        remoteEngines(EngineNames),
		},
		UserCache: UserCacheConfig{
			Enabled: getBool("USER_CACHE_ENABLED", true),
			TTL:     getDuration("USER_CACHE_TTL", 10*time.Minute),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 20*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.Catalog.TTL <= 0 {
		return fmt.Errorf("CATALOG_TTL must be positive")
	}
	if c.Engines.MaxConcurrent <= 0 {
		return fmt.Errorf("ENGINE_MAX_CONCURRENT must be positive")
	}
	if c.Engines.Timeout <= 0 {
		return fmt.Errorf("ENGINE_TIMEOUT must be positive")
	}
	return nil
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

// remoteEngines reads ENGINE_<NAME>_URL for every known engine.
func remoteEngines(names []string) map[string]string {
	out := make(map[string]string)
	for _, name := range names {
		key := "ENGINE_" + strings.ToUpper(name) + "_URL"
		if val := os.Getenv(key); val != "" {
			out[name] = val
		}
	}
	return out
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
