package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns     int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	DBMinConns     int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string        `envconfig:"LOG_FORMAT" default:"json"`
	ReportTimezone string        `envconfig:"REPORT_TIMEZONE" default:"America/Bogota"`
	AutoMigrate    bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	ServiceName    string        `envconfig:"SERVICE_NAME" default:"backoffice"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Location is ReportTimezone resolved by Load.
	Location *time.Location `ignored:"true"`
}

// Load reads an optional .env from the working directory and then the
// process environment. Real environment variables win over .env values.
func Load() (Config, error) {
	return LoadFrom(".env")
}

func LoadFrom(envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required (environment variable or .env)")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT: %d", cfg.Port)
	}
	if cfg.DBMinConns < 0 || cfg.DBMaxConns < 1 || cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS: %d/%d", cfg.DBMinConns, cfg.DBMaxConns)
	}
	if cfg.ReportCacheTTL < 0 {
		return Config{}, fmt.Errorf("invalid REPORT_CACHE_TTL: %s", cfg.ReportCacheTTL)
	}

	origins := make([]string, 0, len(cfg.CORSAllowedOrigins))
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cfg.CORSAllowedOrigins = origins

	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", cfg.ReportTimezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) CacheEnabled() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}
