package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"caredash/internal/validation"
)

// Supported warehouse drivers.
const (
	DriverSnowflake = "snowflake"
	DriverPgx       = "pgx"
	DriverSQLite    = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// Session
	SessionSecret string        // Used for signing cookies (min 32 chars)
	RedisURL      string        // Optional, sessions and memoized queries live in memory otherwise
	CacheTTL      time.Duration // How long a session keeps memoized warehouse results

	// CORS
	CORSOrigins string

	// Warehouse
	WarehouseDriver    string // snowflake, pgx or sqlite
	WarehouseDSN       string // Used as-is for pgx and sqlite; built from SNOWFLAKE_* for snowflake
	WarehouseBootstrap bool   // Create the schema and demo rows (development only)
	SnowflakeUser      string
	SnowflakePassword  string
	SnowflakeAccount   string
	SnowflakeWarehouse string
	SnowflakeDatabase  string
	SnowflakeSchema    string

	// Dashboard
	DashboardDate     string // env: DASHBOARD_DATE (YYYY-MM-DD), default: "" (today)
	DashboardTimezone string
	CaretakerName     string
	CaretakerEmployee string // PERSON.EMPLOYEE value whose residents are counted

	// Weather
	WeatherUsername    string
	WeatherPassword    string
	WeatherTokenURL    string
	WeatherAPIURL      string
	WeatherLatitude    float64
	WeatherLongitude   float64
	WeatherTimeout     time.Duration
	WeatherTLSInsecure bool

	// Static content (meal plan, calendar)
	ContentFile string

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Site Branding
	SiteTitle          string // env: SITE_TITLE, default: "Caretaker Dashboard"
	SiteLogoFile       string // env: SITE_LOGO_FILE, default: "" (text only)
	SiteBackgroundFile string // env: SITE_BACKGROUND_FILE, default: "" (plain background)
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:           getEnv("ENV", "development"),
		ServerAddr:    getEnv("SERVER_ADDR", ":3000"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		TLSEnabled:    getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:   getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:    getEnv("TLS_KEY_FILE", ""),
		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		RedisURL:      getEnv("REDIS_URL", ""),
		CacheTTL:      getDuration("CACHE_TTL", 30*time.Minute),
		CORSOrigins:   getEnv("CORS_ORIGINS", ""),

		WarehouseDriver:    strings.ToLower(getEnv("WAREHOUSE_DRIVER", DriverSnowflake)),
		WarehouseDSN:       getEnv("WAREHOUSE_DSN", ""),
		WarehouseBootstrap: getEnv("WAREHOUSE_BOOTSTRAP", "") != "",
		SnowflakeUser:      getEnv("SNOWFLAKE_USER", ""),
		SnowflakePassword:  getEnv("SNOWFLAKE_PASSWORD", ""),
		SnowflakeAccount:   getEnv("SNOWFLAKE_ACCOUNT", ""),
		SnowflakeWarehouse: getEnv("SNOWFLAKE_WAREHOUSE", ""),
		SnowflakeDatabase:  getEnv("SNOWFLAKE_DATABASE", ""),
		SnowflakeSchema:    getEnv("SNOWFLAKE_SCHEMA", ""),

		DashboardDate:     getEnv("DASHBOARD_DATE", ""),
		DashboardTimezone: getEnv("DASHBOARD_TIMEZONE", "Europe/Vienna"),
		CaretakerName:     getEnv("CARETAKER_NAME", "Alex"),
		CaretakerEmployee: getEnv("CARETAKER_EMPLOYEE", "Employee A"),

		WeatherUsername:    getEnv("WEATHER_USERNAME", ""),
		WeatherPassword:    getEnv("WEATHER_PASSWORD", ""),
		WeatherTokenURL:    getEnv("WEATHER_TOKEN_URL", "https://login.meteomatics.com/api/v1/token"),
		WeatherAPIURL:      getEnv("WEATHER_API_URL", "https://api.meteomatics.com"),
		WeatherLatitude:    getFloat("WEATHER_LATITUDE", 48.2083537),
		WeatherLongitude:   getFloat("WEATHER_LONGITUDE", 16.3725042),
		WeatherTimeout:     getDuration("WEATHER_TIMEOUT", 10*time.Second),
		WeatherTLSInsecure: getEnv("WEATHER_TLS_INSECURE", "") != "",

		ContentFile: getEnv("CONTENT_FILE", "content.yaml"),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),

		SiteTitle:          getEnv("SITE_TITLE", "Caretaker Dashboard"),
		SiteLogoFile:       getEnv("SITE_LOGO_FILE", ""),
		SiteBackgroundFile: getEnv("SITE_BACKGROUND_FILE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

// Validate reports configuration that would only fail later at request time.
func (c *Config) Validate() error {
	var errs []error

	switch c.WarehouseDriver {
	case DriverSnowflake:
		if c.WarehouseDSN == "" && c.SnowflakeAccount == "" {
			errs = append(errs, errors.New("SNOWFLAKE_ACCOUNT or WAREHOUSE_DSN is required for the snowflake driver"))
		}
	case DriverPgx, DriverSQLite:
		if c.WarehouseDSN == "" {
			errs = append(errs, fmt.Errorf("WAREHOUSE_DSN is required for the %s driver", c.WarehouseDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown WAREHOUSE_DRIVER %q", c.WarehouseDriver))
	}

	if c.DashboardDate != "" {
		if _, err := validation.ParseDate(c.DashboardDate); err != nil {
			errs = append(errs, fmt.Errorf("DASHBOARD_DATE: %w", err))
		}
	}
	if _, err := time.LoadLocation(c.DashboardTimezone); err != nil {
		errs = append(errs, fmt.Errorf("DASHBOARD_TIMEZONE: %w", err))
	}

	for name, u := range map[string]string{"WEATHER_TOKEN_URL": c.WeatherTokenURL, "WEATHER_API_URL": c.WeatherAPIURL} {
		if ok, msg := validation.ValidateURL(u); !ok {
			errs = append(errs, fmt.Errorf("%s: %s", name, msg))
		}
	}

	if len(c.SessionSecret) < 32 && !c.IsDev() {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}

	return errors.Join(errs...)
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsOIDCEnabled returns true if caretaker pages should require a login.
func (c *Config) IsOIDCEnabled() bool {
	return c.OIDCIssuer != ""
}

// Location returns the dashboard time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DashboardTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ReferenceDate returns the day the dashboard reports on. DASHBOARD_DATE pins
// it (useful for replaying a historical day), otherwise it is today.
func (c *Config) ReferenceDate(now time.Time) time.Time {
	loc := c.Location()
	if c.DashboardDate != "" {
		if d, err := validation.ParseDate(c.DashboardDate); err == nil {
			return d
		}
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
