package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WAREHOUSE_DRIVER", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("WEATHER_LATITUDE", "")

	cfg := Load()

	assert.Equal(t, DriverSnowflake, cfg.WarehouseDriver)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "Employee A", cfg.CaretakerEmployee)
	assert.InDelta(t, 48.2083537, cfg.WeatherLatitude, 1e-9)
	assert.False(t, cfg.IsOIDCEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WAREHOUSE_DRIVER", "SQLite")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("WEATHER_LONGITUDE", "9.5")
	t.Setenv("WEATHER_TLS_INSECURE", "1")
	t.Setenv("OIDC_ISSUER", "https://sso.example.com")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.WarehouseDriver)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.InDelta(t, 9.5, cfg.WeatherLongitude, 1e-9)
	assert.True(t, cfg.WeatherTLSInsecure)
	assert.True(t, cfg.IsOIDCEnabled())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:               "development",
			WarehouseDriver:   DriverSQLite,
			WarehouseDSN:      "file:test.db",
			DashboardTimezone: "UTC",
			WeatherTokenURL:   "https://login.meteomatics.com/api/v1/token",
			WeatherAPIURL:     "https://api.meteomatics.com",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.WarehouseDriver = "oracle" }, true},
		{"pgx without dsn", func(c *Config) { c.WarehouseDriver = DriverPgx; c.WarehouseDSN = "" }, true},
		{"snowflake with account", func(c *Config) { c.WarehouseDriver = DriverSnowflake; c.WarehouseDSN = ""; c.SnowflakeAccount = "acme-xy123" }, false},
		{"snowflake without account", func(c *Config) { c.WarehouseDriver = DriverSnowflake; c.WarehouseDSN = "" }, true},
		{"bad date", func(c *Config) { c.DashboardDate = "19.03.2025" }, true},
		{"bad timezone", func(c *Config) { c.DashboardTimezone = "Mars/Olympus" }, true},
		{"bad weather url", func(c *Config) { c.WeatherAPIURL = "api.meteomatics.com" }, true},
		{"short secret in production", func(c *Config) { c.Env = "production"; c.SessionSecret = "short" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReferenceDate(t *testing.T) {
	cfg := &Config{DashboardTimezone: "Europe/Vienna"}

	// 23:30 UTC is already the next day in Vienna
	now := time.Date(2025, 3, 18, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC), cfg.ReferenceDate(now))

	cfg.DashboardDate = "2025-03-19"
	assert.Equal(t, time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC), cfg.ReferenceDate(time.Now()))
}

func TestLoadContentFile(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		content, err := LoadContentFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Len(t, content.MealPlan, 7)
		assert.Len(t, content.Events, 3)
	})

	t.Run("partial file keeps default meal plan", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "content.yaml")
		data := "events:\n  - title: Singkreis\n    start: 2025-04-02\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		content, err := LoadContentFile(path)
		require.NoError(t, err)
		assert.Len(t, content.MealPlan, 7)
		require.Len(t, content.Events, 1)
		assert.Equal(t, "Singkreis", content.Events[0].Title)
		assert.Equal(t, "2025-04-02", content.Events[0].End)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "content.yaml")
		require.NoError(t, os.WriteFile(path, []byte("meal_plan: [unclosed"), 0o644))

		_, err := LoadContentFile(path)
		assert.Error(t, err)
	})
}
