package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"ESTATE_APP_NAME",
	"ESTATE_APP_ENV",
	"ESTATE_APP_PORT",
	"ESTATE_DATABASE_DRIVER",
	"ESTATE_DATABASE_HOST",
	"ESTATE_DATABASE_PORT",
	"ESTATE_DATABASE_USER",
	"ESTATE_DATABASE_PASSWORD",
	"ESTATE_DATABASE_DBNAME",
	"ESTATE_DATABASE_SSLMODE",
	"ESTATE_DATABASE_MAX_OPEN_CONNS",
	"ESTATE_DATABASE_MAX_IDLE_CONNS",
	"ESTATE_JWT_SECRET",
	"ESTATE_STORAGE_ENABLED",
	"ESTATE_STORAGE_BUCKET",
	"ESTATE_NOTIFIER_DUE_WINDOW",
	"ESTATE_NOTIFIER_SMTP_ENABLED",
	"ESTATE_NOTIFIER_SMTP_HOST",
	"ESTATE_NOTIFIER_SMTP_FROM",
	"ESTATE_NOTIFIER_TELEGRAM_ENABLED",
	"ESTATE_NOTIFIER_TELEGRAM_BOT_TOKEN",
	"ESTATE_TELEMETRY_SAMPLING_RATIO",
	"ESTATE_TELEMETRY_METRICS_ENABLED",
	"ESTATE_TELEMETRY_METRICS_EXPORT_INTERVAL",
	"ESTATE_SWAGGER_ENABLED",
	"ESTATE_SWAGGER_REQUIRE_AUTH",
	"ESTATE_SWAGGER_ALLOWED_IPS",
}

// clearEnv blanks every managed variable for the duration of the test.
// Empty values are treated as unset by viper.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "estatehub", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "estatehub", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 24*time.Hour, cfg.Notifier.DueWindow)
		assert.Equal(t, int64(5<<20), cfg.Storage.MaxImageSize)
		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
		assert.False(t, cfg.Telemetry.MetricsEnabled)
		assert.Equal(t, 60*time.Second, cfg.Telemetry.MetricsExportInterval)
		assert.Equal(t, 15*time.Second, cfg.Telemetry.DBPoolStatsInterval)
		assert.False(t, cfg.Swagger.Enabled)
	})

	t.Run("loads values from environment variables with ESTATE prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ESTATE_APP_NAME", "test-app")
		t.Setenv("ESTATE_APP_PORT", "9000")
		t.Setenv("ESTATE_DATABASE_DRIVER", "sqlite")
		t.Setenv("ESTATE_DATABASE_HOST", "testdb.local")
		t.Setenv("ESTATE_DATABASE_PORT", "5433")
		t.Setenv("ESTATE_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("ESTATE_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("ESTATE_NOTIFIER_DUE_WINDOW", "2h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 2*time.Hour, cfg.Notifier.DueWindow)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ESTATE_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ESTATE_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("ESTATE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("enabled storage needs a bucket", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ESTATE_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("enabled SMTP needs host and sender", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ESTATE_NOTIFIER_SMTP_ENABLED", "true")
		t.Setenv("ESTATE_NOTIFIER_SMTP_HOST", "smtp.example.com")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notifier.smtp")

		t.Setenv("ESTATE_NOTIFIER_SMTP_FROM", "noreply@example.com")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 587, cfg.Notifier.SMTP.Port)
	})

	t.Run("enabled Telegram needs a token", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ESTATE_NOTIFIER_TELEGRAM_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bot_token")
	})

	t.Run("metrics can be enabled without tracing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ESTATE_TELEMETRY_METRICS_ENABLED", "true")
		t.Setenv("ESTATE_TELEMETRY_METRICS_EXPORT_INTERVAL", "10s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.True(t, cfg.Telemetry.MetricsEnabled)
		assert.Equal(t, 10*time.Second, cfg.Telemetry.MetricsExportInterval)
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ESTATE_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ESTATE_APP_ENV", "production")
		t.Setenv("ESTATE_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("ESTATE_DATABASE_PASSWORD", "secure-password")
		t.Setenv("ESTATE_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ESTATE_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ESTATE_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ESTATE_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("rejects sqlite in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ESTATE_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ESTATE_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects open swagger in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ESTATE_SWAGGER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled")
	})

	t.Run("allows swagger behind auth or an IP whitelist in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ESTATE_SWAGGER_ENABLED", "true")
		t.Setenv("ESTATE_SWAGGER_REQUIRE_AUTH", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.RequireAuth)

		t.Setenv("ESTATE_SWAGGER_REQUIRE_AUTH", "")
		t.Setenv("ESTATE_SWAGGER_ALLOWED_IPS", "10.0.0.0/8")

		cfg, err = Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Swagger.AllowedIPs)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
