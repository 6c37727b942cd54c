package config_test

import (
	"testing"

	"github.com/solhaug/tribescore/internal/config"
	"github.com/stretchr/testify/require"
)

// NOTE: These tests mutate the process environment and can't run in parallel.

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()

	for _, key := range []string{
		"TRIBESCORE_ENVIRONMENT",
		"DB_HOST",
		"DB_PASSWORD",
		"DB_USERNAME",
		"SENTRY_DSN",
		"PORT",
	} {
		t.Setenv(key, "")
	}
	for key, value := range env {
		t.Setenv(key, value)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("development requires only the environment", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TRIBESCORE_ENVIRONMENT": "development",
		})

		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)
		require.True(t, conf.IsDevelopment())
		require.False(t, conf.IsProduction())
		require.False(t, conf.IsStaging())
		require.Equal(t, "8080", conf.Port())
	})

	t.Run("port can be overridden", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TRIBESCORE_ENVIRONMENT": "development",
			"PORT":                   "9000",
		})

		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)
		require.Equal(t, "9000", conf.Port())
	})

	t.Run("production requires db and sentry settings", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TRIBESCORE_ENVIRONMENT": "production",
		})

		_, err := config.ConfigFromEnv()
		require.ErrorIs(t, err, config.ErrMissingRequiredValue)
	})

	t.Run("complete production config", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TRIBESCORE_ENVIRONMENT": "production",
			"DB_HOST":                "db.internal",
			"DB_PASSWORD":            "hunter2",
			"DB_USERNAME":            "tribescore",
			"SENTRY_DSN":             "https://public@sentry.example.com/1",
		})

		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)
		require.True(t, conf.IsProduction())
		require.Equal(t, "db.internal", conf.DBHost())
		require.Equal(t, "hunter2", conf.DBPassword())
		require.Equal(t, "tribescore", conf.DBUsername())
		require.Equal(t, "https://public@sentry.example.com/1", conf.SentryDSN())
	})

	t.Run("missing environment", func(t *testing.T) {
		setEnv(t, nil)
		// t.Setenv can't unset, but an empty value is invalid either way

		_, err := config.ConfigFromEnv()
		require.Error(t, err)
	})

	t.Run("invalid environment", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TRIBESCORE_ENVIRONMENT": "localhost",
		})

		_, err := config.ConfigFromEnv()
		require.ErrorIs(t, err, config.ErrInvalidValue)
	})

	t.Run("non-sensitive string omits secrets", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TRIBESCORE_ENVIRONMENT": "production",
			"DB_HOST":                "db.internal",
			"DB_PASSWORD":            "hunter2",
			"DB_USERNAME":            "tribescore",
			"SENTRY_DSN":             "https://public@sentry.example.com/1",
		})

		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)
		require.NotContains(t, conf.NonSensitiveString(), "hunter2")
	})
}
