package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("env wins over flags", func(t *testing.T) {
		t.Setenv("DATABASE_URI", "postgres://env")
		t.Setenv("JWT_USER_SECRET", "env-secret")
		t.Setenv("RANKING_CACHE_TTL", "1m")

		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		conf, err := loadConfig(fs, []string{"-d", "postgres://flag", "-a", ":9090", "-r", "localhost:6379"})
		require.NoError(t, err)

		assert.Equal(t, "postgres://env", conf.DatabaseDSN)
		assert.Equal(t, "env-secret", conf.JWTUserSecret)
		assert.Equal(t, ":9090", conf.RunAddress)
		assert.Equal(t, "localhost:6379", conf.RedisAddr)
		assert.Equal(t, time.Minute, conf.RankingCacheTTL)
	})

	t.Run("defaults", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		conf, err := loadConfig(fs, []string{"-d", "postgres://flag", "-j", "secret"})
		require.NoError(t, err)

		assert.Equal(t, "localhost:8080", conf.RunAddress)
		assert.Empty(t, conf.RedisAddr)
		assert.Equal(t, defaultRankingCacheTTL, conf.RankingCacheTTL)
		assert.InDelta(t, defaultRateLimitRPS, conf.RateLimitRPS, 0)
		assert.Equal(t, defaultRateLimitBurst, conf.RateLimitBurst)
		assert.Equal(t, defaultShutdownTimeout, conf.ShutdownTimeout)
	})

	t.Run("dsn required", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		_, err := loadConfig(fs, []string{"-j", "secret"})
		require.Error(t, err)
	})

	t.Run("secret required", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		_, err := loadConfig(fs, []string{"-d", "postgres://flag"})
		require.Error(t, err)
	})
}
