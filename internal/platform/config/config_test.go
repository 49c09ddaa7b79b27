package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":3000", cfg.Addr)
		assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
		assert.Equal(t, "memory", cfg.OTP.Backend)
		assert.Empty(t, cfg.Kafka.Brokers)
		assert.Equal(t, 20*time.Second, cfg.HTTP.RequestTimeout)
	})

	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv("APP_ADDR", ":9090")
		t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
		t.Setenv("OTP_TTL", "2m")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 2*time.Minute, cfg.OTP.TTL)
	})

	t.Run("redis backend requires url", func(t *testing.T) {
		t.Setenv("OTP_BACKEND", "redis")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("request timeout must fit inside write timeout", func(t *testing.T) {
		t.Setenv("HTTP_REQUEST_TIMEOUT", "30s")
		t.Setenv("HTTP_WRITE_TIMEOUT", "30s")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("production refuses dev secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := Load()
		require.Error(t, err)
	})
}
