package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDurationDefault(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want time.Duration
	}{
		{name: "unset", val: "", want: time.Second},
		{name: "duration", val: "250ms", want: 250 * time.Millisecond},
		{name: "bare millis", val: "40", want: 40 * time.Millisecond},
		{name: "garbage", val: "soon", want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_LATENCY", tt.val)
			assert.Equal(t, tt.want, EnvDurationDefault("TEST_LATENCY", time.Second))
		})
	}
}

func TestEnvIntDefault(t *testing.T) {
	t.Setenv("TEST_PORT", "9090")
	assert.Equal(t, 9090, EnvIntDefault("TEST_PORT", 8080))

	t.Setenv("TEST_PORT", "x")
	assert.Equal(t, 8080, EnvIntDefault("TEST_PORT", 8080))
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MOCK_LATENCY=5ms\nKAFKA_BROKERS=k1:9092,k2:9092\n"), 0o600))

	t.Setenv("SERVER_PORT", "9000")
	os.Unsetenv("MOCK_LATENCY")
	os.Unsetenv("KAFKA_BROKERS")
	t.Cleanup(func() {
		os.Unsetenv("MOCK_LATENCY")
		os.Unsetenv("KAFKA_BROKERS")
	})

	cfg := Load(path)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 5*time.Millisecond, cfg.MockLatency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "storefront_events", cfg.KafkaTopic)
	assert.NotEmpty(t, cfg.JWTSecret)
}
