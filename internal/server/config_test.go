package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	config := NewConfig()

	assert.Equal(t, ":5000", config.Port)
	assert.Equal(t, []string{"*"}, config.AllowedOrigins)
	assert.Equal(t, int64(64*1024), config.MaxMessageSize)
	assert.Equal(t, 256, config.SendBufferSize)
	assert.Equal(t, 10*time.Second, config.ShutdownTimeout)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, https://b.example")
	t.Setenv("MAX_MESSAGE_SIZE", "2048")
	t.Setenv("SEND_BUFFER_SIZE", "16")
	t.Setenv("SHUTDOWN_TIMEOUT", "3")

	config := NewConfigFromEnv()

	assert.Equal(t, ":8081", config.Port)
	assert.Equal(t, []string{"http://a.example", "https://b.example"}, config.AllowedOrigins)
	assert.Equal(t, int64(2048), config.MaxMessageSize)
	assert.Equal(t, 16, config.SendBufferSize)
	assert.Equal(t, 3*time.Second, config.ShutdownTimeout)
}

func TestNewConfigFromEnvInvalidValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("MAX_MESSAGE_SIZE", "-1")
	t.Setenv("SEND_BUFFER_SIZE", "zero")
	t.Setenv("SHUTDOWN_TIMEOUT", "0")

	config := NewConfigFromEnv()
	defaults := NewConfig()

	assert.Equal(t, defaults.Port, config.Port)
	assert.Equal(t, defaults.MaxMessageSize, config.MaxMessageSize)
	assert.Equal(t, defaults.SendBufferSize, config.SendBufferSize)
	assert.Equal(t, defaults.ShutdownTimeout, config.ShutdownTimeout)
}

func TestNormalizePort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ":5000"},
		{"8080", ":8080"},
		{":9000", ":9000"},
		{"127.0.0.1:7000", "127.0.0.1:7000"},
		{" 4000 ", ":4000"},
		{"abc", ":5000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePort(tt.in))
		})
	}
}

func TestConfigSanitize(t *testing.T) {
	cfg := Config{
		AllowedOrigins: []string{"HTTP://Example.COM", "bogus", "", "*"},
	}.Sanitize()

	assert.Equal(t, ":5000", cfg.Port)
	assert.Equal(t, []string{"*", "http://example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(defaultMaxMessageSize), cfg.MaxMessageSize)
	assert.Equal(t, defaultSendBufferSize, cfg.SendBufferSize)
	assert.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
}

func TestConfigSanitizeOrigins(t *testing.T) {
	tests := []struct {
		name     string
		origins  []string
		expected []string
	}{
		{name: "nil falls back to wildcard", origins: nil, expected: []string{"*"}},
		{name: "empty falls back to wildcard", origins: []string{}, expected: []string{"*"}},
		{name: "only invalid denies all", origins: []string{"bogus", ""}, expected: []string{}},
		{name: "explicit list kept", origins: []string{testOrigin}, expected: []string{testOrigin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{SendBufferSize: 1, AllowedOrigins: tt.origins}.Sanitize()
			assert.ElementsMatch(t, tt.expected, cfg.AllowedOrigins)
			assert.Equal(t, 1, cfg.SendBufferSize)
		})
	}
}
