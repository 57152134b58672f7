// Package server provides configuration helpers that define runtime defaults,
// validation, and environment loading for the room chat service.
package server

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort            = ":5000"
	defaultMaxMessageSize  = 64 * 1024
	defaultSendBufferSize  = 256
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds the server configuration settings.
type Config struct {
	Port            string
	AllowedOrigins  []string
	MaxMessageSize  int64
	SendBufferSize  int
	ShutdownTimeout time.Duration
}

func defaultConfig() Config {
	return Config{
		Port:            defaultPort,
		AllowedOrigins:  []string{"*"},
		MaxMessageSize:  defaultMaxMessageSize,
		SendBufferSize:  defaultSendBufferSize,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// Sanitize returns a copy of cfg with invalid or missing values replaced by
// defaults and origins normalized. An empty origin list falls back to the
// wildcard default; a list holding only invalid origins denies every origin.
func (cfg Config) Sanitize() Config {
	out := cfg
	out.Port = normalizePort(cfg.Port)

	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = defaultMaxMessageSize
	}
	if out.SendBufferSize <= 0 {
		out.SendBufferSize = defaultSendBufferSize
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = defaultShutdownTimeout
	}

	if len(cfg.AllowedOrigins) == 0 {
		out.AllowedOrigins = defaultConfig().AllowedOrigins
		return out
	}

	origins, allowAll := normalizeOrigins(cfg.AllowedOrigins)
	if allowAll {
		origins = append([]string{"*"}, origins...)
	}
	out.AllowedOrigins = origins
	return out
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables.
// Falls back to default values if environment variables are unset or invalid.
func NewConfigFromEnv() *Config {
	cfg := defaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = normalizePort(port)
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if maxSize := os.Getenv("MAX_MESSAGE_SIZE"); maxSize != "" {
		cfg.MaxMessageSize = parseMaxMessageSize(maxSize, cfg.MaxMessageSize)
	}

	if size := os.Getenv("SEND_BUFFER_SIZE"); size != "" {
		cfg.SendBufferSize = parseIntValue(size, cfg.SendBufferSize)
	}

	if timeout := os.Getenv("SHUTDOWN_TIMEOUT"); timeout != "" {
		cfg.ShutdownTimeout = parseSeconds(timeout, cfg.ShutdownTimeout)
	}

	return &cfg
}

// normalizePort accepts "5000", ":5000" or "host:5000".
func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return defaultPort
	}
	if strings.Contains(port, ":") {
		return port
	}
	if _, err := strconv.Atoi(port); err != nil {
		return defaultPort
	}
	return ":" + port
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseMaxMessageSize(value string, defaultValue int64) int64 {
	if size, err := strconv.ParseInt(value, 10, 64); err == nil && size > 0 {
		return size
	}
	return defaultValue
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseSeconds(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
