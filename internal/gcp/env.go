package gcp

import (
	"log/slog"
	"os"
	"strconv"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt reads an integer environment variable. Unset or malformed values
// fall back to the default.
func GetEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring malformed integer environment variable.", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return value
}
