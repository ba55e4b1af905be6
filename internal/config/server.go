package config

import (
	"strings"
)

// ServerConfig holds configuration for the scrape control API.
type ServerConfig struct {
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool
}

// LoadServer reads API server configuration from environment variables.
func LoadServer() (*ServerConfig, error) {
	cfg := &ServerConfig{
		BindAddr:         getEnvOrDefault("SAWARI_BIND_ADDR", "127.0.0.1:8199"),
		PortCandidates:   splitList(getEnvOrDefault("SAWARI_PORT_CANDIDATES", "127.0.0.1:8200,127.0.0.1:8201,127.0.0.1:8202")),
		PortAutoFallback: getEnvBoolOrDefault("SAWARI_PORT_AUTO_FALLBACK", true),
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
