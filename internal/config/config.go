// internal/config/config.go

// Package config gathers the process configuration from the environment.
// Database and Redis settings are read by their own packages; this covers
// the Discord credentials and service-level knobs.
package config

import (
	"fmt"
	"os"
)

const (
	defaultAPIBase     = "https://discord.com/api/v10"
	defaultVoiceRegion = "japan"
	defaultPort        = "8080"
)

type Config struct {
	// DiscordToken is the bot token used for both the REST API and the
	// gateway feed.
	DiscordToken string

	// GatewayURL is the websocket endpoint for the membership event feed.
	GatewayURL string

	// DiscordAPIBase is the REST API base URL, overridable for testing
	// against a stub.
	DiscordAPIBase string

	// VoiceRegion is the rtc region requested for provisioned rooms.
	VoiceRegion string

	// Port is the admin API listen port.
	Port string
}

// Load reads configuration from the environment. DISCORD_TOKEN and
// GATEWAY_URL are required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		GatewayURL:     os.Getenv("GATEWAY_URL"),
		DiscordAPIBase: os.Getenv("DISCORD_API_BASE"),
		VoiceRegion:    os.Getenv("VOICE_REGION"),
		Port:           os.Getenv("PORT"),
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("GATEWAY_URL is required")
	}

	if cfg.DiscordAPIBase == "" {
		cfg.DiscordAPIBase = defaultAPIBase
	}
	if cfg.VoiceRegion == "" {
		cfg.VoiceRegion = defaultVoiceRegion
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	return cfg, nil
}
