package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all hookline configuration.
type Config struct {
	// Workflow instance settings
	N8NBaseURL        string
	N8NAPIKey         string
	N8NWebhookBaseURL string
	N8NEnv            string
	HTTPTimeout       time.Duration

	// Oracle settings
	ClaudeAPIKey string
	ClaudeModel  string

	// Agent settings
	MaxToolCalls int
	SystemPrompt string

	// Server settings
	HTTPAddress     string
	RefreshSchedule string
}

// LoadConfig loads configuration from files and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"N8NBaseURL":        "N8N_BASE_URL",
		"N8NAPIKey":         "N8N_API_KEY",
		"N8NWebhookBaseURL": "N8N_WEBHOOK_BASE_URL",
		"N8NEnv":            "N8N_ENV",
		"HTTPTimeout":       "HTTP_TIMEOUT",
		"ClaudeAPIKey":      "CLAUDE_API_KEY",
		"ClaudeModel":       "CLAUDE_MODEL",
		"MaxToolCalls":      "MAX_TOOL_CALLS",
		"SystemPrompt":      "SYSTEM_PROMPT",
		"HTTPAddress":       "HTTP_ADDRESS",
		"RefreshSchedule":   "REFRESH_SCHEDULE",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("hookline_config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.hookline")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if config.N8NWebhookBaseURL == "" {
		config.N8NWebhookBaseURL = config.N8NBaseURL
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("N8NBaseURL", "http://localhost:5678")
	v.SetDefault("N8NEnv", "test")
	v.SetDefault("HTTPTimeout", "10s")
	v.SetDefault("MaxToolCalls", 10)
	v.SetDefault("HTTPAddress", ":8080")
	v.SetDefault("RefreshSchedule", "@every 5m")
}

func validateConfig(config *Config) error {
	var missingVars []string

	if config.N8NBaseURL == "" {
		missingVars = append(missingVars, "N8N_BASE_URL")
	}

	if config.N8NAPIKey == "" {
		missingVars = append(missingVars, "N8N_API_KEY")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missingVars, ", "))
	}

	if config.N8NEnv != "test" && config.N8NEnv != "production" {
		return fmt.Errorf("N8N_ENV must be \"test\" or \"production\", got %q", config.N8NEnv)
	}

	return nil
}
