package app

import (
	"github.com/kelseyhightower/envconfig"
)

// Config is the application config, read from LR_* env vars.
type Config struct {
	TgToken  string `required:"true"`
	TgChatID int64  `required:"true"`
	MongoURI string `required:"true"`

	Port     string `default:"8080"`
	APIToken string
	LogLevel string `default:"info"`

	// CacheFile is the local fallback copy of the profile record.
	CacheFile string `default:"limitereal-cache.json"`

	// DigestCron pushes a morning summary to the chat. Empty disables it.
	// The midnight day-rollover is not configurable.
	DigestCron string `default:"0 9 * * *"`
}

// GetConfig gets a config from env vars
func GetConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("lr", &cfg)

	return cfg, err
}
