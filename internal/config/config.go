package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig holds the key used to verify tokens issued by the auth provider.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// TrackerConfig bounds calls made to the store on behalf of one request and
// how long an owner's schedule stays in memory without being requested.
type TrackerConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	IdleTTL        time.Duration `mapstructure:"idle_ttl"`
	PruneInterval  time.Duration `mapstructure:"prune_interval"`
}

// LoadConfig reads configuration from path/config.yaml and the environment.
// Environment variables win; nested keys map as server.address -> SERVER_ADDRESS.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "treatment_tracker")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("tracker.request_timeout", "10s")
	v.SetDefault("tracker.idle_ttl", "30m")
	v.SetDefault("tracker.prune_interval", "5m")

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		// No file, defaults and env vars only.
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if config.JWT.Secret == "" {
		return config, errors.New("jwt.secret must be set")
	}
	return config, nil
}
