package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"reppy/coach-client/internal/logging"
)

// Config holds all configuration for the client and the stub server.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	API     APIConfig      `mapstructure:"api"`
	Storage StorageConfig  `mapstructure:"storage"`
	Logging logging.Config `mapstructure:"logging"`
	Stub    StubConfig     `mapstructure:"stub"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig selects the local persistence backend. Backend is one of
// "memory", "file" or "redis".
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	Dir       string `mapstructure:"dir"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// StubConfig configures the development API server.
type StubConfig struct {
	Address       string        `mapstructure:"address"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
	StreamDelay   time.Duration `mapstructure:"stream_delay"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("api.base_url", "http://localhost:8080/api/v1")
	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.dir", "./data")
	viper.SetDefault("storage.redis_addr", "localhost:6379")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("stub.address", ":8080")
	viper.SetDefault("stub.jwt_secret", "dev-secret-change-me")
	viper.SetDefault("stub.jwt_expiration", "24h")
	viper.SetDefault("stub.stream_delay", "25ms")

	err = viper.ReadInConfig()
	// Missing config file is fine, defaults and env vars cover it.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
