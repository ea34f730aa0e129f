package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "text" or "json"
	} `mapstructure:"log"`

	Taxonomy struct {
		Path          string        `mapstructure:"path"`
		Watch         bool          `mapstructure:"watch"`
		WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	} `mapstructure:"taxonomy"`

	Server struct {
		Addr string `mapstructure:"addr"`
		Port int    `mapstructure:"port"`
		Mode string `mapstructure:"mode"` // gin mode: debug, release, test
		// MaxConnections caps concurrently accepted connections; 0 is unlimited.
		MaxConnections int `mapstructure:"max_connections"`
	} `mapstructure:"server"`

	Inventory struct {
		Driver         string `mapstructure:"driver"` // "", "postgres" or "sqlite"
		DSN            string `mapstructure:"dsn"`
		CandidateLimit int    `mapstructure:"candidate_limit"`
	} `mapstructure:"inventory"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Reload struct {
		Broadcast bool   `mapstructure:"broadcast"`
		Channel   string `mapstructure:"channel"`
	} `mapstructure:"reload"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	Ranking struct {
		DefaultLimit int `mapstructure:"default_limit"`
		MaxLimit     int `mapstructure:"max_limit"`
	} `mapstructure:"ranking"`

	Audit struct {
		ReportTTL time.Duration `mapstructure:"report_ttl"`
	} `mapstructure:"audit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("taxonomy.path", "taxonomy.yaml")
	v.SetDefault("taxonomy.watch", false)
	v.SetDefault("taxonomy.watch_debounce", "250ms")

	v.SetDefault("server.addr", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_connections", 0)

	v.SetDefault("inventory.driver", "")
	v.SetDefault("inventory.candidate_limit", 5000)

	v.SetDefault("redis.address", "") // empty disables audits and reload broadcast
	v.SetDefault("redis.db", 0)

	v.SetDefault("reload.broadcast", false)
	v.SetDefault("reload.channel", "admatch:taxonomy:reload")

	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.queues", map[string]int{"audits": 1})

	v.SetDefault("ranking.default_limit", 10)
	v.SetDefault("ranking.max_limit", 500)

	v.SetDefault("audit.report_ttl", "168h")
}

// LoadConfig reads configFile, or config.yaml from the working directory
// when configFile is empty. A missing default file is not an error;
// defaults and ADMATCH_* environment variables still apply.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// ranking.max_limit -> ADMATCH_RANKING_MAX_LIMIT
	v.SetEnvPrefix("ADMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &config, nil
}
