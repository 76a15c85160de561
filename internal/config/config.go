package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig points at the marketplace REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StorageConfig struct {
	Driver string
	Dir    string
	Prefix string
	TTL    time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ClientConfig struct {
	CookieName     string
	CookieMaxAge   time.Duration
	CookieSecure   bool
	ResolveTimeout time.Duration
	IdleTimeout    time.Duration
}

type PollingConfig struct {
	ChatInterval         time.Duration
	NotificationInterval time.Duration
	DedupeInterval       time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Backend          BackendConfig
	Storage          StorageConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Client           ClientConfig
	Polling          PollingConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	return load(v)
}

func load(v *viper.Viper) (*AppConfig, error) {
	v.SetEnvPrefix("JUNKMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Storage.Driver {
	case "memory", "file", "redis", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres storage requires postgres.dsn")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.baseurl is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("backend.baseurl", "http://127.0.0.1:5000/api")
	v.SetDefault("backend.timeout", "15s")

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.dir", "./data/clients")
	v.SetDefault("storage.prefix", "junkmart")
	v.SetDefault("storage.ttl", "0s")

	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("client.cookiename", "jm_client")
	v.SetDefault("client.cookiemaxage", "8760h") // one year
	v.SetDefault("client.cookiesecure", false)
	v.SetDefault("client.resolvetimeout", "3s")
	v.SetDefault("client.idletimeout", "30m")

	v.SetDefault("polling.chatinterval", "5s")
	v.SetDefault("polling.notificationinterval", "30s")
	v.SetDefault("polling.dedupeinterval", "2s")

	v.SetDefault("allowcorsorigins", "")
}
