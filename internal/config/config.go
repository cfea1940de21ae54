package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type App struct {
	Name string
	Env  string
}

type HTTP struct {
	Port            string
	ReadTimeoutSec  int      `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int      `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int      `mapstructure:"idle_timeout_sec"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitRPS    float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int      `mapstructure:"rate_limit_burst"`
}

type Log struct {
	Level string
	JSON  bool
	File  string
}

type DB struct {
	Driver             string
	DSN                string
	MaxRetries         int  `mapstructure:"max_retries"`
	MaxOpenConns       int  `mapstructure:"max_open_conns"`
	MaxIdleConns       int  `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int  `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool `mapstructure:"auto_migrate"`
}

type Redis struct {
	Addr       string
	Password   string
	DB         int
	MaxRetries int `mapstructure:"max_retries"`
}

type Kafka struct {
	Brokers       []string
	ConsumerGroup string `mapstructure:"consumer_group"`
	MaxRetries    int    `mapstructure:"max_retries"`
}

type Auth struct {
	Secret    string
	Issuer    string
	LeewaySec int `mapstructure:"leeway_sec"`
}

type Dashboard struct {
	CacheTTLSec int `mapstructure:"cache_ttl_sec"`
}

type Tracing struct {
	Endpoint string
}

type Config struct {
	App       App
	HTTP      HTTP
	Log       Log
	DB        DB
	Redis     Redis
	Kafka     Kafka
	Auth      Auth
	Dashboard Dashboard
	Tracing   Tracing
}

func (h HTTP) ReadTimeout() time.Duration  { return time.Duration(h.ReadTimeoutSec) * time.Second }
func (h HTTP) WriteTimeout() time.Duration { return time.Duration(h.WriteTimeoutSec) * time.Second }
func (h HTTP) IdleTimeout() time.Duration  { return time.Duration(h.IdleTimeoutSec) * time.Second }

func (d DB) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeMin) * time.Minute
}

func (a Auth) Leeway() time.Duration { return time.Duration(a.LeewaySec) * time.Second }

func (d Dashboard) CacheTTL() time.Duration { return time.Duration(d.CacheTTLSec) * time.Second }

var keys = []string{
	"app.name", "app.env",
	"http.port", "http.read_timeout_sec", "http.write_timeout_sec", "http.idle_timeout_sec",
	"http.allowed_origins", "http.rate_limit_rps", "http.rate_limit_burst",
	"log.level", "log.json", "log.file",
	"db.driver", "db.dsn", "db.max_retries", "db.max_open_conns", "db.max_idle_conns",
	"db.conn_max_lifetime_min", "db.auto_migrate",
	"redis.addr", "redis.password", "redis.db", "redis.max_retries",
	"kafka.brokers", "kafka.consumer_group", "kafka.max_retries",
	"auth.secret", "auth.issuer", "auth.leeway_sec",
	"dashboard.cache_ttl_sec",
	"tracing.endpoint",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "breakly")
	v.SetDefault("app.env", "development")
	v.SetDefault("http.port", "3000")
	v.SetDefault("http.read_timeout_sec", 5)
	v.SetDefault("http.write_timeout_sec", 10)
	v.SetDefault("http.idle_timeout_sec", 60)
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("http.rate_limit_rps", 10)
	v.SetDefault("http.rate_limit_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_retries", 5)
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_min", 60)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_retries", 5)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.consumer_group", "breakly-leave-audit")
	v.SetDefault("kafka.max_retries", 5)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.leeway_sec", 30)
	v.SetDefault("dashboard.cache_ttl_sec", 30)
	v.SetDefault("tracing.endpoint", "")
}

// Load reads defaults, then the optional YAML file at path (or CONFIG_PATH),
// then BREAKLY_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BREAKLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.Dashboard.CacheTTLSec < 0 {
		return errors.New("dashboard.cache_ttl_sec must not be negative")
	}
	return nil
}
