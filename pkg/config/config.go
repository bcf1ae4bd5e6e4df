package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Shard binds a named ClickHouse backend to the symbols it owns.
type Shard struct {
	Name       string   `yaml:"name"`
	Symbols    []string `yaml:"symbols"`
	ClickHouse struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Database string `yaml:"database"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"clickhouse"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Channel  string `yaml:"channel"`
	} `yaml:"redis"`
	Shards     []Shard `yaml:"shards"`
	ClickHouse struct {
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		UseHTTP          bool          `yaml:"use_http"`
	} `yaml:"clickhouse"`
	Upstream struct {
		URL         string        `yaml:"url"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxAttempts int           `yaml:"max_attempts"`
		RetryWait   time.Duration `yaml:"retry_wait"`
	} `yaml:"upstream"`
	Refresh struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"refresh"`
	Aggregator struct {
		Port            int           `yaml:"port"`
		QuoteServiceURL string        `yaml:"quote_service_url"`
		Timeout         time.Duration `yaml:"timeout"`
		RecentLimit     int           `yaml:"recent_limit"`
	} `yaml:"aggregator"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		Linger       time.Duration `yaml:"linger"`
		BatchSize    int           `yaml:"batch_size"`
		BatchBytes   int           `yaml:"batch_bytes"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	WebSocket struct {
		BufferSize int `yaml:"buffer_size"`
	} `yaml:"websocket"`
	Simulator struct {
		Port          int                `yaml:"port"`
		FailureRate   float64            `yaml:"failure_rate"`
		DriftInterval time.Duration      `yaml:"drift_interval"`
		InitialPrices map[string]float64 `yaml:"initial_prices"`
	} `yaml:"simulator"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("UPSTREAM_URL"); v != "" {
		c.Upstream.URL = v
	}
	if v := os.Getenv("QUOTE_SERVICE_URL"); v != "" {
		c.Aggregator.QuoteServiceURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Redis.Channel == "" {
		return fmt.Errorf("redis.channel is required")
	}
	if len(c.Shards) == 0 {
		return fmt.Errorf("at least one shard is required")
	}
	seen := make(map[string]string)
	for _, s := range c.Shards {
		if s.Name == "" {
			return fmt.Errorf("shard name is required")
		}
		if len(s.Symbols) == 0 {
			return fmt.Errorf("shard %q has no symbols", s.Name)
		}
		for _, sym := range s.Symbols {
			if owner, ok := seen[sym]; ok {
				return fmt.Errorf("symbol %q assigned to both %q and %q", sym, owner, s.Name)
			}
			seen[sym] = s.Name
		}
	}
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream.url is required")
	}
	if c.Upstream.MaxAttempts <= 0 {
		return fmt.Errorf("upstream.max_attempts must be positive")
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	return nil
}

// Symbols returns every configured symbol in shard declaration order.
func (c *Config) Symbols() []string {
	var out []string
	for _, s := range c.Shards {
		out = append(out, s.Symbols...)
	}
	return out
}
