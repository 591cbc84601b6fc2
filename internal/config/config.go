// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
	Password string        `yaml:"-"` // Loaded from environment
}

// Enabled reports whether zone locks should go through Redis instead of the
// in-process mutex.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

type AMQPConfig struct {
	Exchange string `yaml:"exchange"`
	URL      string `yaml:"-"` // Loaded from environment
}

func (a AMQPConfig) Enabled() bool {
	return strings.TrimSpace(a.URL) != ""
}

type SchedulerConfig struct {
	DispatchCron  string `yaml:"dispatch_cron"`
	DispatchBatch int    `yaml:"dispatch_batch"`
}

type RateLimitConfig struct {
	RequestsPerSecond   float64       `yaml:"requests_per_second"`
	Burst               int           `yaml:"burst"`
	GenerateCooldown    time.Duration `yaml:"generate_cooldown"`
	GeneratePerIPHourly int           `yaml:"generate_per_ip_hourly"`
	PreviewPerIPHourly  int           `yaml:"preview_per_ip_hourly"`
	TrustProxy          bool          `yaml:"trust_proxy"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type FixtureConfig struct {
	DoubleRound bool `yaml:"double_round"`
	Shuffle     bool `yaml:"shuffle"`
}

type Config struct {
	App struct {
		Name            string        `yaml:"name"`
		Environment     string        `yaml:"environment"`
		Port            int           `yaml:"port"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AMQP      AMQPConfig      `yaml:"amqp"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	CORS      CORSConfig      `yaml:"cors"`
	Fixture   FixtureConfig   `yaml:"fixture"`
}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	var cfg Config
	cfg.App.Name = "ligas-fixture"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.App.RequestTimeout = 5 * time.Second
	cfg.App.ShutdownTimeout = 30 * time.Second
	cfg.Database.Driver = "sqlite"
	cfg.Database.Filename = "data/fixture.db"
	cfg.Redis.LockTTL = 30 * time.Second
	cfg.AMQP.Exchange = "fixture.events"
	cfg.Scheduler.DispatchCron = "* * * * *"
	cfg.Scheduler.DispatchBatch = 50
	cfg.RateLimit.RequestsPerSecond = 10
	cfg.RateLimit.Burst = 20
	cfg.RateLimit.GenerateCooldown = 10 * time.Second
	cfg.RateLimit.GeneratePerIPHourly = 30
	cfg.RateLimit.PreviewPerIPHourly = 300
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.Fixture.DoubleRound = true
	cfg.Fixture.Shuffle = true
	return cfg
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and pulls secrets from the
// environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.AMQP.URL = os.Getenv("AMQP_URL")
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port <= 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Redis.Enabled() && c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis lock_ttl must be positive")
	}
	// Zone leases are never extended.
	if c.Redis.Enabled() && c.Redis.LockTTL <= c.App.RequestTimeout {
		return fmt.Errorf("redis lock_ttl (%s) must exceed app request_timeout (%s)", c.Redis.LockTTL, c.App.RequestTimeout)
	}
	if c.AMQP.Enabled() && c.AMQP.Exchange == "" {
		return fmt.Errorf("amqp exchange is required when AMQP_URL is set")
	}

	if _, err := cron.ParseStandard(c.Scheduler.DispatchCron); err != nil {
		return fmt.Errorf("invalid scheduler dispatch_cron %q: %w", c.Scheduler.DispatchCron, err)
	}
	if c.Scheduler.DispatchBatch <= 0 {
		return fmt.Errorf("scheduler dispatch_batch must be positive")
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("ratelimit requests_per_second and burst must be positive")
	}
	if c.RateLimit.GeneratePerIPHourly <= 0 || c.RateLimit.PreviewPerIPHourly <= 0 {
		return fmt.Errorf("ratelimit hourly caps must be positive")
	}
	if c.RateLimit.GenerateCooldown < 0 {
		return fmt.Errorf("ratelimit generate_cooldown cannot be negative")
	}

	return nil
}
