package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       string          `yaml:"env"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	HTTP      HTTPConfig      `yaml:"http"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig bounds the single shared outbound client used by every crawl
// task. The limits apply across all providers together.
type HTTPConfig struct {
	MaxConnections          int           `yaml:"max_connections"`
	MaxKeepaliveConnections int           `yaml:"max_keepalive_connections"`
	Timeout                 time.Duration `yaml:"timeout"`
	DialTimeout             time.Duration `yaml:"dial_timeout"`
	UseProxies              bool          `yaml:"use_proxies"`
	RotatingProxyEndpoint   string        `yaml:"rotating_proxy_endpoint"`
	RequestsPerSecond       float64       `yaml:"requests_per_second"`
	UserAgent               string        `yaml:"user_agent"`
}

type CrawlerConfig struct {
	VenueMappingPath string             `yaml:"venue_mapping_path"`
	TowerHamlets     TowerHamletsConfig `yaml:"towerhamlets"`
}

// TowerHamletsConfig covers the one provider that needs a browser-acquired
// token before its API accepts requests.
type TowerHamletsConfig struct {
	BookingURL   string        `yaml:"booking_url"`
	LoginTimeout time.Duration `yaml:"login_timeout"`
}

type GeocodingConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// SchedulerConfig holds one cron expression per sport; empty disables the
// periodic refresh for that sport.
type SchedulerConfig struct {
	Badminton  string `yaml:"badminton"`
	Squash     string `yaml:"squash"`
	Pickleball string `yaml:"pickleball"`
}

type APIConfig struct {
	ListenAddr        string        `yaml:"listen_addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads a YAML config file. A .env file in the working directory is
// loaded first, then ${VAR} references inside the YAML are expanded, so
// secrets like the DSN stay out of the file itself.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.MaxConnections <= 0 {
		c.HTTP.MaxConnections = 250
	}
	if c.HTTP.MaxKeepaliveConnections <= 0 {
		c.HTTP.MaxKeepaliveConnections = 20
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = 15 * time.Second
	}
	if c.HTTP.DialTimeout <= 0 {
		c.HTTP.DialTimeout = 10 * time.Second
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	}
	if c.Geocoding.BaseURL == "" {
		c.Geocoding.BaseURL = "https://api.postcodes.io"
	}
	if c.Crawler.VenueMappingPath == "" {
		c.Crawler.VenueMappingPath = "configs/venues.json"
	}
	if c.Crawler.TowerHamlets.BookingURL == "" {
		c.Crawler.TowerHamlets.BookingURL = "https://towerhamletscouncil.gladstonego.cloud/book"
	}
	if c.Crawler.TowerHamlets.LoginTimeout <= 0 {
		c.Crawler.TowerHamlets.LoginTimeout = 30 * time.Second
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8000"
	}
	if c.API.ReadHeaderTimeout <= 0 {
		c.API.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required (set DB_CONNECTION_STRING)")
	}
	if c.HTTP.UseProxies && c.HTTP.RotatingProxyEndpoint == "" {
		return fmt.Errorf("http.rotating_proxy_endpoint is required when http.use_proxies is set")
	}
	return nil
}
