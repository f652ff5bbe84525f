package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the tracking service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Tracking TrackingConfig `yaml:"tracking"`
	Geo      GeoConfig      `yaml:"geo"`
	Proxy    ProxyConfig    `yaml:"proxy"`
	Store    StoreConfig    `yaml:"store"`
	SES      SESConfig      `yaml:"ses"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TrackingConfig holds instrumentation URL settings.
type TrackingConfig struct {
	// BaseURL is the public origin embedded in instrumentation links,
	// e.g. "https://t.example.com".
	BaseURL string `yaml:"base_url"`
	// ForwardPolicy selects how a pixel view is classified as a
	// forward-open: "distinct-pixel" (default) or "recipient-mismatch".
	ForwardPolicy string `yaml:"forward_policy"`
}

// GeoConfig holds geolocation provider settings. Providers are attempted
// in the order listed here; a disabled provider is skipped entirely.
type GeoConfig struct {
	// StageTimeoutSeconds bounds each provider attempt (default 2.5s).
	StageTimeoutSeconds float64 `yaml:"stage_timeout_seconds"`
	IPInfoEnabled       bool    `yaml:"ipinfo_enabled"`
	IPInfoToken         string  `yaml:"ipinfo_token"`
	IPAPIEnabled        bool    `yaml:"ipapi_enabled"`
	// LocalDBPath points to the offline IP range database (JSON).
	LocalDBPath string `yaml:"local_db_path"`
}

// ProxyConfig holds the known mail-provider proxy IP range table.
type ProxyConfig struct {
	Ranges []ProxyRange `yaml:"ranges"`
}

// ProxyRange is an inclusive IPv4 range owned by a mail provider's
// image-prefetching infrastructure.
type ProxyRange struct {
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	Provider string `yaml:"provider"`
}

// StoreConfig selects and configures the event store backend.
type StoreConfig struct {
	// Backend is "file", "redis" or "postgres".
	Backend     string `yaml:"backend"`
	FilePath    string `yaml:"file_path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// SESConfig holds AWS SES v2 credentials for the outbound mail sender.
type SESConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Region      string `yaml:"region"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
}

// Default returns the baseline configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Tracking: TrackingConfig{BaseURL: "http://localhost:8080", ForwardPolicy: "distinct-pixel"},
		Geo:      GeoConfig{StageTimeoutSeconds: 2.5, IPAPIEnabled: true},
		Proxy:    ProxyConfig{Ranges: DefaultProxyRanges()},
		Store:    StoreConfig{Backend: "file", FilePath: "data/tracking_events.jsonl"},
		SES:      SESConfig{Region: "us-east-1"},
	}
}

// DefaultProxyRanges lists published image-proxy ranges of the major
// mailbox providers. Operators extend this in config; the table is static
// at runtime.
func DefaultProxyRanges() []ProxyRange {
	return []ProxyRange{
		{Start: "66.102.6.0", End: "66.102.9.255", Provider: "GoogleImageProxy"},
		{Start: "66.249.80.0", End: "66.249.95.255", Provider: "GoogleImageProxy"},
		{Start: "74.125.208.0", End: "74.125.215.255", Provider: "GoogleImageProxy"},
		{Start: "17.57.152.0", End: "17.57.159.255", Provider: "AppleMailPrivacy"},
		{Start: "104.47.0.0", End: "104.47.127.255", Provider: "OutlookSafeLinks"},
	}
}

// LoadFromEnv loads configuration from the given YAML file (if present),
// then applies .env and environment-variable overrides. A missing file is
// not an error; defaults apply.
func LoadFromEnv(path string) (*Config, error) {
	// Best-effort .env load for local development.
	_ = godotenv.Load()

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if len(cfg.Proxy.Ranges) == 0 {
		cfg.Proxy.Ranges = DefaultProxyRanges()
	}
	if cfg.Geo.StageTimeoutSeconds <= 0 {
		cfg.Geo.StageTimeoutSeconds = 2.5
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Tracking.BaseURL = v
	}
	if v := os.Getenv("FORWARD_POLICY"); v != "" {
		cfg.Tracking.ForwardPolicy = v
	}
	if v := os.Getenv("IPINFO_TOKEN"); v != "" {
		cfg.Geo.IPInfoToken = v
		cfg.Geo.IPInfoEnabled = true
	}
	if v := os.Getenv("GEO_LOCAL_DB"); v != "" {
		cfg.Geo.LocalDBPath = v
	}
	if v := os.Getenv("TRACKING_LOG_PATH"); v != "" {
		cfg.Store.Backend = "file"
		cfg.Store.FilePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Store.Backend = "redis"
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.Backend = "postgres"
		cfg.Store.PostgresDSN = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("SES_FROM_ADDRESS"); v != "" {
		cfg.SES.FromAddress = v
		cfg.SES.Enabled = true
	}
}
