package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// EnvPrefix is the prefix of every environment override (TCONSOLE_UPSTREAM_TIMEOUT, ...).
const EnvPrefix = "TCONSOLE"

// ---- Root ----

type Config struct {
	HTTP        HTTPConfig        `mapstructure:"http"`
	Log         LogConfig         `mapstructure:"log"`
	Upstream    UpstreamConfig    `mapstructure:"upstream"`
	Console     ConsoleConfig     `mapstructure:"console"`
	Redis       RedisConfig       `mapstructure:"redis"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Audit       AuditConfig       `mapstructure:"audit"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr      string `mapstructure:"addr"`
	BodyLimit string `mapstructure:"body_limit"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// UpstreamConfig holds the two independent REST backends. Both are resolved
// once at startup.
type UpstreamConfig struct {
	PathPrefix string         `mapstructure:"path_prefix"`
	Timeout    time.Duration  `mapstructure:"timeout"`
	TenantAPI  EndpointConfig `mapstructure:"tenant_api"`
	ReportAPI  EndpointConfig `mapstructure:"report_api"`
}

type EndpointConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// ConsoleConfig points CLI commands at a running console gateway.
type ConsoleConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

func (c RedisConfig) Enabled() bool { return strings.TrimSpace(c.Addr) != "" }

type RateLimitConfig struct {
	RPS    int           `mapstructure:"rps"`
	Window time.Duration `mapstructure:"window"`
}

type IdempotencyConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type AuditConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (c AuditConfig) Enabled() bool { return len(c.Brokers) > 0 && c.Topic != "" }

// legacyEnv lists the environment names the console historically read its
// upstream base URLs from. They are consulted after the prefixed name.
var legacyEnv = map[string][]string{
	"upstream.tenant_api.base_url": {"NEXT_PUBLIC_API_BASE_URL", "API_BASE_URL"},
	"upstream.report_api.base_url": {"NEXT_PUBLIC_REPORT_API_BASE_URL", "REPORT_API_BASE_URL"},
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (TCONSOLE_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("merge %s: %w", path, err)
		}
	}

	// env override (TCONSOLE_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	for name, ep := range map[string]*EndpointConfig{
		"upstream.tenant_api": &c.Upstream.TenantAPI,
		"upstream.report_api": &c.Upstream.ReportAPI,
	} {
		base, err := normalizeBaseURL(ep.BaseURL)
		if err != nil {
			return fmt.Errorf("%s.base_url: %w", name, err)
		}
		ep.BaseURL = base
	}

	console, err := normalizeBaseURL(c.Console.BaseURL)
	if err != nil {
		return fmt.Errorf("console.base_url: %w", err)
	}
	c.Console.BaseURL = console

	prefix := strings.Trim(strings.TrimSpace(c.Upstream.PathPrefix), "/")
	if prefix != "" {
		prefix = "/" + prefix
	}
	c.Upstream.PathPrefix = prefix

	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = 10 * time.Second
	}

	brokers := c.Audit.Brokers[:0]
	for _, b := range c.Audit.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.Audit.Brokers = brokers

	return nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
