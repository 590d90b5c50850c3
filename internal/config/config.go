package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// skipTLSEnv enables skipping TLS verification for the insecure host list.
// The DILA archive has served certificates that fail chain validation.
const skipTLSEnv = "DILA_SKIP_TLS_VERIFY"

// Duration decodes YAML strings like "30s" or bare integers (seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var secs int64
	if err := node.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	return fmt.Errorf("invalid duration value")
}

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds every tunable of the downloader. Defaults match the DILA
// deployment; a YAML settings file overrides them field by field.
type Config struct {
	BaseURL     string   `yaml:"base_url"`
	UserAgent   string   `yaml:"user_agent"`
	Timeout     Duration `yaml:"timeout"`
	JPEGQuality int      `yaml:"jpeg_quality"`

	// InsecureHosts are host suffixes allowed to skip TLS verification
	// when DILA_SKIP_TLS_VERIFY is set. Verification is never skipped for
	// other hosts.
	InsecureHosts []string `yaml:"insecure_hosts"`

	Serve Serve `yaml:"serve"`
}

// Serve holds the serve-mode settings.
type Serve struct {
	Port          string   `yaml:"port"`
	DownloadsDir  string   `yaml:"downloads_dir"`
	MaxAge        Duration `yaml:"max_age"`
	SweepInterval Duration `yaml:"sweep_interval"`
	LogFile       string   `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:       "https://dia.dila.edu.tw",
		UserAgent:     "Mozilla/5.0",
		Timeout:       Duration(30 * time.Second),
		JPEGQuality:   95,
		InsecureHosts: []string{"dia.dila.edu.tw"},
		Serve: Serve{
			Port:          "8888",
			MaxAge:        Duration(time.Hour),
			SweepInterval: Duration(30 * time.Minute),
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(body, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be 1..100")
	}
	return nil
}

// SkipTLSVerify reports whether the environment asks to skip certificate
// verification for the insecure host list.
func SkipTLSVerify() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(skipTLSEnv))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
