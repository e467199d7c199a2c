package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Database DatabaseConfig `mapstructure:"database"`
	Assets   AssetsConfig   `mapstructure:"assets"`
}

// SiteConfig holds storefront endpoint configuration
type SiteConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
}

// CrawlerConfig holds the per-category crawl limits
type CrawlerConfig struct {
	ProductsPerSubcategory int `mapstructure:"products_per_subcategory"`
	SettleDelay            int `mapstructure:"settle_delay"`
	MaxScrollIterations    int `mapstructure:"max_scroll_iterations"`
}

// BrowserConfig holds browser automation configuration
type BrowserConfig struct {
	Headless bool `mapstructure:"headless"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AssetsConfig holds the on-disk layout for crawled artifacts
type AssetsConfig struct {
	Dir string `mapstructure:"dir"`
}

// ConfigurationError reports a configuration key whose value cannot be used.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Key, e.Reason)
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the crawler cannot run with. The crawl
// must refuse to start on a bad config rather than fail midway through.
func (c *Config) Validate() error {
	base, err := url.Parse(strings.TrimSpace(c.Site.BaseURL))
	if err != nil || !base.IsAbs() || base.Host == "" {
		return &ConfigurationError{Key: "site.base_url", Reason: "must be an absolute URL"}
	}
	if c.Site.Timeout <= 0 {
		return &ConfigurationError{Key: "site.timeout", Reason: "must be a positive number of seconds"}
	}
	if c.Site.MaxRetries < 0 {
		return &ConfigurationError{Key: "site.max_retries", Reason: "must not be negative"}
	}
	if c.Site.MaxRequestsPerSecond <= 0 {
		return &ConfigurationError{Key: "site.max_requests_per_second", Reason: "must be a positive number"}
	}
	if c.Crawler.ProductsPerSubcategory <= 0 {
		return &ConfigurationError{Key: "crawler.products_per_subcategory", Reason: "must be a positive number"}
	}
	if c.Crawler.SettleDelay < 0 {
		return &ConfigurationError{Key: "crawler.settle_delay", Reason: "must not be negative"}
	}
	if c.Crawler.MaxScrollIterations <= 0 {
		return &ConfigurationError{Key: "crawler.max_scroll_iterations", Reason: "must be a positive number"}
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return &ConfigurationError{Key: "database.path", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.Assets.Dir) == "" {
		return &ConfigurationError{Key: "assets.dir", Reason: "must not be empty"}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("site.base_url", "https://www.digistyle.com")
	viper.SetDefault("site.timeout", 30)
	viper.SetDefault("site.max_retries", 3)
	viper.SetDefault("site.max_requests_per_second", 2)

	viper.SetDefault("crawler.settle_delay", 3)
	viper.SetDefault("crawler.max_scroll_iterations", 50)

	viper.SetDefault("browser.headless", true)

	viper.SetDefault("database.path", "products.db")

	viper.SetDefault("assets.dir", "assets")
}
