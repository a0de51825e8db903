package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aluiziolira/wishlist-watch/extractor"
)

// DefaultPath is where the configuration file is looked up.
const DefaultPath = "wishlist.config"

// ErrMissingURL is returned when a fetch is needed but no URL is configured.
var ErrMissingURL = errors.New("url is not configured")

// Config holds watcher configuration.
type Config struct {
	URL           string        `mapstructure:"url"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RespectRobots bool          `mapstructure:"respect_robots"`
	SnapshotFile  string        `mapstructure:"snapshot_file"`
	RawFile       string        `mapstructure:"raw_file"`
	ExportCSV     string        `mapstructure:"export_csv"`
	MetricsFile   string        `mapstructure:"metrics_file"`
	AuthorPrefix  string        `mapstructure:"author_prefix"`
	Selectors     Selectors     `mapstructure:"selectors"`
}

// Selectors are the CSS selectors describing the wishlist markup.
type Selectors struct {
	Block    string `mapstructure:"block"`
	Title    string `mapstructure:"title"`
	Author   string `mapstructure:"author"`
	Price    string `mapstructure:"price"`
	Discount string `mapstructure:"discount"`
}

// DefaultConfig returns defaults matching the wishlist page markup.
func DefaultConfig() *Config {
	sel := extractor.DefaultSelectorExprs()
	return &Config{
		URL:           "",
		UserAgent:     "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Timeout:       0,
		RespectRobots: false,
		SnapshotFile:  "wishlist.json",
		RawFile:       "wishlist.html",
		ExportCSV:     "",
		MetricsFile:   "",
		AuthorPrefix:  "By: ",
		Selectors: Selectors{
			Block:    sel.Block,
			Title:    sel.Title,
			Author:   sel.Author,
			Price:    sel.Price,
			Discount: sel.Discount,
		},
	}
}

// Load reads the TOML file at path, applies WISHLIST_* environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetEnvPrefix("WISHLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("url", d.URL)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("respect_robots", d.RespectRobots)
	v.SetDefault("snapshot_file", d.SnapshotFile)
	v.SetDefault("raw_file", d.RawFile)
	v.SetDefault("export_csv", d.ExportCSV)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("author_prefix", d.AuthorPrefix)
	v.SetDefault("selectors.block", d.Selectors.Block)
	v.SetDefault("selectors.title", d.Selectors.Title)
	v.SetDefault("selectors.author", d.Selectors.Author)
	v.SetDefault("selectors.price", d.Selectors.Price)
	v.SetDefault("selectors.discount", d.Selectors.Discount)
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.URL != "" {
		parsedURL, err := url.Parse(c.URL)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("url must use http or https")
		}
		if parsedURL.Host == "" {
			return fmt.Errorf("url must include a host")
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.SnapshotFile == "" {
		return fmt.Errorf("snapshot file cannot be empty")
	}
	if c.RawFile == "" {
		return fmt.Errorf("raw file cannot be empty")
	}

	required := []struct {
		name  string
		value string
	}{
		{"selectors.block", c.Selectors.Block},
		{"selectors.title", c.Selectors.Title},
		{"selectors.author", c.Selectors.Author},
		{"selectors.price", c.Selectors.Price},
		{"selectors.discount", c.Selectors.Discount},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s cannot be empty", r.name)
		}
	}
	return nil
}

// RequireURL reports ErrMissingURL when no URL is configured.
func (c *Config) RequireURL() error {
	if c.URL == "" {
		return ErrMissingURL
	}
	return nil
}

// SelectorExprs converts the configured selectors for the extractor.
func (c *Config) SelectorExprs() extractor.SelectorExprs {
	return extractor.SelectorExprs{
		Block:    c.Selectors.Block,
		Title:    c.Selectors.Title,
		Author:   c.Selectors.Author,
		Price:    c.Selectors.Price,
		Discount: c.Selectors.Discount,
	}
}
