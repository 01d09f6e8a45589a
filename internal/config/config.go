// Package config provides Viper-based configuration management for mdpress
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pbaille/mdpress/internal/domain"
)

// Config represents the complete mdpress configuration
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Show    ShowConfig    `mapstructure:"show"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// SiteConfig holds the remote blog endpoint and credentials
type SiteConfig struct {
	URL      string        `mapstructure:"url"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	BlogID   int           `mapstructure:"blog_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PathsConfig locates the local article tree and the term cache
type PathsConfig struct {
	Root   string `mapstructure:"root"`
	Drafts string `mapstructure:"drafts"`
	Posts  string `mapstructure:"posts"`
	Pages  string `mapstructure:"pages"`
	Cache  string `mapstructure:"cache"`
}

// ShowConfig holds listing defaults for the show command
type ShowConfig struct {
	Number  int    `mapstructure:"number"`
	OrderBy string `mapstructure:"orderby"`
	Order   string `mapstructure:"order"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// flagKeys maps command line flags onto config keys
var flagKeys = map[string]string{
	"site":     "site.url",
	"user":     "site.user",
	"password": "site.password",
	"timeout":  "site.timeout",
	"root":     "paths.root",
	"cache":    "paths.cache",
	"number":   "show.number",
	"orderby":  "show.orderby",
	"order":    "show.order",
}

// Load reads .env, the config file, MDPRESS_* environment variables and flags, in
// increasing order of precedence.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".mdpress")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/mdpress")
	}

	v.SetEnvPrefix("MDPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Show.Order = strings.ToUpper(cfg.Show.Order)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("site.url", "")
	v.SetDefault("site.user", "")
	v.SetDefault("site.password", "")
	v.SetDefault("site.blog_id", 1)
	v.SetDefault("site.timeout", 30*time.Second)

	v.SetDefault("paths.root", ".")
	v.SetDefault("paths.drafts", "draft")
	v.SetDefault("paths.posts", "post")
	v.SetDefault("paths.pages", "page")
	v.SetDefault("paths.cache", "terms.db")

	v.SetDefault("show.number", 10)
	v.SetDefault("show.orderby", "post_date")
	v.SetDefault("show.order", "DESC")

	v.SetDefault("logging.level", "info")
	v.SetDefault("output.colors", true)
}

// Validate checks settings needed by every command
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Logging),
		validation.Field(&c.Show),
		validation.Field(&c.Paths),
	)
}

// Validate implements validation.Validatable
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

// Validate implements validation.Validatable
func (s ShowConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Number, validation.Min(0)),
		validation.Field(&s.Order, validation.In("ASC", "DESC")),
	)
}

// Validate implements validation.Validatable
func (p PathsConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Drafts, validation.Required),
		validation.Field(&p.Posts, validation.Required),
		validation.Field(&p.Pages, validation.Required),
		validation.Field(&p.Cache, validation.Required),
	)
}

// Validate checks the settings needed to talk to the site
func (s SiteConfig) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.URL, validation.Required, validation.By(func(value any) error {
			_, err := NormalizeSiteURL(value.(string))
			return err
		})),
		validation.Field(&s.User, validation.Required),
		validation.Field(&s.Password, validation.Required),
		validation.Field(&s.BlogID, validation.Min(0)),
		validation.Field(&s.Timeout, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("site: %v: %w", err, domain.ErrConfig)
	}
	return nil
}

// Endpoint returns the normalized XML-RPC endpoint
func (s SiteConfig) Endpoint() (string, error) {
	return NormalizeSiteURL(s.URL)
}

// NormalizeSiteURL turns a blog address into its xmlrpc.php endpoint.
// URLs already naming xmlrpc.php are kept as given.
func NormalizeSiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("site url is empty: %w", domain.ErrConfig)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("site url %q: %v: %w", raw, err, domain.ErrConfig)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("site url %q: unsupported scheme %s: %w", raw, u.Scheme, domain.ErrConfig)
	}
	if u.Host == "" {
		return "", fmt.Errorf("site url %q: missing host: %w", raw, domain.ErrConfig)
	}

	if strings.Contains(raw, "xmlrpc.php") {
		return raw, nil
	}
	return strings.TrimSuffix(raw, "/") + "/xmlrpc.php", nil
}

// DraftsDir returns the absolute-or-relative drafts directory
func (p PathsConfig) DraftsDir() string { return filepath.Join(p.Root, p.Drafts) }

// PostsDir returns the published posts directory
func (p PathsConfig) PostsDir() string { return filepath.Join(p.Root, p.Posts) }

// PagesDir returns the published pages directory
func (p PathsConfig) PagesDir() string { return filepath.Join(p.Root, p.Pages) }

// CachePath returns the term cache location; relative paths hang off Root
func (p PathsConfig) CachePath() string {
	if filepath.IsAbs(p.Cache) {
		return p.Cache
	}
	return filepath.Join(p.Root, p.Cache)
}
