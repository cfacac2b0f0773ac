package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Listing ListingConfig `yaml:"listing" mapstructure:"listing"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Google  GoogleConfig  `yaml:"google" mapstructure:"google"`
	Menus   MenusConfig   `yaml:"menus" mapstructure:"menus"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ListingConfig configures venue ingestion from a brand listing page.
type ListingConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeocodeConfig configures the geocoding resolver.
type GeocodeConfig struct {
	Providers      []string `yaml:"providers" mapstructure:"providers"`
	DelaySecs      float64  `yaml:"delay_secs" mapstructure:"delay_secs"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Language       string   `yaml:"language" mapstructure:"language"`
	NominatimEmail string   `yaml:"nominatim_email" mapstructure:"nominatim_email"`
}

// GoogleConfig holds Google Places API credentials.
type GoogleConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// MenusConfig configures menu scraping.
type MenusConfig struct {
	DelaySecs       float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RenderEnabled   bool    `yaml:"render_enabled" mapstructure:"render_enabled"`
	RenderWaitSecs  int     `yaml:"render_wait_secs" mapstructure:"render_wait_secs"`
	Limit           int     `yaml:"limit" mapstructure:"limit"`
	FollowMenuLinks bool    `yaml:"follow_menu_links" mapstructure:"follow_menu_links"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VENUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "venues.db")
	v.SetDefault("listing.url", "")
	v.SetDefault("listing.timeout_secs", 30)
	v.SetDefault("geocode.providers", []string{"nominatim", "arcgis"})
	v.SetDefault("geocode.delay_secs", 1.5)
	v.SetDefault("geocode.timeout_secs", 15)
	v.SetDefault("geocode.language", "tr")
	v.SetDefault("geocode.nominatim_email", "")
	v.SetDefault("google.api_key", "")
	v.SetDefault("menus.delay_secs", 2.0)
	v.SetDefault("menus.limit", 0)
	v.SetDefault("menus.timeout_secs", 60)
	v.SetDefault("menus.render_enabled", true)
	v.SetDefault("menus.render_wait_secs", 2)
	v.SetDefault("menus.follow_menu_links", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields required by one subcommand. Mode is the
// subcommand name.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Store.Path == "" {
		problems = append(problems, "store.path is required")
	}

	switch mode {
	case "ingest":
		if c.Listing.URL == "" {
			problems = append(problems, "listing.url is required")
		}
	case "geocode":
		if len(c.Geocode.Providers) == 0 {
			problems = append(problems, "geocode.providers must name at least one provider")
		}
		if c.Geocode.DelaySecs < 0 {
			problems = append(problems, "geocode.delay_secs must be >= 0")
		}
		for _, name := range c.Geocode.Providers {
			if name == "google" && c.Google.APIKey == "" {
				problems = append(problems, "google.api_key is required for the google provider")
			}
		}
	case "menus":
		if c.Menus.DelaySecs < 0 {
			problems = append(problems, "menus.delay_secs must be >= 0")
		}
		if c.Menus.Limit < 0 {
			problems = append(problems, "menus.limit must be >= 0")
		}
	case "export", "show":
		// Store path check above is enough.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
