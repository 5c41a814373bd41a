package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. HTMLBOX_VIEWPORT_WIDTH.
const EnvPrefix = "HTMLBOX"

// Config is the complete runtime configuration of the renderer and its tools.
type Config struct {
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Page     PageConfig     `mapstructure:"page" yaml:"page"`
	Fonts    FontConfig     `mapstructure:"fonts" yaml:"fonts"`
	Images   ImageConfig    `mapstructure:"images" yaml:"images"`
	Script   ScriptConfig   `mapstructure:"script" yaml:"script"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
}

// ViewportConfig is the size of the initial containing block in pixels.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// PageConfig enables pagination when Height is positive.
type PageConfig struct {
	Height    int     `mapstructure:"height" yaml:"height"`
	MarginTop float64 `mapstructure:"margin_top" yaml:"margin_top"`
}

// FontConfig locates the TrueType files used for each face. Empty paths fall
// back to the embedded Go fonts.
type FontConfig struct {
	DefaultFamily string `mapstructure:"default_family" yaml:"default_family"`
	Regular       string `mapstructure:"regular" yaml:"regular"`
	Bold          string `mapstructure:"bold" yaml:"bold"`
	Italic        string `mapstructure:"italic" yaml:"italic"`
	BoldItalic    string `mapstructure:"bold_italic" yaml:"bold_italic"`
	Monospace     string `mapstructure:"monospace" yaml:"monospace"`
	MonoBold      string `mapstructure:"mono_bold" yaml:"mono_bold"`
}

// ImageConfig controls the background image loader.
type ImageConfig struct {
	Workers     int           `mapstructure:"workers" yaml:"workers"`
	QueueSize   int           `mapstructure:"queue_size" yaml:"queue_size"`
	FetchRate   float64       `mapstructure:"fetch_rate" yaml:"fetch_rate"`
	FetchBurst  int           `mapstructure:"fetch_burst" yaml:"fetch_burst"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// ScriptConfig controls execution of inline scripts before layout.
type ScriptConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LoggerConfig holds the logger settings.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color of each log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// NewDefaultConfig returns a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	// -- Viewport --
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)

	// -- Page --
	v.SetDefault("page.height", 0)
	v.SetDefault("page.margin_top", 0.0)

	// -- Fonts --
	v.SetDefault("fonts.default_family", "sans-serif")

	// -- Images --
	v.SetDefault("images.workers", 4)
	v.SetDefault("images.queue_size", 64)
	v.SetDefault("images.fetch_rate", 10.0)
	v.SetDefault("images.fetch_burst", 4)
	v.SetDefault("images.http_timeout", "30s")
	v.SetDefault("images.user_agent", "htmlbox/1.0")

	// -- Script --
	v.SetDefault("script.enabled", true)
	v.SetDefault("script.timeout", "5s")

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "htmlbox")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
}

// ReadInConfig prepares v to read configFile (or ./htmlbox.yaml when empty)
// and HTMLBOX_ environment overrides. A missing default file is not an error.
func ReadInConfig(v *viper.Viper, configFile string) error {
	SetDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("htmlbox")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// NewConfigFromViper decodes and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport.width and viewport.height must be positive")
	}
	if c.Page.Height < 0 {
		return fmt.Errorf("page.height must not be negative")
	}
	if c.Images.Workers <= 0 {
		return fmt.Errorf("images.workers must be a positive integer")
	}
	if c.Images.QueueSize <= 0 {
		return fmt.Errorf("images.queue_size must be a positive integer")
	}
	if c.Images.FetchRate < 0 {
		return fmt.Errorf("images.fetch_rate must not be negative")
	}
	if c.Images.FetchRate > 0 && c.Images.FetchBurst <= 0 {
		return fmt.Errorf("images.fetch_burst must be positive when images.fetch_rate is set")
	}
	return nil
}
