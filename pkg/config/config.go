// Package config loads the settings shared by the command line tools: output
// device, parser flags, shaping tables and logging.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/qemacs/qemacs-sub000/pkg/charset"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// EnvPrefix prefixes environment overrides, e.g. QHTML_RENDER_WIDTH.
const EnvPrefix = "QHTML"

// Config holds the whole configuration.
type Config struct {
	Render  RenderConfig  `mapstructure:"render" yaml:"render"`
	Parser  ParserConfig  `mapstructure:"parser" yaml:"parser"`
	Shaping ShapingConfig `mapstructure:"shaping" yaml:"shaping"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// RenderConfig describes the output device.
type RenderConfig struct {
	Width          int    `mapstructure:"width" yaml:"width"`
	Height         int    `mapstructure:"height" yaml:"height"`
	DPI            int    `mapstructure:"dpi" yaml:"dpi"`
	Media          string `mapstructure:"media" yaml:"media"`
	PxScale        int    `mapstructure:"px_scale" yaml:"px_scale"`
	FontSize       int    `mapstructure:"font_size" yaml:"font_size"`
	Background     string `mapstructure:"background" yaml:"background"`
	SelectionColor string `mapstructure:"selection_color" yaml:"selection_color"`
}

// ParserConfig selects the markup syntax rules.
type ParserConfig struct {
	HTMLQuirks bool   `mapstructure:"html_quirks" yaml:"html_quirks"`
	Lenient    bool   `mapstructure:"lenient" yaml:"lenient"`
	IgnoreCase bool   `mapstructure:"ignore_case" yaml:"ignore_case"`
	DocBook    bool   `mapstructure:"docbook" yaml:"docbook"`
	Charset    string `mapstructure:"charset" yaml:"charset"`
}

// ShapingConfig points at the optional ligature table.
type ShapingConfig struct {
	LigatureFile string `mapstructure:"ligature_file" yaml:"ligature_file"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	AddSource  bool   `mapstructure:"add_source" yaml:"add_source"`
	Name       string `mapstructure:"name" yaml:"name"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	// -- Render --
	v.SetDefault("render.width", 800)
	v.SetDefault("render.height", 600)
	v.SetDefault("render.dpi", 96)
	v.SetDefault("render.media", "screen")
	v.SetDefault("render.px_scale", 1)
	v.SetDefault("render.font_size", 0)
	v.SetDefault("render.background", "#ffffff")
	v.SetDefault("render.selection_color", "#b4d5fe")

	// -- Parser --
	v.SetDefault("parser.html_quirks", true)
	v.SetDefault("parser.lenient", true)
	v.SetDefault("parser.ignore_case", true)
	v.SetDefault("parser.docbook", false)
	v.SetDefault("parser.charset", "utf-8")

	// -- Shaping --
	v.SetDefault("shaping.ligature_file", "")

	// -- Logging --
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.name", "qhtml")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)
}

// NewDefaultConfig returns the configuration with every default applied.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return cfg
}

// NewViper returns a viper instance with the defaults and the environment
// bindings installed.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path on top of the defaults and the
// environment. An empty path looks for qhtml.yaml in the working directory
// and accepts its absence.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("qhtml")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
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

// Validate checks ranges and parses the values that must parse.
func (c *Config) Validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render.width and render.height must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.DPI <= 0 {
		return fmt.Errorf("render.dpi must be a positive integer")
	}
	if c.Render.PxScale <= 0 {
		return fmt.Errorf("render.px_scale must be a positive integer")
	}
	if c.Render.FontSize < 0 {
		return fmt.Errorf("render.font_size must not be negative")
	}
	if _, err := c.Render.MediaMask(); err != nil {
		return err
	}
	if _, err := c.Render.BackgroundColor(); err != nil {
		return err
	}
	if _, err := c.Render.Selection(); err != nil {
		return err
	}
	if _, err := charset.New(c.Parser.Charset); err != nil {
		return fmt.Errorf("parser.charset: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// MediaMask returns the configured media type.
func (r RenderConfig) MediaMask() (css.MediaMask, error) {
	switch m := css.ParseMedia(r.Media); m {
	case css.MediaScreen, css.MediaTTY, css.MediaPrint, css.MediaTV, css.MediaSpeech:
		return m, nil
	}
	return 0, fmt.Errorf("render.media: unknown media type %q", r.Media)
}

// BackgroundColor parses the default canvas color.
func (r RenderConfig) BackgroundColor() (css.Color, error) {
	return parseColor("render.background", r.Background)
}

// Selection parses the selection color.
func (r RenderConfig) Selection() (css.Color, error) {
	return parseColor("render.selection_color", r.SelectionColor)
}

func parseColor(key, s string) (css.Color, error) {
	c, ok := css.ParseColor(s)
	if !ok {
		return 0, fmt.Errorf("%s: invalid color %q", key, s)
	}
	return c, nil
}
