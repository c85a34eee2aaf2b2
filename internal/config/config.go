package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/beiklive/mytoolmodule/internal/logging"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. MYTOOL_LOGGING_LEVEL for logging.level.
const EnvPrefix = "MYTOOL"

// Config represents the complete mytool configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	I18n    I18nConfig    `mapstructure:"i18n" yaml:"i18n"`
}

// LoggingConfig controls the logging engine
type LoggingConfig struct {
	// Level is the threshold: "error", "warning", "info", "debug" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Output selects the sinks: "none", "console", "file", "all" (default: "console")
	Output string `mapstructure:"output" yaml:"output"`
	// Dir is the base directory for session directories (default: "./log")
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the file size in megabytes above which files rotate (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxSizeBytes overrides MaxSizeMB when positive
	MaxSizeBytes int64 `mapstructure:"max_size_bytes" yaml:"max_size_bytes"`
	// Color controls ANSI colors on the console: "always", "auto", "never"
	Color string `mapstructure:"color" yaml:"color"`
	// ReportCaller prefixes records with the calling function and line
	ReportCaller bool `mapstructure:"report_caller" yaml:"report_caller"`
}

// I18nConfig controls the translator
type I18nConfig struct {
	// Dir holds the <LANG>.json / .yaml translation files
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Language is the active language code (default: "EN")
	Language string `mapstructure:"language" yaml:"language"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:     "info",
			Output:    "console",
			Dir:       logging.DefaultBaseDir,
			MaxSizeMB: 10,
			Color:     "always",
		},
		I18n: I18nConfig{
			Dir:      "./res/translate",
			Language: "EN",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.output", defaults.Logging.Output)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_size_bytes", defaults.Logging.MaxSizeBytes)
	viper.SetDefault("logging.color", defaults.Logging.Color)
	viper.SetDefault("logging.report_caller", defaults.Logging.ReportCaller)

	viper.SetDefault("i18n.dir", defaults.I18n.Dir)
	viper.SetDefault("i18n.language", defaults.I18n.Language)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, or the defaults if it is invalid
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mytool")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mytool"
	}
	return filepath.Join(home, ".config", "mytool")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// MaxFileBytes returns the rotation threshold in bytes.
func (c LoggingConfig) MaxFileBytes() int64 {
	if c.MaxSizeBytes > 0 {
		return c.MaxSizeBytes
	}
	return int64(c.MaxSizeMB) * 1024 * 1024
}

// Options converts the logging section into logger options. The config is
// assumed to have been validated; unparsable values fall back to defaults.
func (c LoggingConfig) Options() []logging.Option {
	level, _ := logging.ParseLevel(c.Level)
	mode, _ := logging.ParseOutputMode(c.Output)
	opts := []logging.Option{
		logging.WithLevel(level),
		logging.WithOutput(mode),
		logging.WithMaxFileBytes(c.MaxFileBytes()),
		logging.WithColor(logging.ParseColorMode(c.Color)),
		logging.WithReportCaller(c.ReportCaller),
	}
	if c.Dir != "" {
		opts = append(opts, logging.WithBaseDir(c.Dir))
	}
	return opts
}

// Apply pushes the logging section onto a running logger. Color is fixed
// at construction and is not changed.
func (c LoggingConfig) Apply(l *logging.Logger) error {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	mode, err := logging.ParseOutputMode(c.Output)
	if err != nil {
		return err
	}

	l.SetLevel(level)
	l.SetMaxFileSize(c.MaxFileBytes())
	l.SetReportCaller(c.ReportCaller)
	if c.Dir != "" && c.Dir != l.BaseDirectory() {
		if err := l.SetBaseDirectory(c.Dir); err != nil {
			return err
		}
	}
	l.SetOutputMode(mode)
	return nil
}
