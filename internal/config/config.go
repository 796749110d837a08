// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	ExtJS() ExtJSConfig
	Fill() FillConfig

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserExecPath(string)

	// ExtJS Setters
	SetExtJSAjaxTimeout(d time.Duration)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	ExtJSCfg   ExtJSConfig   `mapstructure:"extjs" yaml:"extjs"`
	FillCfg    FillConfig    `mapstructure:"fill" yaml:"fill"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) ExtJS() ExtJSConfig     { return c.ExtJSCfg }
func (c *Config) Fill() FillConfig       { return c.FillCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)           { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserExecPath(p string)         { c.BrowserCfg.ExecPath = p }
func (c *Config) SetExtJSAjaxTimeout(d time.Duration) { c.ExtJSCfg.AjaxTimeout = d }

// LoggerConfig holds all the configuration for the logger.
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

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the Chrome instances driven over CDP.
type BrowserConfig struct {
	Headless          bool           `mapstructure:"headless" yaml:"headless"`
	DisableCache      bool           `mapstructure:"disable_cache" yaml:"disable_cache"`
	IgnoreTLSErrors   bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Concurrency       int            `mapstructure:"concurrency" yaml:"concurrency"`
	ExecPath          string         `mapstructure:"exec_path" yaml:"exec_path"`
	Args              []string       `mapstructure:"args" yaml:"args"`
	Viewport          map[string]int `mapstructure:"viewport" yaml:"viewport"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration  `mapstructure:"action_timeout" yaml:"action_timeout"`
}

// ExtJSConfig captures the DOM conventions of the ExtJS toolkit under test and
// the timings used when waiting on its asynchronous updates.
type ExtJSConfig struct {
	AjaxTimeout  time.Duration `mapstructure:"ajax_timeout" yaml:"ajax_timeout"`
	AjaxSettle   time.Duration `mapstructure:"ajax_settle" yaml:"ajax_settle"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	DateLayout   string        `mapstructure:"date_layout" yaml:"date_layout"`
	// FieldSelector matches the input of each form field reported by the inspect
	// and fill commands. Type and checked state are read from the input and its
	// wrappers up to the enclosing form item.
	FieldSelector string `mapstructure:"field_selector" yaml:"field_selector"`
}

// FillConfig holds the sample values typed by FillInRandomValue and the pacing
// of the fill command.
type FillConfig struct {
	TextAreaValue    string  `mapstructure:"textarea_value" yaml:"textarea_value"`
	DateValue        string  `mapstructure:"date_value" yaml:"date_value"`
	TimeValue        string  `mapstructure:"time_value" yaml:"time_value"`
	ActionsPerSecond float64 `mapstructure:"actions_per_second" yaml:"actions_per_second"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "extjswd")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.concurrency", 2)
	v.SetDefault("browser.viewport", map[string]int{"width": 1366, "height": 768})
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.action_timeout", "30s")

	// -- ExtJS --
	v.SetDefault("extjs.ajax_timeout", "30s")
	v.SetDefault("extjs.ajax_settle", "150ms")
	v.SetDefault("extjs.poll_interval", "500ms")
	v.SetDefault("extjs.date_layout", "02/01/2006")
	v.SetDefault("extjs.field_selector", ".x-form-item .x-form-field")

	// -- Fill --
	v.SetDefault("fill.textarea_value", "This is a textarea")
	v.SetDefault("fill.date_value", "27/10/2014")
	v.SetDefault("fill.time_value", "10:00")
	v.SetDefault("fill.actions_per_second", 4.0)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	v.BindEnv("browser.exec_path", "EXTJSWD_CHROME_PATH")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.BrowserCfg.Concurrency <= 0 {
		return fmt.Errorf("browser.concurrency must be a positive integer")
	}
	if err := c.ExtJSCfg.Validate(); err != nil {
		return fmt.Errorf("extjs configuration invalid: %w", err)
	}
	if c.FillCfg.ActionsPerSecond < 0 {
		return fmt.Errorf("fill.actions_per_second must not be negative")
	}
	return nil
}

// Validate checks the ExtJS timing settings.
func (e *ExtJSConfig) Validate() error {
	if e.AjaxTimeout <= 0 {
		return fmt.Errorf("ajax_timeout must be a positive duration")
	}
	if e.AjaxSettle < 0 {
		return fmt.Errorf("ajax_settle must not be negative")
	}
	if e.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration")
	}
	if len(e.DateLayout) != 10 {
		return fmt.Errorf("date_layout must be exactly 10 characters, got %q", e.DateLayout)
	}
	return nil
}
