// Package config loads searchify settings from defaults, an optional YAML
// file, and SEARCHIFY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	OCR       OCRConfig       `mapstructure:"ocr" yaml:"ocr"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type OCRConfig struct {
	Engine          string        `mapstructure:"engine" yaml:"engine"`
	Languages       []string      `mapstructure:"languages" yaml:"languages"`
	DPI             int           `mapstructure:"dpi" yaml:"dpi"`
	PSM             int           `mapstructure:"psm" yaml:"psm"`
	// Whitelist limits recognition to these characters; empty allows all.
	Whitelist       string        `mapstructure:"whitelist" yaml:"whitelist"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheSize       int           `mapstructure:"cache_size" yaml:"cache_size"`
	ConnectAttempts uint          `mapstructure:"connect_attempts" yaml:"connect_attempts"`
}

type SchedulerConfig struct {
	PageDelay time.Duration `mapstructure:"page_delay" yaml:"page_delay"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Engine:          "tesseract",
			Languages:       []string{"eng"},
			DPI:             300,
			PSM:             3,
			CacheSize:       256,
			ConnectAttempts: 3,
		},
		Scheduler: SchedulerConfig{PageDelay: 100 * time.Millisecond},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.OCR.Engine {
	case "tesseract", "noop":
	default:
		return fmt.Errorf("ocr.engine: unknown engine %q", c.OCR.Engine)
	}
	if c.OCR.DPI <= 0 {
		return fmt.Errorf("ocr.dpi: must be positive, got %d", c.OCR.DPI)
	}
	if c.OCR.Timeout < 0 || c.Scheduler.PageDelay < 0 {
		return errors.New("durations must not be negative")
	}
	if c.OCR.CacheSize < 0 {
		return fmt.Errorf("ocr.cache_size: must not be negative, got %d", c.OCR.CacheSize)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.Log.Level)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level: unknown level %q", s)
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v *viper.Viper

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager and loads the initial config. An empty
// cfgFile searches ./searchify.yaml and $HOME/.searchify/searchify.yaml.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}
	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}
	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	d := DefaultConfig()
	v := cm.v
	v.SetDefault("ocr.engine", d.OCR.Engine)
	v.SetDefault("ocr.languages", d.OCR.Languages)
	v.SetDefault("ocr.dpi", d.OCR.DPI)
	v.SetDefault("ocr.psm", d.OCR.PSM)
	v.SetDefault("ocr.whitelist", d.OCR.Whitelist)
	v.SetDefault("ocr.timeout", d.OCR.Timeout)
	v.SetDefault("ocr.cache_size", d.OCR.CacheSize)
	v.SetDefault("ocr.connect_attempts", d.OCR.ConnectAttempts)
	v.SetDefault("scheduler.page_delay", d.Scheduler.PageDelay)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	// SEARCHIFY_OCR_DPI overrides ocr.dpi
	v.SetEnvPrefix("SEARCHIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("searchify")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.searchify")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFileUsed returns the file the config was read from, if any.
func (cm *Manager) ConfigFileUsed() string { return cm.v.ConfigFileUsed() }

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading. Invalid edits are ignored and the
// previous config stays active.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(fsnotify.Event) {
		cm.reload()
	})
	cm.v.WatchConfig()
}

func (cm *Manager) reload() {
	cfg, err := cm.load()
	if err != nil {
		return
	}
	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := []byte("# searchify configuration\n# Every key can be overridden with SEARCHIFY_<SECTION>_<KEY>, e.g. SEARCHIFY_OCR_DPI=150\n\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
