package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xqrs/sheetview"
	"github.com/xqrs/sheetview/keybind"
)

// Config holds the demo configuration.
type Config struct {
	Sheet SheetConfig `mapstructure:"sheet"`
	Keys  KeysConfig  `mapstructure:"keys"`
	Log   LogConfig   `mapstructure:"log"`
	Demo  DemoConfig  `mapstructure:"demo"`
	App   AppConfig   `mapstructure:"app"`
}

// SheetConfig holds fling and animation tuning.
type SheetConfig struct {
	MinFlingVelocity     float64       `mapstructure:"min_fling_velocity"`
	MaxFlingVelocity     float64       `mapstructure:"max_fling_velocity"`
	TransferDamping      float64       `mapstructure:"transfer_damping"`
	Friction             float64       `mapstructure:"friction"`
	SmoothScrollDuration time.Duration `mapstructure:"smooth_scroll_duration"`
	// Rows of the sheet left visible when it is collapsed.
	PeekRows int `mapstructure:"peek_rows"`
}

// KeysConfig holds the sheet's key bindings.
type KeysConfig struct {
	Expand   []string `mapstructure:"expand"`
	Collapse []string `mapstructure:"collapse"`
	Toggle   []string `mapstructure:"toggle"`
}

// LogConfig holds logging settings. An empty file disables logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DemoConfig holds the demo content.
type DemoConfig struct {
	Items int `mapstructure:"items"`
}

// AppConfig holds event loop settings.
type AppConfig struct {
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

var (
	ErrInvalidPeekRows      = errors.New("peek rows must be positive")
	ErrInvalidItems         = errors.New("demo items must not be negative")
	ErrInvalidFrameInterval = errors.New("frame interval must be positive")
	ErrInvalidLogLevel      = errors.New("unknown log level")
)

// Load reads configuration from defaults, an optional TOML file, env, and
// command line flags, in increasing precedence. Env var overrides use prefix
// SHEETDEMO_. The config file is taken from --config, then SHEETDEMO_CONFIG,
// then ~/.config/sheetdemo/config.toml if present.
func Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("sheetdemo", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a TOML config file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "file to write logs to")
	flags.Int("items", 0, "number of demo list items")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()

	// default values
	defaults := sheetview.DefaultSheetConfig()
	v.SetDefault("sheet.min_fling_velocity", defaults.MinFlingVelocity)
	v.SetDefault("sheet.max_fling_velocity", defaults.MaxFlingVelocity)
	v.SetDefault("sheet.transfer_damping", defaults.TransferDamping)
	v.SetDefault("sheet.friction", defaults.Friction)
	v.SetDefault("sheet.smooth_scroll_duration", defaults.SmoothScrollDuration)
	v.SetDefault("sheet.peek_rows", 4)
	v.SetDefault("keys.expand", []string{"ctrl+e"})
	v.SetDefault("keys.collapse", []string{"ctrl+d"})
	v.SetDefault("keys.toggle", []string{"ctrl+t"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("demo.items", 60)
	v.SetDefault("app.frame_interval", sheetview.DefaultFrameInterval)

	v.SetConfigType("toml")

	path := *configPath
	if path == "" {
		path = os.Getenv("SHEETDEMO_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "sheetdemo"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SHEETDEMO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, flag := range map[string]string{
		"log.level":  "log-level",
		"log.file":   "log-file",
		"demo.items": "items",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit one must exist.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := c.SheetConfig().Validate(); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	if c.Sheet.PeekRows <= 0 {
		return fmt.Errorf("sheet: peek rows %d: %w", c.Sheet.PeekRows, ErrInvalidPeekRows)
	}
	if c.Demo.Items < 0 {
		return fmt.Errorf("demo: items %d: %w", c.Demo.Items, ErrInvalidItems)
	}
	if c.App.FrameInterval <= 0 {
		return fmt.Errorf("app: frame interval %v: %w", c.App.FrameInterval, ErrInvalidFrameInterval)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// SheetConfig returns the sheet tuning.
func (c Config) SheetConfig() sheetview.SheetConfig {
	return sheetview.SheetConfig{
		MinFlingVelocity:     c.Sheet.MinFlingVelocity,
		MaxFlingVelocity:     c.Sheet.MaxFlingVelocity,
		TransferDamping:      c.Sheet.TransferDamping,
		Friction:             c.Sheet.Friction,
		SmoothScrollDuration: c.Sheet.SmoothScrollDuration,
	}
}

// SheetKeybinds returns the configured sheet key bindings.
func (c Config) SheetKeybinds() sheetview.SheetKeybinds {
	keybinds := sheetview.DefaultSheetKeybinds()
	rebind(&keybinds.Expand, c.Keys.Expand, "expand")
	rebind(&keybinds.Collapse, c.Keys.Collapse, "collapse")
	rebind(&keybinds.Toggle, c.Keys.Toggle, "toggle sheet")
	return keybinds
}

// rebind replaces the keys of k. An empty list unbinds it.
func rebind(k *keybind.Keybind, keys []string, desc string) {
	k.SetKeys(keys...)
	if len(keys) > 0 {
		k.SetHelp(keys[0], desc)
	}
}

// LogLevel parses the configured log level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%q: %w", c.Log.Level, ErrInvalidLogLevel)
	}
	return level, nil
}
