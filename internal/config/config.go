package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/keycase/internal/casing"
	"github.com/dshills/keycase/internal/input/key"
)

// Config holds every keycase setting.
type Config struct {
	Log     LogConfig         `toml:"log" envPrefix:"LOG_"`
	Session SessionConfig     `toml:"session"`
	Keymap  map[string]string `toml:"keymap"`
	Plugin  PluginConfig      `toml:"plugin" envPrefix:"PLUGIN_"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

// LogConfig configures the log sink.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" env:"LEVEL"`
	// File is the log file. Empty discards logs.
	File string `toml:"file" env:"FILE"`
}

// SessionConfig configures input sessions.
type SessionConfig struct {
	// Notify shows a status message when a session starts or ends.
	Notify bool `toml:"notify" env:"NOTIFY"`
	// DefaultStyle starts a session in this style on launch. Empty starts none.
	DefaultStyle string `toml:"default_style" env:"DEFAULT_STYLE"`
}

// PluginConfig configures the Lua init script.
type PluginConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Init    string `toml:"init" env:"INIT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		Session: SessionConfig{Notify: true},
		Keymap:  map[string]string{},
		Plugin:  PluginConfig{Enabled: true},
	}
}

// DefaultPath returns the user config file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "keycase", "config.toml")
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error

	if !logLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, &ValidationError{Path: "log.level", Message: "must be debug, info, warn or error", Value: c.Log.Level})
	}
	if c.Session.DefaultStyle != "" {
		if _, err := casing.ParseStyle(c.Session.DefaultStyle); err != nil {
			errs = append(errs, &ValidationError{Path: "session.default_style", Message: err.Error(), Value: c.Session.DefaultStyle})
		}
	}

	specs := make([]string, 0, len(c.Keymap))
	for spec := range c.Keymap {
		specs = append(specs, spec)
	}
	sort.Strings(specs)
	for _, spec := range specs {
		if _, err := key.Parse(spec); err != nil {
			errs = append(errs, &ValidationError{Path: "keymap." + spec, Message: err.Error(), Value: c.Keymap[spec]})
		}
	}

	return errors.Join(errs...)
}

// DefaultStyle returns the configured launch style.
func (c *Config) DefaultStyle() (casing.Style, bool) {
	if c.Session.DefaultStyle == "" {
		return casing.StyleBase, false
	}
	s, err := casing.ParseStyle(c.Session.DefaultStyle)
	return s, err == nil
}

// InitScript returns the plugin init script path with a leading ~
// expanded, or "" when plugins are disabled.
func (c *Config) InitScript() string {
	if !c.Plugin.Enabled || c.Plugin.Init == "" {
		return ""
	}
	return expandHome(c.Plugin.Init)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// String returns a short description for logs.
func (c *Config) String() string {
	src := c.Path
	if src == "" {
		src = "defaults"
	}
	return fmt.Sprintf("config(%s, %d key bindings)", src, len(c.Keymap))
}

// LogFile returns the log file path with a leading ~ expanded.
func (c *Config) LogFile() string {
	return expandHome(c.Log.File)
}
