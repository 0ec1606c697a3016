package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/deskbell/internal/notify"
)

const (
	appName   = "deskbell"
	envPrefix = "DESKBELL_"
)

type Config struct {
	AppName string `koanf:"app_name" validate:"required"`

	// Options merged under every notification
	Defaults DefaultsConfig `koanf:"defaults"`
}

// DefaultsConfig holds the default notification options.
type DefaultsConfig struct {
	Body    string `koanf:"body"`
	Icon    string `koanf:"icon"`                                                   // path or icon name
	Urgency string `koanf:"urgency" validate:"omitempty,oneof=low normal critical"`
	Timeout int32  `koanf:"timeout" validate:"min=-1"`                              // ms, -1 = server default
	Delay   int    `koanf:"delay" validate:"min=0"`                                 // ms before auto-close, 0 = never

	Actions map[string]string `koanf:"actions"` // action key -> label
	Hints   map[string]any    `koanf:"hints"`   // passed through to the host
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads config files and DESKBELL_* environment variables.
// Extra paths are read after the standard locations and win over them.
func Load(extra ...string) (*Config, error) {
	return load(append(getConfigPaths(), extra...))
}

func load(paths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	// DESKBELL_DEFAULTS__DELAY=5000 -> defaults.delay
	if err := k.Load(env.Provider(envPrefix, ".", transformEnv), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{
		AppName: appName,
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Defaults.Icon = expandPath(cfg.Defaults.Icon)

	return cfg, nil
}

func transformEnv(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/deskbell/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))

	// 2. ./deskbell.toml (pwd, highest priority)
	paths = append(paths, appName+".toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// DefaultOptions converts the defaults section to notification options.
func (c *Config) DefaultOptions() notify.Options {
	d := c.Defaults
	return notify.Options{
		Body:    d.Body,
		Icon:    d.Icon,
		Urgency: notify.ParseUrgency(d.Urgency),
		Timeout: d.Timeout,
		Delay:   time.Duration(d.Delay) * time.Millisecond,
		Actions: d.Actions,
		Hints:   d.Hints,
	}
}
