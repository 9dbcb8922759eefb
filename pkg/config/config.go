package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const envPrefix = "ANIMELINK__"

type PathsConfig struct {
	State   string `koanf:"state"`
	Source  string `koanf:"source"`
	Library string `koanf:"library"`
}

type FiltersConfig struct {
	// Ignore holds expressions marking newly discovered sources as skip.
	Ignore []string `koanf:"ignore"`
}

type Configuration struct {
	Paths         PathsConfig         `koanf:"paths"`
	Filters       FiltersConfig       `koanf:"filters"`
	Notifications NotificationsConfig `koanf:"notifications"`
}

var (
	Config *Configuration
	K      = koanf.New(".")
)

var defaults = map[string]interface{}{
	"paths.state":    ".data/data.yaml",
	"paths.source":   "SOURCE",
	"paths.library":  "ANIME",
	"filters.ignore": []string{},

	"notifications.detailed":        false,
	"notifications.skip_empty_run":  true,
	"notifications.service.discord": "",
}

// Init loads defaults, the optional config file, then the environment into
// Config. A missing config file is not an error.
func Init(configFilePath string) error {
	K = koanf.New(".")

	if err := K.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}

	if configFilePath != "" {
		if _, err := os.Stat(configFilePath); err == nil {
			if err := K.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
				return fmt.Errorf("load config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	if err := K.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	cfg := &Configuration{}
	if err := K.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	Config = cfg
	return nil
}

// envKey maps ANIMELINK__PATHS__SOURCE to paths.source.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

func (c *Configuration) Validate() error {
	switch {
	case c.Paths.State == "":
		return errors.New("paths.state must be set")
	case c.Paths.Source == "":
		return errors.New("paths.source must be set")
	case c.Paths.Library == "":
		return errors.New("paths.library must be set")
	}
	return nil
}
