package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/viper"
)

const defaultConfigFile = "config.yml"

var ErrUnknownSetting = errors.New("unknown setting")

type setting struct {
	apply func(cfg *SettingsConfig, value string) (any, error)
}

var settings = map[string]setting{
	"api_key": {apply: func(cfg *SettingsConfig, value string) (any, error) {
		cfg.APIKey = value
		return value, nil
	}},
	"sync_folder": {apply: func(cfg *SettingsConfig, value string) (any, error) {
		cfg.SyncFolder = value
		return value, nil
	}},
	"create_note_per_highlight": {apply: func(cfg *SettingsConfig, value string) (any, error) {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("strconv.ParseBool(%s) > %w", value, err)
		}
		cfg.CreateNotePerHighlight = enabled
		return enabled, nil
	}},
}

// SettingKeys returns the keys accepted by SetSetting.
func SettingKeys() []string {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SetSetting validates and persists a single settings key, then returns the updated configuration.
// Only the changed key is written, so values that come from the environment stay out of the file.
func (loader *ConfigLoader) SetSetting(key, value string) (*Config, error) {
	s, ok := settings[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrUnknownSetting)
	}

	cfg, err := loader.decode()
	if err != nil {
		return nil, err
	}
	typed, err := s.apply(&cfg.Settings, value)
	if err != nil {
		return nil, err
	}
	if err := loader.Validate(cfg); err != nil {
		return nil, err
	}

	file := loader.ConfigFile()
	if file == "" {
		file = defaultConfigFile
	}
	if err := writeSetting(file, "settings."+key, typed); err != nil {
		return nil, err
	}

	loader.viper.SetConfigFile(file)
	if err := loader.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig(%s) > %w", file, err)
	}
	return loader.decode()
}

func writeSetting(file, key string, value any) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return fmt.Errorf("viper.ReadInConfig(%s) > %w", file, err)
		}
	}
	v.Set(key, value)

	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
		}
	}
	if err := v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("viper.WriteConfigAs(%s) > %w", file, err)
	}
	return nil
}
