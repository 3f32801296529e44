package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultSyncFolder = "BookRise"
	DefaultBaseURL    = "https://api.bookrise.app"
	DefaultServerHost = "127.0.0.1"
)

type Config struct {
	Settings SettingsConfig `mapstructure:"settings"`
	API      APIConfig      `mapstructure:"api"`
	Vault    VaultConfig    `mapstructure:"vault"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
}

// SettingsConfig is the user facing settings record.
type SettingsConfig struct {
	APIKey                 string `mapstructure:"api_key"`
	SyncFolder             string `mapstructure:"sync_folder" validate:"required,vaultpath"`
	CreateNotePerHighlight bool   `mapstructure:"create_note_per_highlight"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	// ChatURL defaults to BaseURL when empty.
	ChatURL           string  `mapstructure:"chat_url" validate:"omitempty,url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	RetryAttempts     uint    `mapstructure:"retry_attempts" validate:"lte=10"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
}

type VaultConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
}

type CacheConfig struct {
	File     string         `mapstructure:"file" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type ServerConfig struct {
	// Host is the interface to listen on. Empty listens on every interface.
	Host string     `mapstructure:"host" validate:"omitempty,ip|hostname_rfc1123"`
	Port int        `mapstructure:"port" validate:"gte=0,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/bookrise")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("settings.api_key", "")
	v.SetDefault("settings.sync_folder", DefaultSyncFolder)
	v.SetDefault("settings.create_note_per_highlight", false)
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.chat_url", "")
	v.SetDefault("api.timeout_seconds", 60)
	v.SetDefault("api.retry_attempts", 0)
	v.SetDefault("api.requests_per_second", 0)
	v.SetDefault("vault.directory", ".")
	v.SetDefault("cache.file", ".bookrise/books.yml")
	v.SetDefault("cache.database.enabled", false)
	v.SetDefault("cache.database.host", "localhost")
	v.SetDefault("cache.database.port", 3306)
	v.SetDefault("cache.database.database", "bookrise")
	v.SetDefault("cache.database.username", "user")
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.cors.allowed_origins", []string{"app://obsidian.md", "http://localhost:3000"})
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper
	setDefaults(v)

	if err := v.BindEnv("settings.api_key", "BOOKRISE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind BOOKRISE_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("api.base_url", "BOOKRISE_BASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind BOOKRISE_BASE_URL environment variable: %w", err)
	}
	if err := v.BindEnv("cache.database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}
	return loader.decode()
}

func (loader *ConfigLoader) decode() (*Config, error) {
	var cfg Config
	if err := loader.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	if err := loader.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid field in one error.
func (loader *ConfigLoader) Validate(cfg *Config) error {
	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("validator.Struct > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}
	return nil
}

// ConfigFile returns the file the configuration was read from, or an empty string.
func (loader *ConfigLoader) ConfigFile() string {
	return loader.viper.ConfigFileUsed()
}

// Watch calls onChange with the reloaded configuration whenever the config file changes.
// An invalid file is reported through onError and the previous configuration stays in effect.
func (loader *ConfigLoader) Watch(onChange func(*Config), onError func(error)) {
	loader.viper.OnConfigChange(func(event fsnotify.Event) {
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}
		cfg, err := loader.decode()
		if err != nil {
			onError(fmt.Errorf("reload %s > %w", event.Name, err))
			return
		}
		onChange(cfg)
	})
	loader.viper.WatchConfig()
}
