package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the Ember server and its dependencies.
type Config struct {
	// Listen is the address the Ember server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// DatabasePath is the directory where the sqlite database file is stored.
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// Auth holds the authentication configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// Cloudinary holds the configuration for the Cloudinary image host.
	Cloudinary *CloudinaryConfig `yaml:"cloudinary" mapstructure:"cloudinary"`
}

// AuthConfig holds the authentication configuration.
type AuthConfig struct {
	// TokenSecret is the symmetric key used to sign identity tokens.
	TokenSecret string `yaml:"token_secret" mapstructure:"token_secret"`
	// TokenTTL is the validity window of issued tokens in hours.
	TokenTTL int `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// CloudinaryConfig holds the account credentials for the Cloudinary API.
type CloudinaryConfig struct {
	// CloudName is the Cloudinary cloud name.
	CloudName string `yaml:"cloud_name" mapstructure:"cloud_name"`
	// APIKey is the Cloudinary API key.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// APISecret is the Cloudinary API secret used for request signing.
	APISecret string `yaml:"api_secret" mapstructure:"api_secret"`
	// UploadURL is the base URL of the upload API. Only changed in tests.
	UploadURL string `yaml:"upload_url" mapstructure:"upload_url"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("EMBER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ember")
		v.AddConfigPath("/etc/ember")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, run on defaults and env vars only.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with EMBER_ prefix will override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:5000")
	v.SetDefault("database_path", "./data")
	v.SetDefault("log_level", "info")

	v.SetDefault("auth.token_secret", "")
	v.SetDefault("auth.token_ttl", 24)

	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.upload_url", "https://api.cloudinary.com")
}

func validateConfig(c *Config) error {
	if c.Auth == nil || c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth.token_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Cloudinary == nil || c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
		return fmt.Errorf("cloudinary cloud_name, api_key and api_secret are required")
	}
	return nil
}
