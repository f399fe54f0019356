package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/cloudvault/internal/flagx"
)

// Config holds runtime settings for the CloudVault client.
type Config struct {
	APIURL           string `validate:"required,url"`
	AuthURL          string `validate:"required,url"`
	TokenURL         string `validate:"required,url"`
	AuthAPIKey       string
	ViewerURL        string        `validate:"required,url"`
	StateDB          string        `validate:"required"`
	DownloadDir      string        `validate:"required"`
	LogLevel         string        `validate:"oneof=debug info warn warning error"`
	RequestTimeout   time.Duration `validate:"gt=0"`
	PageSize         int           `validate:"min=1,max=100"`
	TextPreviewLimit int64         `validate:"gt=0"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:5000"
	c.AuthURL = "https://identitytoolkit.googleapis.com"
	c.TokenURL = "https://securetoken.googleapis.com/v1/token"
	c.ViewerURL = "https://docs.google.com/gview"
	c.StateDB = "cloudvault.db"
	c.DownloadDir = "downloads"
	c.LogLevel = "warn"
	c.RequestTimeout = 30 * time.Second
	c.PageSize = 12
	c.TextPreviewLimit = 1 << 20
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from the process environment and arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, .env, environment, JSON and flags in that order.
// Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, flagx.ConfigFilePath(args)); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseEnv(cfg *Config) error {
	flagx.EnvString("CLOUDVAULT_API_URL", &cfg.APIURL)
	flagx.EnvString("CLOUDVAULT_AUTH_URL", &cfg.AuthURL)
	flagx.EnvString("CLOUDVAULT_TOKEN_URL", &cfg.TokenURL)
	flagx.EnvString("CLOUDVAULT_AUTH_API_KEY", &cfg.AuthAPIKey)
	flagx.EnvString("CLOUDVAULT_VIEWER_URL", &cfg.ViewerURL)
	flagx.EnvString("CLOUDVAULT_STATE_DB", &cfg.StateDB)
	flagx.EnvString("CLOUDVAULT_DOWNLOAD_DIR", &cfg.DownloadDir)
	flagx.EnvString("CLOUDVAULT_LOG_LEVEL", &cfg.LogLevel)

	if err := flagx.EnvSeconds("CLOUDVAULT_REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return fmt.Errorf("CLOUDVAULT_REQUEST_TIMEOUT: %w", err)
	}
	if err := flagx.EnvInt("CLOUDVAULT_PAGE_SIZE", &cfg.PageSize); err != nil {
		return fmt.Errorf("CLOUDVAULT_PAGE_SIZE: %w", err)
	}
	return nil
}
