package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/cloudvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	APIURL           string         `json:"api_url"`
	AuthURL          string         `json:"auth_url"`
	TokenURL         string         `json:"token_url"`
	AuthAPIKey       string         `json:"auth_api_key"`
	ViewerURL        string         `json:"viewer_url"`
	StateDB          string         `json:"state_db"`
	DownloadDir      string         `json:"download_dir"`
	LogLevel         string         `json:"log_level"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	PageSize         int            `json:"page_size"`
	TextPreviewLimit int64          `json:"text_preview_limit"`
}

// parseJSON overlays cfg with the non-empty values of the JSON file at path.
// An empty path is a no-op.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	for _, f := range []struct {
		src string
		dst *string
	}{
		{jc.APIURL, &cfg.APIURL},
		{jc.AuthURL, &cfg.AuthURL},
		{jc.TokenURL, &cfg.TokenURL},
		{jc.AuthAPIKey, &cfg.AuthAPIKey},
		{jc.ViewerURL, &cfg.ViewerURL},
		{jc.StateDB, &cfg.StateDB},
		{jc.DownloadDir, &cfg.DownloadDir},
		{jc.LogLevel, &cfg.LogLevel},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PageSize != 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.TextPreviewLimit != 0 {
		cfg.TextPreviewLimit = jc.TextPreviewLimit
	}
	return nil
}
