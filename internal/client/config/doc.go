// Package config loads runtime configuration for the CloudVault client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, loaded with godotenv. Variables
//     already set in the environment win over the file.
//  3. Environment variables (see parseEnv).
//  4. Optional JSON file (see parseJSON) selected via flags: -c or -config.
//  5. Command-line flags (see parseFlags), which override earlier values.
//
// The result is checked with go-playground/validator.
//
// Environment
//
//	CLOUDVAULT_API_URL          backend base URL
//	CLOUDVAULT_AUTH_URL         identity provider base URL
//	CLOUDVAULT_TOKEN_URL        token refresh endpoint
//	CLOUDVAULT_AUTH_API_KEY     identity provider API key
//	CLOUDVAULT_VIEWER_URL       embedded document viewer
//	CLOUDVAULT_STATE_DB         path of the local state database
//	CLOUDVAULT_DOWNLOAD_DIR     where downloads are saved
//	CLOUDVAULT_LOG_LEVEL        debug, info, warn or error
//	CLOUDVAULT_REQUEST_TIMEOUT  request timeout in seconds
//	CLOUDVAULT_PAGE_SIZE        files per catalog page
//
// Supported flags
//
//	-a string   backend base URL
//	-t int      request timeout (seconds)
//	-d string   download directory
//	-l string   log level
//
// # JSON schema
//
// Durations are timex.Duration, so "30s" and integer nanoseconds both work.
// Absent keys keep the earlier value.
//
//	{
//	  "api_url": "https://api.cloudvault.example",
//	  "auth_url": "https://identitytoolkit.googleapis.com",
//	  "auth_api_key": "...",
//	  "request_timeout": "30s",
//	  "page_size": 12
//	}
package config
