package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"docscan-gateway/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	LogLevel       string
	BackendURL     string
	SupabaseURL    string
	SupabaseKey    string
	GoogleClientID string
	SiteURL        string
	LoginRedirect  string
	AllowedOrigins []string
	PollInterval   time.Duration
	MaxUploadSize  int64
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		BackendURL:     strings.TrimRight(getEnvOrDefault("API_BACKEND", ""), "/"),
		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		GoogleClientID: getEnvOrDefault("GOOGLE_CLIENT_ID", ""),
		SiteURL:        getEnvOrDefault("SITE_URL", "http://localhost:3000"),
		LoginRedirect:  getEnvOrDefault("GOOGLE_LOGIN_REDIRECT", "/auth/callback"),
		AllowedOrigins: getEnvListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		PollInterval:   getEnvDurationOrDefault("STATUS_POLL_INTERVAL", 2000*time.Millisecond),
		MaxUploadSize:  getEnvInt64OrDefault("MAX_UPLOAD_SIZE", 50*1024*1024), // 50MB default
	}
}

// Validate checks eagerly that every required value is present, so a
// misconfigured process fails at startup instead of on the first request.
func (c *AppConfig) Validate() error {
	var missing []string
	if c.BackendURL == "" {
		missing = append(missing, "API_BACKEND")
	}
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetBackendURL returns the OCR backend base URL
func (c *AppConfig) GetBackendURL() string {
	return c.BackendURL
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetGoogleClientID returns the Google OAuth client id
func (c *AppConfig) GetGoogleClientID() string {
	return c.GoogleClientID
}

// GetSiteURL returns the public site URL
func (c *AppConfig) GetSiteURL() string {
	return c.SiteURL
}

// GetLoginRedirect returns the OAuth redirect target path
func (c *AppConfig) GetLoginRedirect() string {
	return c.LoginRedirect
}

// GetAllowedOrigins returns the CORS origin allow-list
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetPollInterval returns the status poll interval
func (c *AppConfig) GetPollInterval() time.Duration {
	return c.PollInterval
}

// GetMaxUploadSize returns the maximum allowed multipart body size
func (c *AppConfig) GetMaxUploadSize() int64 {
	return c.MaxUploadSize
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts either a Go duration string ("2s") or a
// bare millisecond count ("2000").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
