package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Webhook   WebhookConfig
	Facebook  FacebookConfig
	Graph     GraphConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// WebhookConfig contains the inbound webhook verification settings.
type WebhookConfig struct {
	VerifyToken string
	// AppSecret signs webhook bodies. When empty, signature verification is
	// bypassed entirely; see the handler tests covering that gap.
	AppSecret string
}

// FacebookConfig contains app-level Meta credentials used during onboarding.
type FacebookConfig struct {
	AppID           string
	SystemUserToken string
	CreditLineID    string
	// AccessToken is the default token for outbound sends when a stored
	// client token is not available.
	AccessToken string
}

// GraphConfig locates the Meta Graph API.
type GraphConfig struct {
	BaseURL    string
	APIVersion string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig configures the optional lead-export spreadsheet. Export is
// disabled when either field is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// SchedulerConfig holds the phone-quality refresh schedule.
type SchedulerConfig struct {
	QualityRefreshCron string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Webhook: WebhookConfig{
			VerifyToken: os.Getenv("WEBHOOK_VERIFY_TOKEN"),
			AppSecret:   os.Getenv("FACEBOOK_APP_SECRET"),
		},
		Facebook: FacebookConfig{
			AppID:           os.Getenv("FACEBOOK_APP_ID"),
			SystemUserToken: os.Getenv("FACEBOOK_SYSTEM_USER_TOKEN"),
			CreditLineID:    os.Getenv("FACEBOOK_CREDIT_LINE_ID"),
			AccessToken:     os.Getenv("WHATSAPP_TOKEN"),
		},
		Graph: GraphConfig{
			BaseURL:    getenvWithDefault("GRAPH_BASE_URL", "https://graph.facebook.com"),
			APIVersion: getenvWithDefault("GRAPH_API_VERSION", "v24.0"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "wagateway"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("LEAD_SHEET_ID"),
		},
		Scheduler: SchedulerConfig{
			QualityRefreshCron: getenvWithDefault("QUALITY_REFRESH_CRON", "0 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Webhook.VerifyToken == "" {
		return errors.New("WEBHOOK_VERIFY_TOKEN must be provided")
	}

	if c.Facebook.AppID == "" {
		return errors.New("FACEBOOK_APP_ID must be provided")
	}

	if c.Graph.BaseURL == "" {
		return errors.New("GRAPH_BASE_URL must not be empty")
	}

	if c.Graph.APIVersion == "" {
		return errors.New("GRAPH_API_VERSION must not be empty")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Scheduler.QualityRefreshCron == "" {
		return errors.New("QUALITY_REFRESH_CRON must be provided")
	}

	// AppSecret, SystemUserToken, CreditLineID and the sheets settings are
	// deliberately optional; dependent features degrade to no-ops.
	return nil
}

// LeadExportEnabled reports whether the Google Sheets lead export is configured.
func (c *Config) LeadExportEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

// CreditLineConfigured reports whether credit-line sharing can be attempted.
func (c *Config) CreditLineConfigured() bool {
	return c.Facebook.SystemUserToken != "" && c.Facebook.CreditLineID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
