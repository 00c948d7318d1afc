package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Odoo     OdooConfig
	Places   PlacesConfig
	Report   ReportConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds the ticket store (PostgreSQL) connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// OdooConfig holds credentials for the entity directory (Odoo XML-RPC).
type OdooConfig struct {
	URL      string
	Database string
	Username string
	APIKey   string
}

// PlacesConfig holds the external places-search provider settings.
// Language and region bias the search results; the portal serves German
// properties, so both default to "de".
type PlacesConfig struct {
	APIKey   string
	Language string
	Region   string
}

// ReportConfig holds document and mail constants. VATRate is the single
// tax rate shared between the report renderer and the offer mail.
type ReportConfig struct {
	VATRate        float64
	InvoiceMailbox string
	TeamName       string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "facility")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("PLACES_LANGUAGE", "de")
	v.SetDefault("PLACES_REGION", "de")
	v.SetDefault("VAT_RATE", 0.19)
	v.SetDefault("INVOICE_MAILBOX", "inv@redefine.group")
	v.SetDefault("TEAM_NAME", "Ihr REDEFINE Team")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Odoo: OdooConfig{
			URL:      v.GetString("ODOO_URL"),
			Database: v.GetString("ODOO_DB"),
			Username: v.GetString("ODOO_USER"),
			APIKey:   v.GetString("ODOO_API_KEY"),
		},
		Places: PlacesConfig{
			APIKey:   v.GetString("GOOGLE_PLACES_API_KEY"),
			Language: v.GetString("PLACES_LANGUAGE"),
			Region:   v.GetString("PLACES_REGION"),
		},
		Report: ReportConfig{
			VATRate:        v.GetFloat64("VAT_RATE"),
			InvoiceMailbox: v.GetString("INVOICE_MAILBOX"),
			TeamName:       v.GetString("TEAM_NAME"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
// The Places API key is intentionally optional: external vendor search
// degrades to a typed precondition error when it is missing.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if c.Odoo.URL == "" {
		return fmt.Errorf("ODOO_URL is required")
	}
	if c.Odoo.Database == "" {
		return fmt.Errorf("ODOO_DB is required")
	}
	if c.Odoo.Username == "" {
		return fmt.Errorf("ODOO_USER is required")
	}
	if c.Odoo.APIKey == "" {
		return fmt.Errorf("ODOO_API_KEY is required")
	}

	if c.Report.VATRate <= 0 || c.Report.VATRate >= 1 {
		return fmt.Errorf("VAT_RATE must be between 0 and 1 exclusive")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
