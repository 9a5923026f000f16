package courier

import (
	"strings"
	"time"

	"github.com/boutique/storefront/internal/infrastructure/config"
)

const (
	// SteadfastProductionURL is the production API endpoint
	SteadfastProductionURL = "https://portal.packzy.com/api/v1"
	// DefaultTrackingURLTemplate builds the public tracking page from a tracking code
	DefaultTrackingURLTemplate = "https://steadfast.com.bd/t/%s"
	// DefaultTimeout bounds every courier request
	DefaultTimeout = 30 * time.Second
	// DefaultCity is used when no known city or area appears in the address
	DefaultCity = "Dhaka"
)

// Config holds the Steadfast API settings
type Config struct {
	BaseURL             string
	APIKey              string
	SecretKey           string
	Timeout             time.Duration
	TrackingURLTemplate string
	DefaultCity         string
}

// NewConfig builds a courier Config from the application configuration
func NewConfig(cfg config.CourierConfig) *Config {
	c := &Config{
		BaseURL:             cfg.BaseURL,
		APIKey:              cfg.APIKey,
		SecretKey:           cfg.SecretKey,
		Timeout:             cfg.Timeout,
		TrackingURLTemplate: cfg.TrackingURLTemplate,
		DefaultCity:         cfg.DefaultCity,
	}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = SteadfastProductionURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if !strings.Contains(c.TrackingURLTemplate, "%s") {
		c.TrackingURLTemplate = DefaultTrackingURLTemplate
	}
	if c.DefaultCity == "" {
		c.DefaultCity = DefaultCity
	}
}

// HasCredentials reports whether both API keys are set
func (c *Config) HasCredentials() bool {
	return c.APIKey != "" && c.SecretKey != ""
}
