package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Courier   CourierConfig
	Mail      MailConfig
	Storage   StorageConfig
	Kafka     KafkaConfig
	Scheduler SchedulerConfig
	Dashboard DashboardConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	MigrationsPath  string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds the settings used to verify admin access tokens
type JWTConfig struct {
	Secret    string
	Issuer    string
	AdminRole string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string

	// Checkout requests allowed per client IP within CheckoutRateWindow; 0 disables the limit
	CheckoutRateLimit  int
	CheckoutRateWindow time.Duration
}

// CourierConfig holds the courier gateway settings.
// Missing credentials do not fail loading; the courier client reports them per call.
type CourierConfig struct {
	Provider            string
	BaseURL             string
	APIKey              string
	SecretKey           string
	Timeout             time.Duration
	TrackingURLTemplate string
	DefaultCity         string
}

// MailConfig holds SMTP settings for transactional email
type MailConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	AdminAddress string
	ShopName     string
}

// StorageConfig holds S3-compatible invoice archive settings
type StorageConfig struct {
	Enabled      bool
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	KeyPrefix    string
}

// KafkaConfig holds order event export settings
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// SchedulerConfig holds the courier sync batch settings
type SchedulerConfig struct {
	CourierSyncConcurrency int
	CourierSyncBatchSize   int
	CourierSyncLockTTL     time.Duration
	CourierSyncTimeout     time.Duration
}

// DashboardConfig holds dashboard settings
type DashboardConfig struct {
	CacheTTL time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable tracing
	MetricsEnabled    bool    // Whether to export metrics
	LogsEnabled       bool    // Whether to export zap records as OTLP logs
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STORE_ prefix (e.g., STORE_COURIER_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			MigrationsPath:  v.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt.secret"),
			Issuer:    v.GetString("jwt.issuer"),
			AdminRole: v.GetString("jwt.admin_role"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			CheckoutRateLimit:  v.GetInt("http.checkout_rate_limit"),
			CheckoutRateWindow: v.GetDuration("http.checkout_rate_window"),
		},
		Courier: CourierConfig{
			Provider:            v.GetString("courier.provider"),
			BaseURL:             v.GetString("courier.base_url"),
			APIKey:              v.GetString("courier.api_key"),
			SecretKey:           v.GetString("courier.secret_key"),
			Timeout:             v.GetDuration("courier.timeout"),
			TrackingURLTemplate: v.GetString("courier.tracking_url_template"),
			DefaultCity:         v.GetString("courier.default_city"),
		},
		Mail: MailConfig{
			Enabled:      v.GetBool("mail.enabled"),
			Host:         v.GetString("mail.host"),
			Port:         v.GetInt("mail.port"),
			Username:     v.GetString("mail.username"),
			Password:     v.GetString("mail.password"),
			From:         v.GetString("mail.from"),
			AdminAddress: v.GetString("mail.admin_address"),
			ShopName:     v.GetString("mail.shop_name"),
		},
		Storage: StorageConfig{
			Enabled:      v.GetBool("storage.enabled"),
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
			KeyPrefix:    v.GetString("storage.key_prefix"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("kafka.enabled"),
			Brokers: v.GetStringSlice("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
		Scheduler: SchedulerConfig{
			CourierSyncConcurrency: v.GetInt("scheduler.courier_sync_concurrency"),
			CourierSyncBatchSize:   v.GetInt("scheduler.courier_sync_batch_size"),
			CourierSyncLockTTL:     v.GetDuration("scheduler.courier_sync_lock_ttl"),
			CourierSyncTimeout:     v.GetDuration("scheduler.courier_sync_timeout"),
		},
		Dashboard: DashboardConfig{
			CacheTTL: v.GetDuration("dashboard.cache_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storefront"
	}
	if cfg.JWT.AdminRole == "" {
		cfg.JWT.AdminRole = "admin"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// Courier dispatch can take up to the courier timeout, so writes get more headroom
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 45 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.CheckoutRateWindow == 0 {
		cfg.HTTP.CheckoutRateWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Courier.Provider == "" {
		cfg.Courier.Provider = "steadfast"
	}
	if cfg.Courier.BaseURL == "" {
		cfg.Courier.BaseURL = "https://portal.packzy.com/api/v1"
	}
	if cfg.Courier.Timeout == 0 {
		cfg.Courier.Timeout = 30 * time.Second
	}
	if cfg.Courier.TrackingURLTemplate == "" {
		cfg.Courier.TrackingURLTemplate = "https://steadfast.com.bd/t/%s"
	}
	if cfg.Courier.DefaultCity == "" {
		cfg.Courier.DefaultCity = "Dhaka"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.ShopName == "" {
		cfg.Mail.ShopName = "Storefront"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "invoices"
	}
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "storefront.orders"
	}
	if cfg.Scheduler.CourierSyncConcurrency == 0 {
		cfg.Scheduler.CourierSyncConcurrency = 4
	}
	if cfg.Scheduler.CourierSyncBatchSize == 0 {
		cfg.Scheduler.CourierSyncBatchSize = 200
	}
	if cfg.Scheduler.CourierSyncLockTTL == 0 {
		cfg.Scheduler.CourierSyncLockTTL = 10 * time.Minute
	}
	if cfg.Scheduler.CourierSyncTimeout == 0 {
		cfg.Scheduler.CourierSyncTimeout = 5 * time.Minute
	}
	if cfg.Dashboard.CacheTTL == 0 {
		cfg.Dashboard.CacheTTL = time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "storefront"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Scheduler.CourierSyncConcurrency < 1 {
		return fmt.Errorf("scheduler.courier_sync_concurrency must be at least 1")
	}
	if !strings.Contains(c.Courier.TrackingURLTemplate, "%s") {
		return fmt.Errorf("courier.tracking_url_template must contain %%s")
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		return fmt.Errorf("mail.host and mail.from are required when mail is enabled")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when kafka is enabled")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs with env=production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
