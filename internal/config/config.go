package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `env:",prefix=SERVER_"`
	Database  DatabaseConfig  `env:",prefix=POSTGRES_"`
	Telegram  TelegramConfig  `env:",prefix=TELEGRAM_"`
	Broadcast BroadcastConfig `env:",prefix=BROADCAST_"`
	RabbitMQ  RabbitMQConfig  `env:",prefix=RABBITMQ_"`
	Env       string          `env:"ENV,default=development"`
	LogLevel  string          `env:"LOG_LEVEL,default=info"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port       string `env:"PORT,default=8080"`
	AdminToken string `env:"ADMIN_TOKEN"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=botpanel"`
	Password string `env:"PASSWORD"`
	DBName   string `env:"DB,default=botpanel_db"`
	SSLMode  string `env:"SSL_MODE,default=disable"`
}

// TelegramConfig holds bot API configuration
type TelegramConfig struct {
	BotToken string `env:"BOT_TOKEN"`
}

// BroadcastConfig holds delivery engine tuning knobs
type BroadcastConfig struct {
	// TriggerSecret authenticates the external tick trigger
	TriggerSecret string `env:"TRIGGER_SECRET"`
	// BatchSize is the recipient window processed per tick
	BatchSize int `env:"BATCH_SIZE,default=50"`
	// SendDelay is the minimum pause between consecutive sends
	SendDelay time.Duration `env:"SEND_DELAY,default=350ms"`
	// TickInterval is the worker's cron period between ticks
	TickInterval time.Duration `env:"TICK_INTERVAL,default=2m"`
}

// RabbitMQConfig holds the activity-feed broker configuration.
// The broker is optional: when Host is empty, tick events are not published.
type RabbitMQConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT,default=5672"`
	User     string `env:"DEFAULT_USER,default=guest"`
	Password string `env:"DEFAULT_PASS,default=guest"`
	Queue    string `env:"QUEUE,default=broadcast_ticks"`
}

// Load reads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.Broadcast.TriggerSecret == "" {
		return nil, fmt.Errorf("BROADCAST_TRIGGER_SECRET is required")
	}
	if cfg.Broadcast.BatchSize <= 0 {
		return nil, fmt.Errorf("BROADCAST_BATCH_SIZE must be positive")
	}

	return &cfg, nil
}

// GetDatabaseDSN returns the PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRabbitMQURL returns the AMQP connection URL
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		c.RabbitMQ.User,
		c.RabbitMQ.Password,
		c.RabbitMQ.Host,
		c.RabbitMQ.Port,
	)
}

// EventsEnabled reports whether tick events should be published
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.Host != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
