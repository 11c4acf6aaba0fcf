package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Telegram TelegramConfig `yaml:"telegram"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Watch    WatchConfig    `yaml:"watch"`
	Operator OperatorConfig `yaml:"operator"`
	LogLevel string         `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type TelegramConfig struct {
	BaseURL  string        `yaml:"base_url"`
	BotToken string        `yaml:"bot_token"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type WatchConfig struct {
	Interval              time.Duration `yaml:"interval"`
	PacingDelay           time.Duration `yaml:"pacing_delay"`
	ErrorBackoff          time.Duration `yaml:"error_backoff"`
	NotificationChannelID int64         `yaml:"notification_channel_id"`
	AdminUserID           int64         `yaml:"admin_user_id"`
}

type OperatorConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token is required")
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = "https://api.telegram.org"
	}
	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = 30 * time.Second
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "gift_watcher"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "discoveries"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "gift_discoveries"
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = 2 * time.Second
	}
	if c.Watch.PacingDelay == 0 {
		c.Watch.PacingDelay = 400 * time.Millisecond
	}
	if c.Watch.ErrorBackoff == 0 {
		c.Watch.ErrorBackoff = 15 * time.Second
	}
	if c.Operator.ListenAddr == "" {
		c.Operator.ListenAddr = ":8080"
	}
	if c.Operator.ShutdownTimeout == 0 {
		c.Operator.ShutdownTimeout = 10 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
