package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting; each field maps to one environment variable.
type Config struct {
	Port          string `env:"PORT" envDefault:"8000"`
	SocketPort    string `env:"WS_PORT" envDefault:"8080"`
	WSSURL        string `env:"WSS_URL" envDefault:"ws://localhost:8080/ws"`
	IndexHTMLPath string `env:"INDEX_HTML_PATH" envDefault:"public/index.html"`
	GinMode       string `env:"GIN_MODE"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigin    string `env:"CORS_ORIGIN" envDefault:"*"`
	HTTPRateLimit int    `env:"HTTP_RATE_LIMIT" envDefault:"50"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"cafe.db"`

	SeatRows    int `env:"SEAT_ROWS" envDefault:"4"`
	SeatColumns int `env:"SEAT_COLUMNS" envDefault:"4"`

	OpenHour         int           `env:"OPEN_HOUR" envDefault:"7"`
	CloseHour        int           `env:"CLOSE_HOUR" envDefault:"19"`
	AccrualInterval  time.Duration `env:"ACCRUAL_INTERVAL" envDefault:"1m"`
	AccrualCooldown  time.Duration `env:"ACCRUAL_COOLDOWN" envDefault:"20m"`
	AccrualReward    int64         `env:"ACCRUAL_REWARD" envDefault:"50"`
	DeliveryInterval time.Duration `env:"DELIVERY_INTERVAL" envDefault:"1s"`
	DeliveryJitter   time.Duration `env:"DELIVERY_JITTER" envDefault:"2s"`

	WSMessageRate  float64 `env:"WS_MESSAGE_RATE" envDefault:"20"`
	WSMessageBurst int     `env:"WS_MESSAGE_BURST" envDefault:"40"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AMQPURL   string `env:"AMQP_URL"`
	AMQPQueue string `env:"AMQP_QUEUE" envDefault:"cafe.events"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or mysql, got %q", c.DBDriver)
	}
	if c.SeatRows < 1 || c.SeatRows > 26 || c.SeatColumns < 1 {
		return fmt.Errorf("seat roster %dx%d out of range", c.SeatRows, c.SeatColumns)
	}
	if c.OpenHour < 0 || c.CloseHour > 24 || c.OpenHour >= c.CloseHour {
		return fmt.Errorf("operating window [%d, %d) is invalid", c.OpenHour, c.CloseHour)
	}
	if c.AccrualInterval <= 0 || c.DeliveryInterval <= 0 {
		return fmt.Errorf("scheduler intervals must be positive")
	}
	if c.DeliveryJitter < 0 || c.AccrualReward < 0 {
		return fmt.Errorf("jitter and reward must not be negative")
	}
	return nil
}
