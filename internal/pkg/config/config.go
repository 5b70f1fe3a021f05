package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: values that differ between environments (ports, credentials,
//   supplier/gateway secrets)
// - default: values common across environments (TTLs, poll budgets, thresholds)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Supplier SupplierConfig
	Razorpay RazorpayConfig
	Booking  BookingConfig
	CORS     CORSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers            []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	BookingEventsTopic string   `envconfig:"KAFKA_BOOKING_EVENTS_TOPIC" default:"booking-events"`
	NotificationsTopic string   `envconfig:"KAFKA_NOTIFICATIONS_TOPIC" default:"booking-notifications"`
	GroupID            string   `envconfig:"KAFKA_GROUP_ID" default:"farelock-worker"`
}

type SupplierConfig struct {
	BaseURL string        `envconfig:"SUPPLIER_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"SUPPLIER_API_KEY" required:"true"`
	Timeout time.Duration `envconfig:"SUPPLIER_TIMEOUT" default:"20s"`
}

type RazorpayConfig struct {
	BaseURL       string        `envconfig:"RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	KeyID         string        `envconfig:"RAZORPAY_KEY_ID" required:"true"`
	KeySecret     string        `envconfig:"RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"RAZORPAY_WEBHOOK_SECRET" required:"true"`
	Timeout       time.Duration `envconfig:"RAZORPAY_TIMEOUT" default:"15s"`
}

type BookingConfig struct {
	SnapshotTTL        time.Duration `envconfig:"BOOKING_SNAPSHOT_TTL" default:"15m"`
	SeatHoldTTL        time.Duration `envconfig:"BOOKING_SEAT_HOLD_TTL" default:"10m"`
	ConfirmGuardWindow time.Duration `envconfig:"BOOKING_CONFIRM_GUARD_WINDOW" default:"5m"`
	FareAlertThreshold float64       `envconfig:"BOOKING_FARE_ALERT_THRESHOLD" default:"5"`
	TicketPollAttempts int           `envconfig:"BOOKING_TICKET_POLL_ATTEMPTS" default:"5"`
	TicketPollInterval time.Duration `envconfig:"BOOKING_TICKET_POLL_INTERVAL" default:"2s"`
	SweepInterval      time.Duration `envconfig:"BOOKING_SWEEP_INTERVAL" default:"1m"`
	Currency           string        `envconfig:"BOOKING_CURRENCY" default:"INR"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,X-Razorpay-Signature"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02T15:04:05.000Z07:00"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}
