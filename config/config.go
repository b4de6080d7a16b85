package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
	Calendar  CalendarConfig
	Payment   PaymentConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Booking   BookingConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Env            string
	LogLevel       string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type DBConfig struct {
	Driver       string
	SQLitePath   string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	TimeZone     string
	MaxIdleConns int
	MaxOpenConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP relay is configured.
func (c MailConfig) Enabled() bool {
	return c.Host != ""
}

type CalendarConfig struct {
	WebhookURL string
	Token      string
	Timeout    time.Duration
}

type PaymentConfig struct {
	StripeSecretKey string
	Currency        string
}

type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	RelayEvery  time.Duration
	BatchSize   int
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	SampleRatio  float64
}

// BookingConfig tunes scheduling behavior shared by every tenant.
type BookingConfig struct {
	SlotStep           time.Duration
	WaitlistExpiryDays int
	LockTTL            time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional; the environment alone is enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			RequestTimeout: parseDuration("APP_REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:   viper.GetInt64("APP_MAX_BODY_BYTES"),
		},
		DB: DBConfig{
			Driver:       strings.ToLower(viper.GetString("DB_DRIVER")),
			SQLitePath:   viper.GetString("DB_SQLITE_PATH"),
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Name:         viper.GetString("DB_NAME"),
			SSLMode:      viper.GetString("DB_SSLMODE"),
			TimeZone:     viper.GetString("DB_TIMEZONE"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			AutoMigrate:  viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  parseDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: parseDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Enabled: viper.GetBool("RATE_LIMIT_ENABLED"),
			Limit:   viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:  parseDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Mail: MailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetString("SMTP_PORT"),
			Username: viper.GetString("SMTP_USERNAME"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		Calendar: CalendarConfig{
			WebhookURL: viper.GetString("CALENDAR_WEBHOOK_URL"),
			Token:      viper.GetString("CALENDAR_WEBHOOK_TOKEN"),
			Timeout:    parseDuration("CALENDAR_TIMEOUT", 5*time.Second),
		},
		Payment: PaymentConfig{
			StripeSecretKey: viper.GetString("STRIPE_SECRET_KEY"),
			Currency:        strings.ToLower(viper.GetString("PAYMENT_CURRENCY")),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(viper.GetString("KAFKA_BROKERS")),
			TopicPrefix: viper.GetString("KAFKA_TOPIC_PREFIX"),
			RelayEvery:  parseDuration("OUTBOX_RELAY_INTERVAL", 2*time.Second),
			BatchSize:   viper.GetInt("OUTBOX_BATCH_SIZE"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      viper.GetBool("OTEL_ENABLED"),
			ServiceName:  viper.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SampleRatio:  viper.GetFloat64("OTEL_SAMPLING_RATIO"),
		},
		Booking: BookingConfig{
			SlotStep:           parseDuration("BOOKING_SLOT_STEP", 15*time.Minute),
			WaitlistExpiryDays: viper.GetInt("WAITLIST_EXPIRY_DAYS"),
			LockTTL:            parseDuration("BOOKING_LOCK_TTL", 10*time.Second),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "appointment-saas")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_MAX_BODY_BYTES", 1<<20)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_SQLITE_PATH", "appointments.db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("SMTP_PORT", "25")
	viper.SetDefault("SMTP_FROM", "no-reply@appointments.local")
	viper.SetDefault("PAYMENT_CURRENCY", "usd")
	viper.SetDefault("KAFKA_TOPIC_PREFIX", "appointments")
	viper.SetDefault("OUTBOX_BATCH_SIZE", 50)
	viper.SetDefault("OTEL_SERVICE_NAME", "appointment-saas")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	viper.SetDefault("OTEL_SAMPLING_RATIO", 1.0)
	viper.SetDefault("WAITLIST_EXPIRY_DAYS", 30)
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
