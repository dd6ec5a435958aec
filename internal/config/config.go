// Package config загружает конфигурацию сервиса из TOML файла
// с переопределением секретов из окружения (.env поддерживается).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	// ErrLoadConfig ошибка чтения файла конфигурации
	ErrLoadConfig = errors.New("config: failed to load config")

	// ErrInvalidConfig конфигурация содержит недопустимые значения
	ErrInvalidConfig = errors.New("config: invalid config")
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Scheduling SchedulingConfig `toml:"scheduling"`
	Booking    BookingConfig    `toml:"booking"`
	Redis      RedisConfig      `toml:"redis"`
	Notifier   NotifierConfig   `toml:"notifier"`
	Seed       SeedConfig       `toml:"seed"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// SchedulingConfig параметры генерации слотов
type SchedulingConfig struct {
	// Timezone часовой пояс операционного региона, например "Europe/Moscow"
	Timezone                    string `toml:"timezone"`
	SlotStepMinutes             int    `toml:"slot_step_minutes"`
	NormalCapacity              int    `toml:"normal_capacity"`
	AnalysisCapacity            int    `toml:"analysis_capacity"`
	HorizonDays                 int    `toml:"horizon_days"`
	RegenerationIntervalMinutes int    `toml:"regeneration_interval_minutes"`
	ReconcileOnStart            bool   `toml:"reconcile_on_start"`
}

// BookingConfig параметры транзакции бронирования
type BookingConfig struct {
	LockTimeoutMs   int `toml:"lock_timeout_ms"`
	MaxRetries      int `toml:"max_retries"`
	MaxNoteLength   int `toml:"max_note_length"`
	NotifyTimeoutMs int `toml:"notify_timeout_ms"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type NotifierConfig struct {
	Channel    string `toml:"channel"`
	WebhookURL string `toml:"webhook_url"` // используется, если Redis выключен
}

// SeedConfig начальные данные для driver = "memory"
type SeedConfig struct {
	Tenants []TenantSeed `toml:"tenants"`
}

type TenantSeed struct {
	ID         int64  `toml:"id"`
	Name       string `toml:"name"`
	DailyLimit int    `toml:"daily_limit"`
}

// Load читает TOML файл, затем .env (если есть) и переменные окружения
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}

	// .env не обязателен, в production переменные приходят из окружения
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}

// Validate проверяет значения и заполняет значения по умолчанию
func (c *Config) Validate() error {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverMemory {
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "physio-booking"
	}

	if c.Scheduling.Timezone == "" {
		c.Scheduling.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Scheduling.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q: %v", ErrInvalidConfig, c.Scheduling.Timezone, err)
	}
	if c.Scheduling.SlotStepMinutes <= 0 {
		return fmt.Errorf("%w: slot_step_minutes must be positive", ErrInvalidConfig)
	}
	if c.Scheduling.NormalCapacity < 1 {
		return fmt.Errorf("%w: normal_capacity must be at least 1", ErrInvalidConfig)
	}
	if c.Scheduling.AnalysisCapacity == 0 {
		c.Scheduling.AnalysisCapacity = 1
	}
	if c.Scheduling.AnalysisCapacity < 1 {
		return fmt.Errorf("%w: analysis_capacity must be at least 1", ErrInvalidConfig)
	}
	if c.Scheduling.HorizonDays < 1 {
		return fmt.Errorf("%w: horizon_days must be at least 1", ErrInvalidConfig)
	}
	if c.Scheduling.RegenerationIntervalMinutes <= 0 {
		c.Scheduling.RegenerationIntervalMinutes = 60
	}

	if c.Booking.LockTimeoutMs <= 0 {
		c.Booking.LockTimeoutMs = 2000
	}
	if c.Booking.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	if c.Booking.MaxNoteLength <= 0 {
		c.Booking.MaxNoteLength = 500
	}
	if c.Booking.NotifyTimeoutMs <= 0 {
		c.Booking.NotifyTimeoutMs = 1000
	}

	for _, t := range c.Seed.Tenants {
		if t.ID <= 0 || t.DailyLimit < 0 {
			return fmt.Errorf("%w: seed tenant id=%d limit=%d", ErrInvalidConfig, t.ID, t.DailyLimit)
		}
	}

	if c.Notifier.Channel == "" {
		c.Notifier.Channel = "physio:bookings"
	}
	return nil
}

// DSN строка подключения lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Location часовой пояс операционного региона, Validate гарантирует корректность
func (s SchedulingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (b BookingConfig) LockTimeout() time.Duration {
	return time.Duration(b.LockTimeoutMs) * time.Millisecond
}

func (b BookingConfig) NotifyTimeout() time.Duration {
	return time.Duration(b.NotifyTimeoutMs) * time.Millisecond
}

func (s SchedulingConfig) RegenerationInterval() time.Duration {
	return time.Duration(s.RegenerationIntervalMinutes) * time.Minute
}
