// Package config loads service configuration from a YAML file with
// HELPDESK_-prefixed environment overrides via viper.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the helpdesk service.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Email     EmailConfig     `mapstructure:"email"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Approvals ApprovalsConfig `mapstructure:"approvals"`
	Templates TemplatesConfig `mapstructure:"templates"`
}

// AppConfig carries application-level settings.
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// ServerConfig carries HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitPerHr  int           `mapstructure:"rate_limit_per_hour"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	host := s.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := s.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// DatabaseConfig carries SQL connection settings.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver"`
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	Name                   string `mapstructure:"name"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	SSLMode                string `mapstructure:"ssl_mode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

// DSN builds the driver-specific connection string.
func (d *DatabaseConfig) DSN() (string, error) {
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			d.User, d.Password, d.Host, d.Port, d.Name), nil
	case "postgres":
		ssl := d.SSLMode
		if ssl == "" {
			ssl = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, ssl), nil
	case "sqlite3":
		return d.Name, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", d.Driver)
	}
}

// RedisConfig carries the watermark-store connection settings.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig carries JWT settings.
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// ApprovalsConfig tunes the workflow engine.
type ApprovalsConfig struct {
	// AutoApproveConcurrency bounds the duplicate-approver sweep fan-out.
	AutoApproveConcurrency int `mapstructure:"auto_approve_concurrency"`
	// ReminderSchedule is the cron spec for the pending-approval reminder.
	ReminderSchedule string `mapstructure:"reminder_schedule"`
	// ReminderAfter is how long an approval may sit pending before the
	// reminder job nags the approver.
	ReminderAfter time.Duration `mapstructure:"reminder_after"`
}

// TemplatesConfig locates form template definitions.
type TemplatesConfig struct {
	Dir string `mapstructure:"dir"`
}

var (
	current *Config
	mu      sync.RWMutex
)

// Load reads configuration from the given file (optional) plus environment
// variables and installs it as the process-wide config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("HELPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	mu.Lock()
	current = cfg
	mu.Unlock()
	return cfg, nil
}

// Get returns the installed config, or nil before Load.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "helpdesk")
	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit_per_hour", 3600)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.name", "helpdesk")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 30)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("approvals.auto_approve_concurrency", 4)
	v.SetDefault("approvals.reminder_schedule", "0 8 * * *")
	v.SetDefault("approvals.reminder_after", 24*time.Hour)
	v.SetDefault("templates.dir", "templates")
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.auth_type", "plain")
}
