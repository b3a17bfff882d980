package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. BADIRI_STORAGE_DRIVER.
const EnvPrefix = "BADIRI"

type Config struct {
	Addr     string         `mapstructure:"addr"`
	BaseURL  string         `mapstructure:"base_url"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Session  SessionConfig  `mapstructure:"session"`
	Admin    AdminConfig    `mapstructure:"admin"`
	AI       AIConfig       `mapstructure:"ai"`
	Blob     BlobConfig     `mapstructure:"blob"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Email    EmailConfig    `mapstructure:"email"`
	Log      LogConfig      `mapstructure:"log"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver"` // sqlite, postgres, csv, memory
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	CSVDir      string `mapstructure:"csv_dir"`
	MigrateCSV  bool   `mapstructure:"migrate_csv"`
}

type SessionConfig struct {
	Driver        string        `mapstructure:"driver"` // memory, redis
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// AdminConfig is the built-in super admin login.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type AIConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"` // used when the form leaves the key blank
}

type BlobConfig struct {
	Driver    string `mapstructure:"driver"` // fs, s3, memory
	Root      string `mapstructure:"root"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	PathStyle bool   `mapstructure:"path_style"`
}

type CalendarConfig struct {
	ID              string `mapstructure:"id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// Enabled reports whether due-date sync is configured.
func (c CalendarConfig) Enabled() bool { return c.ID != "" && c.CredentialsFile != "" }

type EmailConfig struct {
	FromEmail    string `mapstructure:"from_email"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	SMTPEnabled  bool   `mapstructure:"smtp_enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     string `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPass     string `mapstructure:"smtp_pass"`
}

// Enabled is true when either transport has credentials.
func (e EmailConfig) Enabled() bool {
	if e.SMTPEnabled {
		return e.SMTPHost != ""
	}
	return e.ResendAPIKey != ""
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("base_url", "http://localhost:8080")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "badiri.db")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.csv_dir", ".")
	v.SetDefault("storage.migrate_csv", true)

	v.SetDefault("session.driver", "memory")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.ttl", "720h")

	v.SetDefault("admin.email", "admin")
	v.SetDefault("admin.password", "Admin123")
	v.SetDefault("admin.name", "Master Admin")

	v.SetDefault("ai.endpoint", "https://generativelanguage.googleapis.com")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.api_key", "")

	v.SetDefault("blob.driver", "fs")
	v.SetDefault("blob.root", "uploads")
	v.SetDefault("blob.bucket", "")
	v.SetDefault("blob.region", "us-east-1")
	v.SetDefault("blob.endpoint", "")
	v.SetDefault("blob.prefix", "")
	v.SetDefault("blob.access_key", "")
	v.SetDefault("blob.secret_key", "")
	v.SetDefault("blob.path_style", false)

	v.SetDefault("calendar.id", "")
	v.SetDefault("calendar.credentials_file", "")

	v.SetDefault("email.from_email", "Badiri <badiri@resend.dev>")
	v.SetDefault("email.resend_api_key", "")
	v.SetDefault("email.smtp_enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", "587")
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_pass", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/badiri.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 30)
	v.SetDefault("log.max_age_days", 90)
}

// Load reads the optional JSON file at path, then applies BADIRI_* environment
// overrides on top of the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
