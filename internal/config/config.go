package config

import (
	"errors"
	"flag"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// EnvProduction значение ENV, при котором включаются production-настройки (логгер, rate limit).
const EnvProduction = "production"

type Config struct {
	Env         string `env:"ENV"`
	BaseURL     string `env:"BASE_URL"`
	FrontendURL string `env:"FRONTEND_URL"`

	// База данных
	DatabaseDSN string `env:"DATABASE_URI"`

	// JWT
	AuthSecret       string        `env:"AUTH_SECRET"`
	JWTExpire        time.Duration `env:"JWT_EXPIRE"`
	ResetTokenExpire time.Duration `env:"RESET_TOKEN_EXPIRE"`

	// SMTP
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	EmailFrom    string `env:"EMAIL_FROM"`

	// AWS S3
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION"`
	AWSBucketName      string `env:"AWS_BUCKET_NAME"`
	AWSEndpoint        string `env:"AWS_ENDPOINT"` // S3-совместимое хранилище, опционально

	// Google Cloud Storage
	GCSProjectID   string `env:"GCS_PROJECT_ID"`
	GCSBucketName  string `env:"GCS_BUCKET_NAME"`
	GCSCredentials string `env:"GCS_CREDENTIALS"` // JSON сервисного аккаунта

	UploadMaxSizeMB int           `env:"UPLOAD_MAX_MB"`
	UserCacheTTL    time.Duration `env:"USER_CACHE_TTL"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// NewConfig читает .env, окружение и флаги командной строки сервера.
func NewConfig() *Config {
	cfg := fromEnv()

	// flags перекрывают значения из env только если заданы явно
	flag.StringVar(&cfg.Env, "env", cfg.Env, "окружение (development, production)")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера в формате host:port")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.FrontendURL, "frontend-url", cfg.FrontendURL, "URL фронтенда для ссылок сброса пароля")
	flag.IntVar(&cfg.UploadMaxSizeMB, "upload-max-mb", cfg.UploadMaxSizeMB, "максимальный размер загружаемого файла, MB")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

// FromEnv читает только .env и окружение. Для утилит со своим разбором флагов.
func FromEnv() *Config {
	cfg := fromEnv()
	cfg.applyDefaults()
	return cfg
}

func fromEnv() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)
	return cfg
}

func (c *Config) applyDefaults() {
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]*:\d{1,5}$`)
	if !hostPortRe.MatchString(c.BaseURL) {
		c.BaseURL = "localhost:3535"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.JWTExpire <= 0 {
		c.JWTExpire = 24 * time.Hour
	}
	if c.ResetTokenExpire <= 0 {
		c.ResetTokenExpire = 10 * time.Minute
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.AWSRegion == "" {
		c.AWSRegion = "us-east-1"
	}
	if c.UploadMaxSizeMB <= 0 {
		c.UploadMaxSizeMB = 50
	}
	if c.UserCacheTTL <= 0 {
		c.UserCacheTTL = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
}

// IsProduction сообщает, запущен ли сервис в production-окружении.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// SMTPEnabled: заданы ли параметры SMTP для отправки писем.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.EmailFrom != ""
}

// Validate проверяет наличие обязательных параметров. Сервер не стартует без них.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_URI", c.DatabaseDSN},
		{"AUTH_SECRET", c.AuthSecret},
		{"AWS_BUCKET_NAME", c.AWSBucketName},
		{"GCS_BUCKET_NAME", c.GCSBucketName},
		{"GCS_CREDENTIALS", c.GCSCredentials},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config validation error: missing %s", strings.Join(missing, ", "))
	}
	if (c.AWSAccessKeyID == "") != (c.AWSSecretAccessKey == "") {
		return errors.New("config validation error: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}
	return nil
}
