package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Processing ProcessingConfig
	Upload     UploadConfig
	Reaper     ReaperConfig
	Log        LogConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
}

type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" required:"true"`
	Password        string        `envconfig:"DB_PASSWORD" required:"true"`
	Name            string        `envconfig:"DB_NAME" required:"true"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	MigrationsPath  string        `envconfig:"DB_MIGRATIONS_PATH" default:"migrations"`
	ApplicationName string        `envconfig:"DB_APPLICATION_NAME" default:"asset-pipeline"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret      string        `envconfig:"AUTH_JWT_SECRET" required:"true"`
	AccessTokenTTL time.Duration `envconfig:"AUTH_ACCESS_TOKEN_TTL" default:"15m"`
}

const (
	DriverLocal = "local"
	DriverS3    = "s3"
	DriverMinio = "minio"
	DriverGCS   = "gcs"
)

type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"local"`
	Bucket string `envconfig:"STORAGE_BUCKET" default:"assets"`
	Local  LocalStorageConfig
	S3     S3Config
	Minio  MinioConfig
	GCS    GCSConfig
}

type LocalStorageConfig struct {
	Root        string `envconfig:"STORAGE_LOCAL_ROOT" default:"./data"`
	PublicURL   string `envconfig:"STORAGE_LOCAL_PUBLIC_URL" default:"http://localhost:8080/files"`
	UploadURL   string `envconfig:"STORAGE_LOCAL_UPLOAD_URL" default:"http://localhost:8080/api/v1/uploads/direct"`
	TokenSecret string `envconfig:"STORAGE_LOCAL_TOKEN_SECRET"`
}

type S3Config struct {
	Endpoint        string `envconfig:"S3_ENDPOINT"`
	Region          string `envconfig:"S3_REGION" default:"us-east-1"`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `envconfig:"S3_USE_PATH_STYLE" default:"false"`
	PublicURL       string `envconfig:"S3_PUBLIC_URL"`
}

type MinioConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	PublicURL string `envconfig:"MINIO_PUBLIC_URL"`
}

type GCSConfig struct {
	CredentialsFile     string `envconfig:"GCS_CREDENTIALS_FILE"`
	ServiceAccountEmail string `envconfig:"GCS_SERVICE_ACCOUNT_EMAIL"`
	PrivateKey          string `envconfig:"GCS_PRIVATE_KEY"`
	PublicURL           string `envconfig:"GCS_PUBLIC_URL"`
}

type ProcessingConfig struct {
	DefaultFormat string `envconfig:"PROCESSING_DEFAULT_FORMAT" default:"webp"`
	Concurrency   int    `envconfig:"PROCESSING_CONCURRENCY" default:"4"`
	SizeBounds    []int  `envconfig:"PROCESSING_SIZE_BOUNDS" default:"1920,1280,640,320"`
	MaxPixels     int    `envconfig:"PROCESSING_MAX_PIXELS" default:"50000000"`
}

type UploadConfig struct {
	SessionTTL        time.Duration `envconfig:"UPLOAD_SESSION_TTL" default:"30m"`
	PresignTTL        time.Duration `envconfig:"UPLOAD_PRESIGN_TTL" default:"15m"`
	UploadConcurrency int           `envconfig:"UPLOAD_CONCURRENCY" default:"4"`
	CleanupTimeout    time.Duration `envconfig:"UPLOAD_CLEANUP_TIMEOUT" default:"30s"`
	Kinds             []string      `envconfig:"UPLOAD_KINDS" default:"category,build,device,promo,banner"`
	SessionStore      string        `envconfig:"UPLOAD_SESSION_STORE" default:"redis"`
}

type ReaperConfig struct {
	Enabled   bool          `envconfig:"REAPER_ENABLED" default:"true"`
	Schedule  string        `envconfig:"REAPER_SCHEDULE" default:"@every 5m"`
	Grace     time.Duration `envconfig:"REAPER_GRACE" default:"10m"`
	BatchSize int           `envconfig:"REAPER_BATCH_SIZE" default:"100"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"10"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RateLimitConfig struct {
	Enabled        bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMin int  `envconfig:"RATE_LIMIT_REQUESTS_PER_MIN" default:"60"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverLocal:
		if c.Storage.Local.TokenSecret == "" {
			c.Storage.Local.TokenSecret = c.Auth.JWTSecret
		}
	case DriverS3:
		if c.Storage.S3.AccessKeyID == "" || c.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("s3 driver requires S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY")
		}
	case DriverMinio:
		if c.Storage.Minio.AccessKey == "" || c.Storage.Minio.SecretKey == "" {
			return fmt.Errorf("minio driver requires MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
		}
	case DriverGCS:
		if c.Storage.GCS.ServiceAccountEmail == "" || c.Storage.GCS.PrivateKey == "" {
			return fmt.Errorf("gcs driver requires GCS_SERVICE_ACCOUNT_EMAIL and GCS_PRIVATE_KEY")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Upload.PresignTTL > c.Upload.SessionTTL {
		return fmt.Errorf("UPLOAD_PRESIGN_TTL must not exceed UPLOAD_SESSION_TTL")
	}
	if c.Processing.Concurrency < 1 {
		c.Processing.Concurrency = 1
	}
	if c.Upload.UploadConcurrency < 1 {
		c.Upload.UploadConcurrency = 1
	}
	return nil
}
