package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// ConnectAttempts bounds the startup ping retries while the database comes up.
	ConnectAttempts int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds settings for the issued QR code registry.
// An empty URL disables the registry.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// JWTConfig holds access token settings.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// QRConfig holds QR attendance code settings.
type QRConfig struct {
	Window  time.Duration
	PNGSize int
}

// ScheduleConfig describes the teaching calendar used to resolve schedule text.
type ScheduleConfig struct {
	// SemesterStart is a YYYY-MM-DD date inside the first teaching week.
	SemesterStart string
	// LessonTimes overrides the default lesson table, e.g. "08:00-08:45,08:55-09:40".
	LessonTimes  string
	LateAfter    time.Duration
	EarlyCheckIn time.Duration
}

// PhotoConfig holds attendance photo settings.
type PhotoConfig struct {
	MaxWidth      int
	MaxUploadMB   int
	RetentionDays int
	CleanupCron   string
}

// ImportConfig holds roster import settings.
type ImportConfig struct {
	// DefaultPassword is assigned to imported users. Empty means "use the username".
	DefaultPassword string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	LogLevel string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	JWT      JWTConfig
	QR       QRConfig
	Schedule ScheduleConfig
	Photo    PhotoConfig
	Import   ImportConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "Asia/Shanghai"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectAttempts:    getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "attendapi"),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		QR: QRConfig{
			Window:  getEnvDuration("QR_WINDOW", 10*time.Second),
			PNGSize: getEnvInt("QR_PNG_SIZE", 256),
		},
		Schedule: ScheduleConfig{
			SemesterStart: getEnv("SEMESTER_START", ""),
			LessonTimes:   getEnv("LESSON_TIMES", ""),
			LateAfter:     time.Duration(getEnvInt("LATE_AFTER_MINUTES", 10)) * time.Minute,
			EarlyCheckIn:  time.Duration(getEnvInt("EARLY_CHECKIN_MINUTES", 15)) * time.Minute,
		},
		Photo: PhotoConfig{
			MaxWidth:      getEnvInt("PHOTO_MAX_WIDTH", 640),
			MaxUploadMB:   getEnvInt("PHOTO_MAX_UPLOAD_MB", 8),
			RetentionDays: getEnvInt("PHOTO_RETENTION_DAYS", 30),
			CleanupCron:   getEnv("PHOTO_CLEANUP_CRON", "0 3 * * *"),
		},
		Import: ImportConfig{
			DefaultPassword: getEnv("IMPORT_DEFAULT_PASSWORD", ""),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
