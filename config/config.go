package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port               string
	GinMode            string
	DBDriver           string
	DBDSN              string
	JWTSecret          string
	TokenTTL           time.Duration
	RedisAddr          string
	RabbitMQURL        string
	RabbitMQExchange   string
	CORSOrigin         string
	LogLevel           string
	LogFormat          string
	LoginRatePerMinute int
}

const defaultJWTSecret = "change-me-in-production"

// Load reads .env (when present) and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:               getenv("PORT", "8080"),
		GinMode:            getenv("GIN_MODE", "debug"),
		DBDriver:           strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:              dsnFromEnv(),
		JWTSecret:          getenv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:           getduration("TOKEN_TTL", 24*time.Hour),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange:   getenv("RABBITMQ_EXCHANGE", "cafe.orders"),
		CORSOrigin:         getenv("CORS_ORIGIN", "http://localhost:5173"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFormat:          getenv("LOG_FORMAT", "text"),
		LoginRatePerMinute: getint("LOGIN_RATE_PER_MINUTE", 10),
	}
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// InitDB opens the configured store. Supported drivers: mysql, sqlite.
func InitDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	return db, nil
}

func dsnFromEnv() string {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn
	}
	if os.Getenv("MYSQL_HOST") == "" {
		return "cafe.db"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		os.Getenv("MYSQL_USER"),
		os.Getenv("MYSQL_PASSWORD"),
		os.Getenv("MYSQL_HOST"),
		getenv("MYSQL_PORT", "3306"),
		getenv("MYSQL_DATABASE", "cafe"),
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getduration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
