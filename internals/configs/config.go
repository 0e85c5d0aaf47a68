package configs

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret     string
	WebhookSecret string
	CronSecret    string
	AdminEmail    string
	FromEmail     string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	// On Railway/Vercel-style deployments the environment is injected; only
	// read .env for local runs.
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("[INFO] no .env file found, using system environment")
		}
	}

	JWTSecret = GetEnv("JWT_SECRET")
	WebhookSecret = GetEnv("RAZORPAY_WEBHOOK_SECRET")
	CronSecret = GetEnv("CRON_SECRET")
	AdminEmail = GetEnv("ADMIN_EMAIL", "sachinuppal@gmail.com")
	FromEmail = GetEnv("FROM_EMAIL", "Ilika Foundation <onboarding@resend.dev>")

	if JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET is not set, admin endpoints will reject all tokens")
	}
	if WebhookSecret == "" {
		log.Println("[WARN] RAZORPAY_WEBHOOK_SECRET is not set, webhook verification will fail closed")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[INFO] "+msg, data...)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[WARN] "+msg, data...)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[ERROR] "+msg, data...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	if err != nil {
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	} else if elapsed > l.SlowThreshold {
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
