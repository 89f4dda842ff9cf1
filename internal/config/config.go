package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env         string
	AppSecret   string
	DatabaseURL string
	JWTExpiry   time.Duration
	Port        string
	SiteName    string
	SiteUrl     string

	// 生成式模型
	GeminiAPIKey string
	GeminiModel  string
	OllamaHost   string
	OllamaModel  string

	// Shorts 抓取
	ShortsLimit    int
	ShortsCacheTTL time.Duration

	// 信息流
	FeedPageSize     int
	AutoAdvanceSecs  int
	OutboxInterval   time.Duration
	OutboxMaxRetries int
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "myzend")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", "your-secret-key-change-in-production"))

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	shortsLimit, _ := strconv.Atoi(getEnv("SHORTS_LIMIT", "30"))
	shortsTTLMin, _ := strconv.Atoi(getEnv("SHORTS_CACHE_TTL_MINUTES", "60"))
	pageSize, _ := strconv.Atoi(getEnv("FEED_PAGE_SIZE", "5"))
	advanceSecs, _ := strconv.Atoi(getEnv("FEED_AUTO_ADVANCE_SECONDS", "7"))
	outboxSecs, _ := strconv.Atoi(getEnv("OUTBOX_INTERVAL_SECONDS", "15"))
	outboxRetries, _ := strconv.Atoi(getEnv("OUTBOX_MAX_RETRIES", "5"))

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		AppSecret:   appSecret,
		DatabaseURL: dbURL,
		JWTExpiry:   time.Duration(expiryHours) * time.Hour,
		Port:        getEnv("PORT", "8000"),
		SiteName:    getEnv("SITE_NAME", "myzend"),
		SiteUrl:     getEnv("SITE_URL", "http://localhost:8000"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OllamaHost:   getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:  getEnv("OLLAMA_MODEL", "quentinz/bge-base-zh-v1.5"),

		ShortsLimit:    shortsLimit,
		ShortsCacheTTL: time.Duration(shortsTTLMin) * time.Minute,

		FeedPageSize:     pageSize,
		AutoAdvanceSecs:  advanceSecs,
		OutboxInterval:   time.Duration(outboxSecs) * time.Second,
		OutboxMaxRetries: outboxRetries,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
