package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Anonymous clustering. The key must be durable configuration: the same
	// user has to re-derive the same pseudonym across restarts. Never logged,
	// never exposed through any response payload.
	ClusteringSecretKey string

	// Ledger anchoring gateway
	AnchorRPCURL   string
	AnchorAPIKey   string
	AnchorContract string
	AnchorTimeout  time.Duration

	// AI providers (severity analysis)
	GLMAPIKey      string
	GLMAPIURL      string
	GLMModel       string
	DeepSeekAPIKey string
	DeepSeekAPIURL string
	DeepSeekModel  string
	AITimeout      time.Duration

	// Credibility defaults
	LowCredibilityThreshold  float64
	HighCredibilityThreshold float64
	MinReportsForRanking     int

	// Admin
	AdminEmails string
	AdminToken  string

	// Seed accounts (created on first boot when the users table is empty)
	SeedAdminEmail     string
	SeedAdminPassword  string
	SeedPoliceEmail    string
	SeedPolicePassword string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "denuncia_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		ClusteringSecretKey: getEnv("CLUSTERING_SECRET_KEY", ""),

		AnchorRPCURL:   getEnv("ANCHOR_RPC_URL", ""),
		AnchorAPIKey:   getEnv("ANCHOR_API_KEY", ""),
		AnchorContract: getEnv("ANCHOR_CONTRACT", ""),
		AnchorTimeout:  parseDuration(getEnv("ANCHOR_TIMEOUT", "30s")),

		GLMAPIKey:      getEnv("GLM_API_KEY", ""),
		GLMAPIURL:      getEnv("GLM_API_URL", "https://api.z.ai/api/paas/v4/chat/completions"),
		GLMModel:       getEnv("GLM_MODEL", "glm-5"),
		DeepSeekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekAPIURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		DeepSeekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		AITimeout:      parseDuration(getEnv("AI_TIMEOUT", "60s")),

		LowCredibilityThreshold:  parseFloat(getEnv("CREDIBILITY_LOW_THRESHOLD", "0.3"), 0.3),
		HighCredibilityThreshold: parseFloat(getEnv("CREDIBILITY_HIGH_THRESHOLD", "0.7"), 0.7),
		MinReportsForRanking:     parseInt(getEnv("CREDIBILITY_MIN_REPORTS", "3"), 3),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
		SeedPoliceEmail:    getEnv("SEED_POLICE_EMAIL", ""),
		SeedPolicePassword: getEnv("SEED_POLICE_PASSWORD", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseFloat(s string, fallback float64) float64 {
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return fallback
	}
	return f
}

func parseInt(s string, fallback int) int {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return fallback
	}
	return n
}
