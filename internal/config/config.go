package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все параметры запуска приложения.
type Config struct {
	Env             string
	HTTPPort        string
	DatabaseURL     string
	MigrationsPath  string
	PublicHost      string
	AgentURL        string
	AgentAPIKey     string
	AgentPrompt     string
	AgentGreeting   string
	StoreTimeout    time.Duration
	JWTSecret       string
	AccessTokenTTL  time.Duration
	AllowedOrigins  []string
	RateLimitLimit  int64
	RateLimitPeriod time.Duration
}

// DefaultAgentURL задаёт адрес голосового агента Deepgram по умолчанию.
const DefaultAgentURL = "wss://agent.deepgram.com/v1/agent/converse"

// Load читает переменные окружения и возвращает готовую конфигурацию.
// Отсутствие обязательных переменных считается фатальной ошибкой: сервис
// не должен стартовать наполовину.
func Load() (*Config, error) {
	// Загружаем .env только если он существует, иначе используем системные переменные.
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("config: .env не найден, используем переменные окружения: %v", err)
	}

	env := getEnv("APP_ENV", "development")

	agentKey := getEnv("DEEPGRAM_API_KEY", "")
	if agentKey == "" {
		return nil, fmt.Errorf("config: DEEPGRAM_API_KEY обязателен")
	}

	databaseURL := getDatabaseURL()
	if databaseURL == "" {
		return nil, fmt.Errorf("config: задайте DATABASE_URL или POSTGRESQL_HOST/USER/DBNAME")
	}

	cfg := &Config{
		Env:            env,
		HTTPPort:       getEnv("HTTP_PORT", "5000"),
		DatabaseURL:    databaseURL,
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		PublicHost:     getEnv("PUBLIC_HOST", "localhost:5000"),
		AgentURL:       getEnv("AGENT_URL", DefaultAgentURL),
		AgentAPIKey:    agentKey,
		AgentPrompt:    getEnv("AGENT_PROMPT", ""),
		AgentGreeting:  getEnv("AGENT_GREETING", ""),
		StoreTimeout:   mustParseDuration(getEnv("STORE_TIMEOUT", "10s")),
	}

	// JWT секрет для ops API
	jwtSecret := getEnv("JWT_SECRET", "")
	if env == "production" {
		if len(jwtSecret) < 32 {
			return nil, fmt.Errorf("config: JWT_SECRET обязателен и должен быть не менее 32 символов в production")
		}
	} else if jwtSecret == "" {
		jwtSecret = "complaint-desk-development-secret-change-me"
		log.Printf("config: WARNING - используется дефолтный JWT_SECRET, измените в production!")
	}
	cfg.JWTSecret = jwtSecret

	// CORS allowed origins для ops API
	originsStr := getEnv("CORS_ALLOWED_ORIGINS", "")
	if originsStr == "" {
		if env == "production" {
			return nil, fmt.Errorf("config: CORS_ALLOWED_ORIGINS обязателен в production")
		}
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	} else {
		cfg.AllowedOrigins = strings.Split(originsStr, ",")
		for i, origin := range cfg.AllowedOrigins {
			cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
		}
	}

	cfg.AccessTokenTTL = mustParseDuration(getEnv("ACCESS_TOKEN_TTL", "12h"))
	cfg.RateLimitLimit = mustParseInt64(getEnv("RATE_LIMIT_LIMIT", "60"))
	cfg.RateLimitPeriod = mustParseDuration(getEnv("RATE_LIMIT_PERIOD", "1m"))

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDatabaseURL возвращает DATABASE_URL либо из переменной, либо собирает из отдельных переменных.
func getDatabaseURL() string {
	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		return dbURL
	}

	// Формат платформы: отдельные переменные подключения
	host := getEnv("POSTGRESQL_HOST", "")
	port := getEnv("POSTGRESQL_PORT", "5432")
	user := getEnv("POSTGRESQL_USER", "")
	password := getEnv("POSTGRESQL_PASSWORD", "")
	dbname := getEnv("POSTGRESQL_DBNAME", "")

	if host != "" && user != "" && dbname != "" {
		// URL-кодируем учётные данные
		userInfo := url.UserPassword(user, password)
		return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=disable",
			userInfo.String(), host, port, dbname)
	}

	return ""
}

// mustParseDuration безопасно парсит строку в duration.
func mustParseDuration(v string) time.Duration {
	dur, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: не удалось распарсить длительность %q: %v", v, err)
	}
	return dur
}

// mustParseInt64 безопасно парсит строку в int64.
func mustParseInt64(v string) int64 {
	num, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("config: не удалось распарсить число %q: %v", v, err)
	}
	return num
}
