package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	BankDriver          string // file|sql
	BankPath            string // file or directory for the file driver
	PolicyProfile       string
	PolicyPath          string // optional YAML policy overriding the profile's
	QuestionsPerSection int    // 0 keeps every question
	SampleSeed          int64
	LockBack            bool

	RedisAddr  string // empty disables the history cache
	RedisPwd   string
	RedisDB    int
	HistoryTTL time.Duration

	RabbitMQURI string // empty disables event publishing

	CORSOrigins []string

	PersistTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defOrigins := "http://localhost:3000,http://localhost:5173"
	if mode == ModeOnline {
		defOrigins = "https://mocktest.mindengage.ai"
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BankDriver:          envOr("BANK_DRIVER", "file"),
		BankPath:            envOr("BANK_PATH", "./configs/hp-sample.yaml"),
		PolicyProfile:       envOr("POLICY_PROFILE", "hp.v1"),
		PolicyPath:          os.Getenv("POLICY_PATH"),
		QuestionsPerSection: envInt("QUESTIONS_PER_SECTION", 0),
		SampleSeed:          int64(envInt("SAMPLE_SEED", 0)),
		LockBack:            envBool("LOCK_BACK", false),

		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPwd:   os.Getenv("REDIS_PWD"),
		RedisDB:    envInt("REDIS_DB", 0),
		HistoryTTL: envDuration("HISTORY_TTL", 5*time.Minute),

		RabbitMQURI: os.Getenv("RABBITMQ_URI"),

		CORSOrigins: csvOr("CORS_ORIGINS", defOrigins),

		PersistTimeout:  envDuration("PERSIST_TIMEOUT", 5*time.Second),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        envOr("LOG_LEVEL", "info"),
	}
}
func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

// envDuration accepts Go durations ("30s") or plain seconds.
func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
