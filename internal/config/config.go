package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"bananas_server/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort        string
	AllowedOrigins []string
	LogLevel       string
	LogJSON        bool

	// Optional backends; empty disables them.
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GracePeriod time.Duration

	// Fixed-window limit on /ws upgrades and /api, per client IP.
	WSRateLimit  int
	WSRateWindow int

	// Token bucket on in-game messages, per connection.
	ActionRate  float64
	ActionBurst int

	TileSpacing   float64
	TileTolerance float64
}

// Load reads .env when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	cfg := &Config{
		AppPort:        port,
		AllowedOrigins: origins,
		LogLevel:       logLevel,
		LogJSON:        os.Getenv("LOG_JSON") == "true",
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        intEnv("REDIS_DB", 0),
		GracePeriod:    time.Duration(intEnv("GRACE_PERIOD_SECONDS", 120)) * time.Second,
		WSRateLimit:    intEnv("WS_RATE_LIMIT", 30),
		WSRateWindow:   intEnv("WS_RATE_WINDOW_SECONDS", 60),
		ActionRate:     floatEnv("ACTION_RATE_PER_SECOND", 10),
		ActionBurst:    intEnv("ACTION_BURST", 20),
		TileSpacing:    floatEnv("TILE_SPACING", 50),
		TileTolerance:  floatEnv("TILE_TOLERANCE", 5),
	}

	if cfg.TileTolerance*2 >= cfg.TileSpacing {
		logger.Warn("tile tolerance too wide for spacing, using defaults",
			"spacing", cfg.TileSpacing, "tolerance", cfg.TileTolerance)
		cfg.TileSpacing, cfg.TileTolerance = 50, 5
	}

	return cfg
}

// intEnv returns def when the variable is unset or not a positive integer.
// REDIS_DB is the one place zero is meaningful, so it is allowed there.
func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || (n == 0 && key != "REDIS_DB") {
		logger.Warn("ignoring invalid config value", "key", key, "value", v)
		return def
	}
	return n
}

func floatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		logger.Warn("ignoring invalid config value", "key", key, "value", v)
		return def
	}
	return f
}
