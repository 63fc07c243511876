package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/wichananm65/hvmc-store-backend/internal/admin"
)

// minSecretLen is the shortest accepted JWT_SECRET, in bytes.
const minSecretLen = 32

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins string

	Kafka struct {
		Brokers    []string
		OrderTopic string
	}

	Admin admin.Config
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("STORE_ADDR", ":8080")
	v.SetDefault("JWT_TTL", "72h")
	v.SetDefault("KAFKA_ORDER_TOPIC", "orders.created")
	v.SetDefault("CORS_ORIGINS", "*")

	var cfg Config
	cfg.Addr = v.GetString("STORE_ADDR")
	cfg.DatabaseURL = v.GetString("DATABASE_URL")
	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if len(cfg.JWTSecret) < minSecretLen {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	cfg.CORSOrigins = v.GetString("CORS_ORIGINS")
	cfg.Kafka.OrderTopic = v.GetString("KAFKA_ORDER_TOPIC")
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))

	ttl, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid JWT_TTL %q", v.GetString("JWT_TTL"))
	}
	cfg.JWTTTL = ttl

	actions, err := admin.ParseOrderActions(splitList(v.GetString("ADMIN_ORDER_ACTIONS")))
	if err != nil {
		return Config{}, fmt.Errorf("ADMIN_ORDER_ACTIONS: %w", err)
	}
	cfg.Admin = admin.Config{Orders: actions}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
