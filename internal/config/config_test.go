package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/hvmc-store-backend/internal/admin"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	for _, k := range []string{"STORE_ADDR", "JWT_TTL", "KAFKA_BROKERS", "KAFKA_ORDER_TOPIC", "CORS_ORIGINS", "ADMIN_ORDER_ACTIONS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "orders.created", cfg.Kafka.OrderTopic)
	assert.Equal(t, "*", cfg.CORSOrigins)
	assert.Equal(t, admin.DefaultConfig(), cfg.Admin)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_ADDR", ":9000")
	t.Setenv("DATABASE_URL", "postgres://store@localhost/store")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_ORDER_TOPIC", "orders")
	t.Setenv("CORS_ORIGINS", "https://shop.example")
	t.Setenv("ADMIN_ORDER_ACTIONS", "mark-sent, EXPORT-CSV")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "postgres://store@localhost/store", cfg.DatabaseURL)
	assert.Equal(t, testSecret, cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "orders", cfg.Kafka.OrderTopic)
	assert.Equal(t, "https://shop.example", cfg.CORSOrigins)
	assert.Equal(t, []admin.Action{admin.MarkSent, admin.ExportCSV}, cfg.Admin.Orders)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ADMIN_ORDER_ACTIONS", "")
	t.Setenv("JWT_TTL", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_TTL", "1h")
	t.Setenv("ADMIN_ORDER_ACTIONS", "refund")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("ADMIN_ORDER_ACTIONS", "")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "short")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
