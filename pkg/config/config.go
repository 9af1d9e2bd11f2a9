package config

import (
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	PGDSN string `envconfig:"PG_DSN" required:"true"`
	// Redis (availability calendar cache)
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	// RabbitMQ (order change events)
	RabbitURL      string `envconfig:"RABBIT_URL" required:"true"`
	OrdersExchange string `envconfig:"ORDERS_EXCHANGE" default:"orders.exchange"`
	RecheckQueue   string `envconfig:"RECHECK_QUEUE" default:"orders.recheck.q"`
	// JWT
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`
	// Payment gateway (Snap-style hosted payment page)
	SnapBaseURL   string `envconfig:"SNAP_BASE_URL" default:"https://app.sandbox.midtrans.com/snap/v1"`
	SnapServerKey string `envconfig:"SNAP_SERVER_KEY" required:"true"`
	// Booking behavior
	PendingTTLMin    int `envconfig:"ORDER_PENDING_TTL_MIN" default:"120"`
	SweepIntervalMin int `envconfig:"SWEEP_INTERVAL_MIN" default:"5"`
	CalendarTTLSec   int `envconfig:"CALENDAR_CACHE_TTL_SEC" default:"60"`
	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
