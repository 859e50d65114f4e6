package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "STORAGE_DRIVER", "CURRENCY", "KAFKA_BROKERS", "SHUTDOWN_TIMEOUT_SECONDS", "STRIPE_SECRET_KEY"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" || cfg.StorageDriver != DriverPostgres || cfg.Currency != "NOK" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.KafkaBrokers != nil || cfg.StripeSecretKey != "" {
		t.Fatalf("expected optional integrations disabled, got %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("CURRENCY", "sek")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ORIGINS", "https://shop.example")

	cfg := FromEnv()
	if cfg.StorageDriver != DriverSQLite || cfg.Currency != "SEK" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://shop.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
}
