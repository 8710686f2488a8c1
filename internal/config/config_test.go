package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RCI_JWT_SECRET", "test-secret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("unexpected token ttl: %v", cfg.TokenTTL)
	}
	if cfg.RateBurst != 20 || cfg.RatePerSec != 10 {
		t.Fatalf("unexpected rate limits: %d/%d", cfg.RateBurst, cfg.RatePerSec)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("RCI_JWT_SECRET", "")
	os.Unsetenv("RCI_JWT_SECRET")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected error when RCI_JWT_SECRET is unset")
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("RCI_JWT_SECRET", "test-secret")
	t.Setenv("RCI_CORS_ORIGINS", "https://admin.example.com,https://shop.example.com")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.CORSOrigins[0] != "https://admin.example.com" || cfg.CORSOrigins[1] != "https://shop.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RCI_JWT_SECRET", "test-secret")
	t.Setenv("RCI_ADDR", ":9090")
	t.Setenv("RCI_TOKEN_TTL", "30m")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected token ttl: %v", cfg.TokenTTL)
	}
}
