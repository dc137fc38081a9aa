package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "resto")
	t.Setenv("DB_PASS", "")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "restaurant")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TAX_RATE_BASIS_POINTS", "800")
	t.Setenv("MENU_CACHE_TTL_SEC", "30")

	cfg := Load()
	if cfg.Env != "test" || cfg.Port != "8080" {
		t.Fatalf("unexpected env/port: %q %q", cfg.Env, cfg.Port)
	}
	if cfg.DBUser != "resto" || cfg.DBHost != "127.0.0.1" || cfg.DBPort != "3306" || cfg.DBName != "restaurant" {
		t.Fatalf("unexpected db config: %+v", cfg)
	}
	if cfg.TaxRateBP != 800 {
		t.Fatalf("tax rate = %d, want 800", cfg.TaxRateBP)
	}
	if cfg.MenuCacheTTL != 30 {
		t.Fatalf("menu cache ttl = %d, want 30", cfg.MenuCacheTTL)
	}
}

func TestEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TAX_RATE_BASIS_POINTS", "eight hundred")
	if got := envInt("TAX_RATE_BASIS_POINTS", 0); got != 0 {
		t.Fatalf("envInt = %d, want default 0", got)
	}
}

func TestEnvBool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "ON": true,
		"0": false, "false": false, "off": false,
	}
	for raw, want := range cases {
		t.Setenv("CACHE_ENABLED", raw)
		if got := envBool("CACHE_ENABLED", !want); got != want {
			t.Errorf("envBool(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestRateLimitClamping(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 || cfg.RefillTokens != 1 {
		t.Fatalf("capacity/refill not clamped: %+v", cfg)
	}
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Fatalf("ttl %v not clamped to 5x interval %v", cfg.TTL, cfg.RefillInterval)
	}
}

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, head ,")
	if !m["GET"] || !m["HEAD"] || len(m) != 2 {
		t.Fatalf("parseMethods = %v", m)
	}
}

func TestCacheDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] {
		t.Fatal("GET should be cached by default")
	}
	if cfg.TTL != 5*time.Second {
		t.Fatalf("ttl = %v, want 5s", cfg.TTL)
	}
}
