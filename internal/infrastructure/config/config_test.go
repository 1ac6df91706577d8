package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development env, got %q", cfg.Env)
	}
	if cfg.Session.Secret == "" {
		t.Error("expected a development session secret")
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("expected 24h session ttl, got %v", cfg.Session.TTL)
	}
	if cfg.Invite.TTL != 24*time.Hour {
		t.Errorf("expected 24h invite ttl, got %v", cfg.Invite.TTL)
	}
	if cfg.Session.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Session.BcryptCost)
	}
	if cfg.Store.Driver != DriverMongo {
		t.Errorf("expected mongo driver, got %q", cfg.Store.Driver)
	}
	if cfg.Redis.Enabled {
		t.Error("expected redis disabled by default")
	}
	if cfg.Redis.KeyPrefix != "notes" || cfg.Redis.PoolSize != 10 {
		t.Errorf("unexpected redis defaults %+v", cfg.Redis)
	}
	if ranges, err := cfg.TrustedProxyRanges(); err != nil || len(ranges) != 0 {
		t.Errorf("expected no trusted proxies, got %v %v", ranges, err)
	}
	if cfg.RateLimit.RPS != 5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("unexpected rate limit %v/%d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":             "production",
		"SESSION_SECRET":  "s3cret",
		"SESSION_TTL":     "2h",
		"STORE_DRIVER":    "memory",
		"REDIS_ENABLED":   "true",
		"REDIS_DB":        "3",
		"TRUSTED_PROXIES": "10.0.0.0/8, 192.168.1.0/24",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.IsDevelopment() {
		t.Error("expected production env")
	}
	if cfg.Session.Secret != "s3cret" {
		t.Errorf("expected configured secret, got %q", cfg.Session.Secret)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("expected 2h ttl, got %v", cfg.Session.TTL)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("expected memory driver, got %q", cfg.Store.Driver)
	}
	if !cfg.Redis.Enabled || cfg.Redis.DB != 3 {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
	ranges, err := cfg.TrustedProxyRanges()
	if err != nil || len(ranges) != 2 || ranges[1].String() != "192.168.1.0/24" {
		t.Errorf("unexpected trusted proxies %v %v", ranges, err)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret in production", env: map[string]string{"ENV": "production"}},
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "zero session ttl", env: map[string]string{"SESSION_TTL": "0s"}},
		{name: "zero invite ttl", env: map[string]string{"INVITE_TTL": "0s"}},
		{name: "bad trusted proxy", env: map[string]string{"TRUSTED_PROXIES": "10.0.0.1"}},
		{name: "malformed duration", env: map[string]string{"SESSION_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(context.Background(), envconfig.MapLookuper(tt.env)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
