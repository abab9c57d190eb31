package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Postgres: PostgresConfig{DSN: "postgres://lifescope@localhost:5432/lifescope"},
		Auth: AuthConfig{
			JWTSecret:     strings.Repeat("k", MinSecretBytes),
			TokenTTLHours: 24,
			BcryptCost:    12,
		},
		Kafka: KafkaConfig{Brokers: []string{"127.0.0.1:9092"}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing dsn", mutate: func(c *Config) { c.Postgres.DSN = "" }, wantErr: "POSTGRES_DSN"},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "AUTH_JWT_SECRET"},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = strings.Repeat("k", MinSecretBytes-1) }, wantErr: "AUTH_JWT_SECRET"},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTLHours = 0 }, wantErr: "AUTH_TOKEN_TTL_HOURS"},
		{name: "cost too high", mutate: func(c *Config) { c.Auth.BcryptCost = 40 }, wantErr: "AUTH_BCRYPT_COST"},
		{name: "no brokers", mutate: func(c *Config) { c.Kafka.Brokers = nil }, wantErr: "KAFKA_BROKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://lifescope@localhost:5432/lifescope")
	t.Setenv("AUTH_JWT_SECRET", "too-short")
	if _, err := Load(); err == nil {
		t.Fatal("expected Load to fail with a short secret")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://lifescope@localhost:5432/lifescope")
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("s", 40))
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.TokenTTL().Hours() != 24 {
		t.Errorf("TokenTTL = %v, want 24h", cfg.Auth.TokenTTL())
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.Auth.BcryptCost)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("Brokers = %v", cfg.Kafka.Brokers)
	}
}
