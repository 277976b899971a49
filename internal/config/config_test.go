package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "5175" || cfg.Addr() != ":5175" {
		t.Fatalf("port = %q addr = %q", cfg.Port, cfg.Addr())
	}
	if cfg.Language != "en" || cfg.RootWordMode != ModeRandom {
		t.Fatalf("language = %q mode = %q", cfg.Language, cfg.RootWordMode)
	}
	if cfg.DictionaryTimeout != 2*time.Second || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("timeout = %v ttl = %v", cfg.DictionaryTimeout, cfg.SessionTTL)
	}
	if cfg.TokenTTL() != 24*time.Hour {
		t.Fatalf("token ttl = %v", cfg.TokenTTL())
	}
	if cfg.IsProduction() {
		t.Fatal("default env must not be production")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ROOT_WORD_MODE", "daily")
	t.Setenv("DICTIONARY_TIMEOUT", "500ms")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "9000" || cfg.RootWordMode != ModeDaily || cfg.DictionaryTimeout != 500*time.Millisecond {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{name: "bad duration", key: "SESSION_TTL", value: "soon", want: "parse env:"},
		{name: "bad mode", key: "ROOT_WORD_MODE", value: "weekly", want: "ROOT_WORD_MODE"},
		{name: "bad expiry", key: "JWT_EXPIRES_HOURS", value: "0", want: "JWT_EXPIRES_HOURS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := Parse()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("err = %v, want JWT_SECRET error", err)
	}
}
