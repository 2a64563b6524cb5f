// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("TOKEN_SALT", "test-salt")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TOKEN_SALT", "")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-token-salt", "s1", "-seed"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if !cfg.SeedDemo {
		t.Error("expected -seed to enable demo data")
	}
}

func TestParseFlags_SQLiteDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("TOKEN_SALT", "salt")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 3318 || cfg.DatabaseType != "sqlite" || cfg.DatabaseURL != "file:wayfare-mock.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing salt", map[string]string{"TOKEN_SALT": ""}, nil},
		{"bad port", map[string]string{"PORT": "abc", "TOKEN_SALT": "s"}, nil},
		{"postgres without url", map[string]string{"DATABASE_URL": "", "TOKEN_SALT": "s"}, []string{"-t", "postgres"}},
		{"unknown db type", map[string]string{"TOKEN_SALT": "s"}, []string{"-t", "mysql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", "")
			t.Setenv("DATABASE_TYPE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		env     string
		want    string
		wantErr bool
	}{
		{"development", "http://localhost:3318/api/v1", false},
		{"test", "http://localhost:3319/api/v1", false},
		{"Production", "https://api.wayfare.travel/api/v1", false},
		{"staging", "", true},
	}

	for _, tt := range tests {
		got, err := ResolveBaseURL(tt.env)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveBaseURL(%q) error = %v", tt.env, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveBaseURL(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestClientConfig_Resolve(t *testing.T) {
	t.Setenv("WAYFARE_ENV", "production")
	t.Setenv("WAYFARE_API_URL", "")
	t.Setenv("WAYFARE_TIMEOUT", "5s")
	t.Setenv("WAYFARE_CACHE_DB", "/tmp/cache.db")
	t.Setenv("WAYFARE_CACHE_DB_TYPE", "")

	var cfg ClientConfig
	if err := cfg.Resolve(); err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "https://api.wayfare.travel/api/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.CacheDB != "/tmp/cache.db" || cfg.CacheDBType != "sqlite" {
		t.Errorf("cache config = %q/%q", cfg.CacheDB, cfg.CacheDBType)
	}

	// Flags win over env
	flagged := ClientConfig{Env: "test", BaseURL: "http://127.0.0.1:9999/api/v1", Timeout: time.Second}
	if err := flagged.Resolve(); err != nil {
		t.Fatal(err)
	}
	if flagged.BaseURL != "http://127.0.0.1:9999/api/v1" || flagged.Timeout != time.Second {
		t.Errorf("flags should take precedence: %+v", flagged)
	}
}

func TestClientConfig_ResolveErrors(t *testing.T) {
	t.Setenv("WAYFARE_API_URL", "")
	t.Setenv("WAYFARE_TIMEOUT", "")

	bad := ClientConfig{Env: "staging"}
	if err := bad.Resolve(); err == nil {
		t.Error("expected unknown env error")
	}

	t.Setenv("WAYFARE_TIMEOUT", "soon")
	worse := ClientConfig{Env: "development"}
	if err := worse.Resolve(); err == nil {
		t.Error("expected timeout parse error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("WAYFARE_DOTENV_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WAYFARE_DOTENV_TEST", "")
	os.Unsetenv("WAYFARE_DOTENV_TEST")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("WAYFARE_DOTENV_TEST"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
}
