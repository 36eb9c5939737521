package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	t.Cleanup(os.Clearenv)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port: got %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Auth.TokenExpiry != 7*24*time.Hour {
		t.Errorf("TokenExpiry: got %v, want %v", cfg.Auth.TokenExpiry, 7*24*time.Hour)
	}
	if cfg.Auth.CookieName != "token" {
		t.Errorf("CookieName: got %q, want %q", cfg.Auth.CookieName, "token")
	}
	if cfg.Mail.Driver != "ses" {
		t.Errorf("Mail.Driver: got %q, want %q", cfg.Mail.Driver, "ses")
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr: got %q, want %q", cfg.Redis.Addr, "localhost:6379")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() without JWT_SECRET should fail")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() without DB_PASSWORD should fail")
	}
}

func TestLoad_WeakJWTSecretRejectedInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() with a short JWT_SECRET in production should fail")
	}
}

func TestLoad_InvalidMailDriver(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("MAIL_DRIVER", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with unknown MAIL_DRIVER should fail")
	}
}

func TestLoad_CustomExpiry(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("JWT_EXPIRY", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.Auth.TokenExpiry != 30*time.Minute {
		t.Errorf("TokenExpiry: got %v, want %v", cfg.Auth.TokenExpiry, 30*time.Minute)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("JWT_EXPIRY", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.Auth.TokenExpiry != 7*24*time.Hour {
		t.Errorf("TokenExpiry with invalid value: got %v, want %v", cfg.Auth.TokenExpiry, 7*24*time.Hour)
	}
}

func TestLoad_ProductionOriginsFromEnv(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	os.Setenv("CORS_ORIGIN", "https://app.example.com, https://admin.example.com")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.Server.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins: got %v, want %v", cfg.Server.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.Server.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d]: got %q, want %q", i, cfg.Server.AllowedOrigins[i], want[i])
		}
	}
}
