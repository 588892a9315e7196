package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/AlTattoo/top-challenges/pkg/config"
	"github.com/google/uuid"
)

// getTestConfig returns config for testing
func getTestConfig() *Config {
	cfg := DefaultConfig()

	if host := os.Getenv("TEST_REDIS_HOST"); host != "" {
		cfg.Host = host
	}
	if password := os.Getenv("TEST_REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}

	return cfg
}

func newIntegrationClient(t *testing.T) *Client {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	client, err := NewClient(context.Background(), getTestConfig())
	if err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Host)
	}
	if cfg.Port != 6379 {
		t.Errorf("Expected port 6379, got %d", cfg.Port)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", cfg.MaxRetries)
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.RedisConfig{Host: "cache", Port: 6380, PoolSize: 0, DB: 2}, true)

	if cfg.Addr() != "cache:6380" {
		t.Errorf("Expected addr 'cache:6380', got '%s'", cfg.Addr())
	}
	if cfg.PoolSize != 50 {
		t.Errorf("Expected default pool size to be kept, got %d", cfg.PoolSize)
	}
	if cfg.DB != 2 || !cfg.EnableTracing {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &Config{
		Host:          "invalid-host-that-does-not-exist",
		Port:          9999,
		MaxRetries:    0,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   500 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewClient(ctx, cfg); err == nil {
		t.Error("Expected error for unreachable redis, got nil")
	}
}

func TestComputeSHA1(t *testing.T) {
	sha := computeSHA1(releaseLockScript)

	if len(sha) != 40 {
		t.Errorf("Expected SHA1 length 40, got %d", len(sha))
	}
	if sha != computeSHA1(releaseLockScript) {
		t.Error("Same script should produce same SHA")
	}
	if sha == computeSHA1("return 2") {
		t.Error("Different scripts should produce different SHAs")
	}
}

func TestIsNoScriptError(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{fmt.Errorf("some error"), false},
		{fmt.Errorf("NOSCRIPT No matching script. Please use EVAL."), true},
	}

	for _, tt := range tests {
		if got := isNoScriptError(tt.err); got != tt.expected {
			t.Errorf("isNoScriptError(%v) = %v, want %v", tt.err, got, tt.expected)
		}
	}
}

// Integration tests - require Redis to be running

func TestClient_Lock_Integration(t *testing.T) {
	client := newIntegrationClient(t)
	ctx := context.Background()
	key := "test:lock:" + uuid.NewString()

	ok, err := client.TryLock(ctx, key, "owner-a", 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("Expected first TryLock to succeed, got ok=%v err=%v", ok, err)
	}

	ok, err = client.TryLock(ctx, key, "owner-b", 5*time.Second)
	if err != nil || ok {
		t.Fatalf("Expected second TryLock to fail, got ok=%v err=%v", ok, err)
	}

	if err := client.Unlock(ctx, key, "owner-b"); err != ErrLockNotHeld {
		t.Errorf("Expected ErrLockNotHeld for foreign token, got %v", err)
	}
	if err := client.Unlock(ctx, key, "owner-a"); err != nil {
		t.Errorf("Unlock failed: %v", err)
	}

	ok, _ = client.TryLock(ctx, key, "owner-b", 5*time.Second)
	if !ok {
		t.Error("Expected lock to be free after release")
	}
	_ = client.Unlock(ctx, key, "owner-b")
}

func TestClient_EvalWithFallback_Integration(t *testing.T) {
	client := newIntegrationClient(t)
	ctx := context.Background()

	// Flushing scripts forces the NOSCRIPT reload path
	client.Client().ScriptFlush(ctx)

	got, err := client.EvalWithFallback(ctx, "echo", "return ARGV[1]", nil, "venue").Text()
	if err != nil {
		t.Fatalf("EvalWithFallback failed: %v", err)
	}
	if got != "venue" {
		t.Errorf("Expected 'venue', got '%s'", got)
	}
}
