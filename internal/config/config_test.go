package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "QUIZ_TICK_INTERVAL_MS", "ALLOWED_ORIGINS", "REQUIRE_OTP", "MAX_UPLOAD_SIZE_MB"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, time.Second, cfg.QuizTickInterval)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.False(t, cfg.RequireOTP)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("QUIZ_TICK_INTERVAL_MS", "250")
	t.Setenv("ATTEMPT_RETENTION_MINUTES", "5")
	t.Setenv("REQUIRE_OTP", "true")
	t.Setenv("AUTH_RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 250*time.Millisecond, cfg.QuizTickInterval)
	assert.Equal(t, 5*time.Minute, cfg.AttemptRetention)
	assert.True(t, cfg.RequireOTP)
	assert.Equal(t, 20, cfg.AuthRatePerMinute)
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		parseOrigins(" https://a.example ,, https://b.example"))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "otp:me@example.com:code", CacheKey.OTPKey("  Me@Example.com "))
	assert.Equal(t, "otp:me@example.com:verified", CacheKey.OTPVerifiedKey("ME@example.com"))
	assert.Equal(t, "login:abc:revoked_at", CacheKey.UserRevokedAtKey("abc"))
	assert.Equal(t, "quiz:q1:payload", CacheKey.QuizPayloadKey("q1"))
}
