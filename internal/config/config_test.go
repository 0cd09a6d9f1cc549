package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "DB_LOG_LEVEL", "SYNC_DEBOUNCE", "SYNC_POLL_INTERVAL", "SYNC_SUBSCRIBE_TIMEOUT", "UI_DEFAULT_FLOAT", "UI_DEFAULT_TOLERANCE"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "warn", cfg.DBLogLevel)
	assert.Equal(t, 300*time.Millisecond, cfg.SyncDebounce)
	assert.Equal(t, 10*time.Second, cfg.SyncPollInterval)
	assert.Equal(t, 5*time.Second, cfg.SyncSubscribeTimeout)
	assert.True(t, cfg.UIDefaultFloat.Equal(decimal.NewFromInt(150)))
	assert.True(t, cfg.UIDefaultTolerance.Equal(decimal.NewFromInt(20)))
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SYNC_DEBOUNCE", "500ms")
	t.Setenv("UI_DEFAULT_FLOAT", "200.50")
	t.Setenv("DB_LOG_LEVEL", "INFO")

	cfg := FromEnv()
	assert.Equal(t, 500*time.Millisecond, cfg.SyncDebounce)
	assert.Equal(t, "200.5", cfg.UIDefaultFloat.String())
	assert.Equal(t, "info", cfg.DBLogLevel)
}

func TestFromEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("SYNC_POLL_INTERVAL", "yarım saat")
	t.Setenv("UI_DEFAULT_TOLERANCE", "-5")

	cfg := FromEnv()
	assert.Equal(t, 10*time.Second, cfg.SyncPollInterval)
	assert.True(t, cfg.UIDefaultTolerance.Equal(decimal.NewFromInt(20)))
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{CORSOrigins: " http://a.local , ,http://b.local"}
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOriginList())
}

func TestTerminalDefaults(t *testing.T) {
	t.Setenv("SYNC_DEBOUNCE", "250ms")
	t.Setenv("UI_DEFAULT_FLOAT", "")

	d := FromEnv().TerminalDefaults()
	assert.Equal(t, "250ms", d.Debounce)
	assert.Equal(t, "10s", d.PollInterval)
	assert.Equal(t, "5s", d.SubscribeTimeout)
	assert.Equal(t, "150", d.DefaultFloat.String())
}
