package termcli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"adisyon-backend/internal/models"
	"adisyon-backend/internal/terminalsync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terminal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, `
server: http://kasa.local:8080
email: mutfak@example.com
password: gizli
kind: kitchen
sync:
  debounce: 500ms
  poll_interval: 30s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://kasa.local:8080", cfg.Server)
	assert.Equal(t, "kitchen", cfg.Kind)

	s := cfg.SyncSettings()
	assert.Equal(t, 500*time.Millisecond, s.Debounce)
	assert.Equal(t, 30*time.Second, s.PollInterval)
	// dosyada yok, varsayılan kalır
	assert.Equal(t, terminalsync.DefaultConfig().SubscribeTimeout, s.SubscribeTimeout)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ADISYON_PASSWORD", "env-sifre")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "yok.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "pos", cfg.Kind)
	assert.Equal(t, "env-sifre", cfg.Password)
	assert.Equal(t, terminalsync.DefaultConfig(), cfg.SyncSettings())
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "sync:\n  debounce: [1, 2]\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestResolve_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "server: http://a\nemail: a@example.com\npassword: x\nkind: pos\n")

	opts := &RootOptions{ConfigPath: path, Server: "http://b", Kind: "kitchen"}
	cfg, err := opts.resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://b", cfg.Server)
	assert.Equal(t, "a@example.com", cfg.Email)
	assert.Equal(t, "kitchen", cfg.Kind)

	opts.Kind = "bar"
	_, err = opts.resolve()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaultFileConfig()
	require.Error(t, cfg.Validate(), "email ve şifre eksik")

	cfg.Email = "kasa@example.com"
	cfg.Password = "x"
	require.NoError(t, cfg.Validate())

	cfg.Sync.PollInterval = 0
	require.Error(t, cfg.Validate())
}

func TestBell_BlockedUntilAllowed(t *testing.T) {
	var buf bytes.Buffer
	b := &bell{w: &buf}
	ch := terminalsync.NewNotificationChannel(b)

	ch.Notify()
	assert.Equal(t, terminalsync.ChannelLocked, ch.State())
	assert.Equal(t, 1, ch.Missed())
	assert.Empty(t, buf.String())

	b.allowed.Store(true)
	ch.Interact()
	assert.Equal(t, terminalsync.ChannelUnlocked, ch.State())

	ch.Notify()
	assert.Contains(t, buf.String(), "\a")
}

func TestPrintOrders(t *testing.T) {
	var buf bytes.Buffer
	orders := []models.Order{
		{Folio: "A-000001", Status: models.OrderStatusInPrep, ServiceType: models.ServiceTypeDineIn, TableLabel: "5",
			Items: make([]models.OrderItem, 2), Total: decimal.NewFromInt(31)},
		{Folio: "A-000002", Status: models.OrderStatusReady, ServiceType: models.ServiceTypeTakeaway,
			Items: make([]models.OrderItem, 1), Total: decimal.RequireFromString("12.5")},
	}
	printOrders(&buf, terminalsync.ConnLive, orders)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "[live] 2 aktif sipariş", lines[0])
	assert.Equal(t, []string{"A-000001", "in_prep", "dine_in", "5", "2", "31.00"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"A-000002", "ready", "takeaway", "1", "12.50"}, strings.Fields(lines[3]))
}
