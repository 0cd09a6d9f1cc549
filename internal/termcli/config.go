package termcli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"adisyon-backend/internal/terminalsync"

	"gopkg.in/yaml.v3"
)

// FileConfig: terminal.yaml
//
//	server: http://localhost:8080
//	email: mutfak@example.com
//	kind: kitchen
//	sync:
//	  debounce: 300ms
//	  poll_interval: 10s
type FileConfig struct {
	Server     string `yaml:"server"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Kind       string `yaml:"kind"`
	BusinessID uint   `yaml:"business_id"` // sadece super_admin için

	Sync SyncConfig `yaml:"sync"`
}

type SyncConfig struct {
	Debounce         time.Duration `yaml:"debounce"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	SubscribeTimeout time.Duration `yaml:"subscribe_timeout"`
}

func defaultFileConfig() *FileConfig {
	d := terminalsync.DefaultConfig()
	return &FileConfig{
		Server: "http://localhost:8080",
		Kind:   string(terminalsync.KindPOS),
		Sync: SyncConfig{
			Debounce:         d.Debounce,
			PollInterval:     d.PollInterval,
			SubscribeTimeout: d.SubscribeTimeout,
		},
	}
}

// LoadConfig: path boşsa veya dosya yoksa varsayılanlar döner.
// Şifre dosyada yoksa ADISYON_PASSWORD'den okunur.
func LoadConfig(path string) (*FileConfig, error) {
	cfg := defaultFileConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config okunamadı: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config çözümlenemedi (%s): %w", path, err)
			}
		}
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("ADISYON_PASSWORD")
	}
	return cfg, nil
}

func (c *FileConfig) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return errors.New("server adresi zorunludur")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("email zorunludur")
	}
	if c.Password == "" {
		return errors.New("şifre zorunludur (config veya ADISYON_PASSWORD)")
	}
	if _, err := terminalsync.ParseKind(c.Kind); err != nil {
		return err
	}
	if c.Sync.Debounce <= 0 || c.Sync.PollInterval <= 0 || c.Sync.SubscribeTimeout <= 0 {
		return errors.New("sync süreleri pozitif olmalıdır")
	}
	return nil
}

func (c *FileConfig) SyncSettings() terminalsync.Config {
	return terminalsync.Config{
		Debounce:         c.Sync.Debounce,
		PollInterval:     c.Sync.PollInterval,
		SubscribeTimeout: c.Sync.SubscribeTimeout,
	}
}
