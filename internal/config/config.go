package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=adisyon port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	DBLogLevel  string // silent | error | warn | info

	// Terminal senkronizasyonu
	SyncDebounce         time.Duration
	SyncPollInterval     time.Duration
	SyncSubscribeTimeout time.Duration

	// Sadece arayüz ön doldurması; gerçek politika işletme kaydından okunur
	UIDefaultFloat     decimal.Decimal
	UIDefaultTolerance decimal.Decimal
}

// Load: .env varsa yükler, sonra environment'tan okur
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] .env okunamadı: %v", err)
	}

	cfg := FromEnv()

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için mutlaka kendi domain'ini tanımla.")
	}

	return cfg
}

// FromEnv: doğrulama yapmadan environment + varsayılanlar
func FromEnv() *Config {
	return &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		DBLogLevel:  strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),

		SyncDebounce:         getDuration("SYNC_DEBOUNCE", 300*time.Millisecond),
		SyncPollInterval:     getDuration("SYNC_POLL_INTERVAL", 10*time.Second),
		SyncSubscribeTimeout: getDuration("SYNC_SUBSCRIBE_TIMEOUT", 5*time.Second),

		UIDefaultFloat:     getDecimal("UI_DEFAULT_FLOAT", decimal.NewFromInt(150)),
		UIDefaultTolerance: getDecimal("UI_DEFAULT_TOLERANCE", decimal.NewFromInt(20)),
	}
}

// CORSOriginList: virgülle ayrılmış listeyi temizler
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[WARN] %s geçersiz (%q), varsayılan %s kullanılıyor", key, v, def)
		return def
	}
	return d
}

func getDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		log.Printf("[WARN] %s geçersiz (%q), varsayılan %s kullanılıyor", key, v, def)
		return def
	}
	return d
}
