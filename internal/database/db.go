package database

import (
	"fmt"
	"log"
	"strings"

	"adisyon-backend/internal/config"
	"adisyon-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init: Postgres'e bağlanır ve şemayı günceller. Hata durumunda süreç sonlanır.
func Init(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger:         logger.Default.LogMode(LogLevel(cfg.DBLogLevel)),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("[FATAL] Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("[FATAL] AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db
}

func LogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Migrate: tablolar ve AutoMigrate'in ifade edemediği kısmi indeksler.
// Postgres ve sqlite'ta aynı şekilde çalışır.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Business{},
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.CashSession{},
		&models.CashMovement{},
		&models.Payment{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}

	indexes := []string{
		// Operatör başına tek açık kasa oturumu
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_sessions_one_open
			ON cash_sessions (business_id, operator_id) WHERE status = 'open'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_business_folio
			ON orders (business_id, folio)`,
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("indeks oluşturulamadı: %w", err)
		}
	}
	return nil
}
