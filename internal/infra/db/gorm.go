package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	infraRepo "github.com/Ignaci05/Area51Bazar/internal/infra/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// databaseURLが空ならPOSTGRES_*から組み立てる
func Connect(databaseURL string, log *slog.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.New(
			slog.NewLogLogger(log.Handler(), slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	if databaseURL != "" {
		return gorm.Open(postgres.Open(databaseURL), cfg)
	}

	host := getenv("POSTGRES_HOST", "localhost")
	port := getenv("POSTGRES_PORT", "5432")
	user := getenv("POSTGRES_USER", "postgres")
	pass := getenv("POSTGRES_PASSWORD", "postgres")
	name := getenv("POSTGRES_DB", "bazar")
	ssl := getenv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, ssl,
	)

	return gorm.Open(postgres.Open(dsn), cfg)
}

// テーブル作成と在庫の非負制約
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.AuditLog{},
		&infraRepo.CartRow{},
	); err != nil {
		return err
	}

	//アプリのチェックが漏れてもDBで負の在庫を拒否する
	return db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'products_stock_non_negative') THEN
				ALTER TABLE products ADD CONSTRAINT products_stock_non_negative
					CHECK (stock_warehouse >= 0 AND stock_storefront >= 0);
			END IF;
		END $$;
	`).Error
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
