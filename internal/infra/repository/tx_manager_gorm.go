package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/metrics"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	products  repo.ProductRepository
	sales     repo.SaleRepository
	auditLogs repo.AuditLogRepository
}

func (r *txReposGorm) Products() repo.ProductRepository   { return r.products }
func (r *txReposGorm) Sales() repo.SaleRepository         { return r.sales }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

// SERIALIZABLEで実行し、直列化失敗なら最初からやり直す
type TxManagerGorm struct {
	db          *gorm.DB
	maxAttempts int
	log         *slog.Logger
	metrics     *metrics.Metrics
	backoff     func(attempt int) time.Duration
}

func NewTxManagerGorm(db *gorm.DB, maxAttempts int, log *slog.Logger, m *metrics.Metrics) *TxManagerGorm {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &TxManagerGorm{
		db:          db,
		maxAttempts: maxAttempts,
		log:         log,
		metrics:     m,
		backoff:     jitterBackoff,
	}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	for attempt := 1; ; attempt++ {
		err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			//repoはtxを持ったDBで作り直す
			r := &txReposGorm{
				products:  NewProductGormRepository(tx),
				sales:     NewSaleGormRepository(tx),
				auditLogs: NewAuditLogGormRepository(tx),
			}
			return fn(r)
		}, opts)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}

		tm.metrics.ObserveConflict("postgres")
		tm.log.WarnContext(ctx, "transaction conflict", "attempt", attempt, "max_attempts", tm.maxAttempts, "error", err)

		if attempt >= tm.maxAttempts {
			return fmt.Errorf("%w: %v", repo.ErrRetryExhausted, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(tm.backoff(attempt)):
		}
	}
}

// 5ms, 10ms, 20ms ... 上限100ms、半分はランダム
func jitterBackoff(attempt int) time.Duration {
	base := 100 * time.Millisecond
	if attempt <= 5 {
		base = 5 * time.Millisecond << (attempt - 1)
	}
	half := base / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}
