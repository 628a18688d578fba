package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/logger"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return gdb, mock
}

var productColumns = []string{
	"id", "barcode", "name", "category", "price", "cost",
	"stock_warehouse", "stock_storefront", "created_at", "updated_at",
}

func productRow(mock sqlmock.Sqlmock, id string, warehouse, storefront int64) *sqlmock.Rows {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(productColumns).
		AddRow(id, id, "Taza", "Cocina", "35.00", "20.00", warehouse, storefront, now, now)
}

var selectForUpdate = `SELECT \* FROM "products" WHERE id = \$1 .*FOR UPDATE`

func newTestTxManager(db *gorm.DB, attempts int) *TxManagerGorm {
	tm := NewTxManagerGorm(db, attempts, logger.Discard(), nil)
	tm.backoff = func(int) time.Duration { return 0 }
	return tm
}

func TestProductGorm_FindByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewProductGormRepository(db)

	mock.ExpectQuery(selectForUpdate).WillReturnRows(productRow(mock, "p1", 10, 0))

	p, err := r.FindByIDForUpdate(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, model.Stock{Warehouse: 10, Storefront: 0}, p.Stock)
	assert.Equal(t, "35", p.Price.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGorm_FindByIDForUpdate_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewProductGormRepository(db)

	mock.ExpectQuery(selectForUpdate).WillReturnRows(sqlmock.NewRows(productColumns))

	_, err := r.FindByIDForUpdate(context.Background(), "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 0件更新は競合
func TestProductGorm_SetStock_Conflict(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewProductGormRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.SetStock(context.Background(), "p1",
		model.Stock{Warehouse: 10}, model.Stock{Warehouse: 6, Storefront: 4})
	assert.ErrorIs(t, err, repo.ErrConflict)
	assert.True(t, IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGorm_SetStock_OK(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewProductGormRepository(db)

	// 書くのは在庫の2列だけ（updated_atは触らない）
	mock.ExpectExec(`UPDATE "products" SET "stock_storefront"=\$1,"stock_warehouse"=\$2 WHERE .*id = \$3 AND stock_warehouse = \$4 AND stock_storefront = \$5`).
		WithArgs(int64(4), int64(6), "p1", int64(10), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.SetStock(context.Background(), "p1",
		model.Stock{Warehouse: 10}, model.Stock{Warehouse: 6, Storefront: 4})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGorm_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewProductGormRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, r.Delete(context.Background(), "p1"), repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGorm_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewProductGormRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := r.Create(context.Background(), model.Product{ID: "p1", Barcode: "750"})
	assert.ErrorIs(t, err, repo.ErrDuplicate)
}

func TestUserGorm_IncrementTokenVersion_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserGormRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "token_version"=token_version + $1 WHERE id = $2`)).
		WithArgs(1, "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, r.IncrementTokenVersion(context.Background(), "u1"), repo.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 直列化失敗(40001)は最初からやり直して成功する
func TestTxManagerGorm_RetriesSerializationFailure(t *testing.T) {
	db, mock := newMockDB(t)
	tm := newTestTxManager(db, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WillReturnError(&pgconn.PgError{Code: "40001"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WillReturnRows(productRow(mock, "p1", 10, 0))
	mock.ExpectCommit()

	calls := 0
	err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		calls++
		_, err := r.Products().FindByIDForUpdate(context.Background(), "p1")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManagerGorm_RetryExhausted(t *testing.T) {
	db, mock := newMockDB(t)
	tm := newTestTxManager(db, 2)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(selectForUpdate).WillReturnError(&pgconn.PgError{Code: "40P01"})
		mock.ExpectRollback()
	}

	calls := 0
	err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		calls++
		_, err := r.Products().FindByIDForUpdate(context.Background(), "p1")
		return err
	})

	assert.ErrorIs(t, err, repo.ErrRetryExhausted)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 業務エラーはそのまま返して再試行しない
func TestTxManagerGorm_NonRetryablePassesThrough(t *testing.T) {
	db, mock := newMockDB(t)
	tm := newTestTxManager(db, 5)
	boom := errors.New("insufficient")

	mock.ExpectBegin()
	mock.ExpectRollback()

	calls := 0
	err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJitterBackoff_Bounds(t *testing.T) {
	for attempt := 1; attempt <= 10; attempt++ {
		d := jitterBackoff(attempt)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 100*time.Millisecond)
	}
}

func TestCartGorm_GetMissingReturnsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewCartGormRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE seller_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"seller_id", "payload", "updated_at"}))

	c, err := r.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", c.SellerID)
	assert.Empty(t, c.Lines)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGorm_GetDecodesPayload(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewCartGormRepository(db)

	payload := `{"seller_id":"s1","lines":[{"product_id":"p1","name":"Taza","unit_price":"35","quantity":2,"max_stock":4}]}`
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE seller_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"seller_id", "payload", "updated_at"}).
			AddRow("s1", []byte(payload), time.Now()))

	c, err := r.Get(context.Background(), "s1")
	require.NoError(t, err)
	if assert.Len(t, c.Lines, 1) {
		assert.Equal(t, int64(2), c.Lines[0].Quantity)
		assert.Equal(t, "70", c.Total().String())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGorm_SaveUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewCartGormRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "carts"`) + `.*ON CONFLICT \("seller_id"\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.Save(context.Background(), model.NewCart("s1"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 件数と合計は集計クエリで、LIMITは付けない
func TestSaleGorm_SummarizeCountsWholeWindow(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewSaleGormRepository(db)

	from := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)

	mock.ExpectQuery(`SELECT count\(\*\) AS count, coalesce\(sum\(total\), 0\) AS total FROM "sales" WHERE created_at >= \$1 AND created_at <= \$2$`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count", "total"}).AddRow(int64(1200), "1200.00"))

	got, err := r.Summarize(context.Background(), repo.SaleFilter{From: &from, To: &to, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1200, got.Count)
	assert.Equal(t, "1200", got.Total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleGorm_SummarizeBySeller(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewSaleGormRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\).* FROM "sales" WHERE seller_id = \$1$`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "total"}).AddRow(int64(0), "0"))

	got, err := r.Summarize(context.Background(), repo.SaleFilter{SellerID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
	assert.True(t, got.Total.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 在庫少は件数で切らない
func TestProductGorm_ListLowStock(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewProductGormRepository(db)

	rows := productRow(mock, "old", 3, 0)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE stock_storefront < \$1 ORDER BY stock_storefront asc,id asc$`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	got, err := r.ListLowStock(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 空の条件はWHEREに出ない。新しい順
func TestAuditLogGorm_ListFilters(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewAuditLogGormRepository(db)

	action := model.AuditActionUpdateProduct
	mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE actor_user_id = \$1 AND action = \$2 ORDER BY id desc LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor_user_id", "action", "resource_type", "resource_id", "created_at"}).
			AddRow(int64(7), "admin-1", string(action), "product", "p1", time.Now()))

	got, err := r.List(context.Background(), repo.AuditLogFilter{ActorUserID: "admin-1", Action: &action, Limit: 999})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, model.AuditResourceProduct, got[0].ResourceType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
