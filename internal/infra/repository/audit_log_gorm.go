package repository

import (
	"context"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"gorm.io/gorm"
)

const (
	auditListDefaultLimit = 50
	auditListMaxLimit     = 200
)

// 管理操作の記録。Tx内でも外でも同じ形で使う
type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

// IDはDBの採番に任せる
func (r *AuditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

// 書いた順の逆（採番の降順）でページングする
func (r *AuditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > auditListMaxLimit {
		limit = auditListDefaultLimit
	}
	offset := max(f.Offset, 0)

	var entries []model.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(auditConditions(f)).
		Order("id desc").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	if err != nil {
		return []model.AuditLog{}, err
	}
	return entries, nil
}

// 空の条件は付けない
func auditConditions(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		eq := map[string]string{
			"actor_user_id": f.ActorUserID,
			"resource_id":   f.ResourceID,
		}
		if f.Action != nil {
			eq["action"] = string(*f.Action)
		}
		if f.ResourceType != nil {
			eq["resource_type"] = string(*f.ResourceType)
		}
		for _, col := range []string{"actor_user_id", "action", "resource_type", "resource_id"} {
			if v := eq[col]; v != "" {
				db = db.Where(col+" = ?", v)
			}
		}
		if f.CreatedFrom != nil {
			db = db.Where("created_at >= ?", *f.CreatedFrom)
		}
		if f.CreatedTo != nil {
			db = db.Where("created_at <= ?", *f.CreatedTo)
		}
		return db
	}
}
